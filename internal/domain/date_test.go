package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.January, 10), d)

	d, err = ParseDate("2025-01-10T23:30:00-02:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-11", d.String(), "timestamps fold to their UTC day")

	_, err = ParseDate("10/01/2025")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		In  Date `json:"in"`
		Out Date `json:"out"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"in":"2025-01-10","out":null}`), &payload))
	assert.Equal(t, "2025-01-10", payload.In.String())
	assert.True(t, payload.Out.IsZero())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"in":"2025-01-10","out":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"in":"tomorrow"}`), &payload))
}

func TestNightsBetween(t *testing.T) {
	in := NewDate(2025, time.January, 10)
	assert.Equal(t, 3, NightsBetween(in, in.AddDays(3)))
	assert.Equal(t, 0, NightsBetween(in, in))
	assert.Equal(t, 0, NightsBetween(in, in.AddDays(-1)))
	// month boundary
	assert.Equal(t, 2, NightsBetween(NewDate(2025, time.January, 31), NewDate(2025, time.February, 2)))
}

func TestNights(t *testing.T) {
	in := NewDate(2024, time.February, 28)
	got := Nights(in, NewDate(2024, time.March, 1))
	require.Len(t, got, 2)
	assert.Equal(t, "2024-02-28", got[0].String())
	assert.Equal(t, "2024-02-29", got[1].String())
}

func TestBookingOverlaps(t *testing.T) {
	b := Booking{
		RoomIDs:      []int64{1, 2},
		CheckInDate:  NewDate(2025, time.January, 10),
		CheckOutDate: NewDate(2025, time.January, 13),
	}
	jan := func(d int) Date { return NewDate(2025, time.January, d) }

	assert.True(t, b.Overlaps(jan(12), jan(15)))
	assert.True(t, b.Overlaps(jan(9), jan(11)))
	assert.True(t, b.Overlaps(jan(11), jan(12)))
	assert.False(t, b.Overlaps(jan(13), jan(15)), "check-in on the checkout day")
	assert.False(t, b.Overlaps(jan(8), jan(10)), "checkout on the check-in day")

	assert.Equal(t, 3, b.Nights())
	assert.True(t, b.HasRoom(2))
	assert.False(t, b.HasRoom(3))
}

func TestBookingStatus(t *testing.T) {
	for _, s := range BlockingStatuses {
		assert.True(t, s.IsBlocking(), s)
	}
	assert.False(t, BookingCheckedOut.IsBlocking())
	assert.False(t, BookingCancelled.IsBlocking())
	assert.True(t, BookingCheckedOut.IsValid())
	assert.False(t, BookingStatus("archived").IsValid())
}
