package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(quietLogger())

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", int64(42))
		hub.HandleWS(c)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.Connected() == 1 }, time.Second, 10*time.Millisecond)

	ch := NewHubChannel(hub)
	require.NoError(t, ch.Send(context.Background(), sampleEvent(domain.NotifCheckedIn)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got WSEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, domain.NotifCheckedIn, got.Type)
	assert.Equal(t, int64(7), got.Payload.Booking.ID)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connected() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(quietLogger())
	assert.Equal(t, 0, hub.Broadcast(&WSEvent{Type: domain.NotifCancelled}))
}
