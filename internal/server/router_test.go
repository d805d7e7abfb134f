package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hotel/internal/config"
	"hotel/internal/database"
	"hotel/internal/domain"
	"hotel/internal/pkg/logger"
	"hotel/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type bookingBody struct {
	Booking struct {
		ID         int64   `json:"id"`
		TotalPrice float64 `json:"totalPrice"`
		Status     string  `json:"status"`
		GuestID    int64   `json:"user"`
	} `json:"booking"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	repos  struct {
		users *repository.UserRepository
		rooms *repository.RoomRepository
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIAt(t, ":memory:")
}

func newTestAPIAt(t *testing.T, dsn string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.Discard()
	db, err := database.Connect(dsn, log)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	cfg := &config.Config{
		AppEnv:             "test",
		JWTSecret:          "router-test-secret",
		JWTTTL:             time.Hour,
		StoreTimeout:       5 * time.Second,
		GuestInitialStatus: domain.BookingConfirmed,
		StaffInitialStatus: domain.BookingConfirmed,
		NotifyTimeout:      time.Second,
		NotifyDedupeTTL:    time.Hour,
	}
	srv := New(Deps{Config: cfg, DB: db, Log: log})
	t.Cleanup(srv.Dispatcher.Wait)

	api := &testAPI{t: t, engine: srv.Engine}
	api.repos.users = repository.NewUserRepository(db)
	api.repos.rooms = repository.NewRoomRepository(db)
	return api
}

func (a *testAPI) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (a *testAPI) seedStaff(email string) {
	a.seedUser(email, domain.RoleStaff)
}

func (a *testAPI) seedUser(email string, role domain.UserRole) int64 {
	hash, err := bcrypt.GenerateFromPassword([]byte("staff-password"), bcrypt.MinCost)
	require.NoError(a.t, err)
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserActive,
		Name:         "Front Desk",
	}
	require.NoError(a.t, a.repos.users.Create(context.Background(), u))
	return u.ID
}

func (a *testAPI) seedRoom(number string, price float64) int64 {
	r := &domain.Room{RoomNumber: number, RoomType: domain.RoomDouble, PricePerNight: price, Status: domain.RoomAvailable}
	require.NoError(a.t, a.repos.rooms.Create(context.Background(), r))
	return r.ID
}

func (a *testAPI) registerGuest(email string) string {
	code, env := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Guest", "email": email, "password": "guest-password",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Error.Message)
	return a.login(email, "guest-password")
}

func (a *testAPI) login(email, password string) string {
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(a.t, http.StatusOK, code, env.Error.Message)
	var res struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(a.t, res.AccessToken)
	return res.AccessToken
}

func (a *testAPI) book(token string, rooms []int64, in, out string) (int, envelope, bookingBody) {
	code, env := a.do(http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"rooms": rooms, "checkInDate": in, "checkOutDate": out,
	})
	var b bookingBody
	if env.Success {
		require.NoError(a.t, json.Unmarshal(env.Data, &b))
	}
	return code, env, b
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestBookingFlow_OverlapAndAdjacent(t *testing.T) {
	api := newTestAPI(t)
	r1 := api.seedRoom("101", 1000)
	r2 := api.seedRoom("102", 1000)

	alice := api.registerGuest("alice@example.com")
	bob := api.registerGuest("bob@example.com")

	code, env, first := api.book(alice, []int64{r1, r2}, "2025-01-10", "2025-01-13")
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	assert.Equal(t, 6000.0, first.Booking.TotalPrice)
	assert.Equal(t, "confirmed", first.Booking.Status)

	code, env, _ = api.book(bob, []int64{r2}, "2025-01-12", "2025-01-15")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env, _ = api.book(bob, []int64{r1}, "2025-01-13", "2025-01-15")
	assert.Equal(t, http.StatusCreated, code, env.Error.Message)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/bookings/availability?rooms=%d,%d&check_in=2025-01-11&check_out=2025-01-12", r1, r2), bob, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	var avail struct {
		Available bool `json:"available"`
		Conflicts []struct {
			ID int64 `json:"id"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.False(t, avail.Available)
	assert.Empty(t, avail.Conflicts, "another guest's booking must not be listed")

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/v1/bookings/availability?rooms=%d&check_in=2025-01-11&check_out=2025-01-12", r1), alice, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	require.Len(t, avail.Conflicts, 1)
	assert.Equal(t, first.Booking.ID, avail.Conflicts[0].ID)
}

func TestBookingFlow_ConcurrentRequestsSingleWinner(t *testing.T) {
	api := newTestAPIAt(t, filepath.Join(t.TempDir(), "hotel.db"))
	r1 := api.seedRoom("101", 1000)
	r2 := api.seedRoom("102", 1000)

	const guests = 6
	tokens := make([]string, guests)
	for i := range tokens {
		tokens[i] = api.registerGuest(fmt.Sprintf("guest%d@example.com", i))
	}

	codes := make([]int, guests)
	var wg sync.WaitGroup
	for i := 0; i < guests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rooms := []int64{r1, r2}
			if i%2 == 1 {
				rooms = []int64{r2, r1}
			}
			body, _ := json.Marshal(map[string]any{
				"rooms": rooms, "checkInDate": "2025-03-01", "checkOutDate": "2025-03-04",
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+tokens[i])
			w := httptest.NewRecorder()
			api.engine.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 1, created)

	code, env := api.do(http.MethodGet, fmt.Sprintf("/api/v1/bookings/availability?rooms=%d&check_in=2025-03-01&check_out=2025-03-04", r2), tokens[0], nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	var avail struct {
		Available bool `json:"available"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.False(t, avail.Available)
}

func TestBookingFlow_LifecycleAndOwnership(t *testing.T) {
	api := newTestAPI(t)
	room := api.seedRoom("201", 800)
	api.seedStaff("desk@example.com")

	alice := api.registerGuest("alice@example.com")
	bob := api.registerGuest("bob@example.com")
	staff := api.login("desk@example.com", "staff-password")

	code, env, b := api.book(alice, []int64{room}, "2025-02-01", "2025-02-03")
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	path := fmt.Sprintf("/api/v1/bookings/%d", b.Booking.ID)

	code, env = api.do(http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = api.do(http.MethodPatch, path+"/check-out", staff, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodPatch, path+"/check-in", staff, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, env = api.do(http.MethodPatch, path+"/check-out", staff, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, env = api.do(http.MethodPatch, path+"/cancel", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	// checked-out stays no longer block the room
	code, env, _ = api.book(bob, []int64{room}, "2025-02-01", "2025-02-03")
	assert.Equal(t, http.StatusCreated, code, env.Error.Message)
}

func TestRoleGates(t *testing.T) {
	api := newTestAPI(t)
	guest := api.registerGuest("carol@example.com")

	code, env := api.do(http.MethodPost, "/api/v1/rooms", guest, map[string]any{
		"roomNumber": "301", "roomType": "Single", "pricePerNight": 500,
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)

	code, _ = api.do(http.MethodPost, "/api/v1/bookings", "", map[string]any{"rooms": []int64{1}})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(http.MethodGet, "/api/v1/rooms", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminUserManagement(t *testing.T) {
	api := newTestAPI(t)
	adminID := api.seedUser("root@example.com", domain.RoleAdmin)
	deskID := api.seedUser("desk@example.com", domain.RoleStaff)
	admin := api.login("root@example.com", "staff-password")
	guest := api.registerGuest("dana@example.com")

	code, _ := api.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", deskID), guest, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", deskID), admin, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, env = api.do(http.MethodPut, fmt.Sprintf("/api/v1/users/%d", deskID), admin, map[string]any{
		"name": "Night Desk", "role": "guest",
	})
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	var body struct {
		User domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "Night Desk", body.User.Name)
	assert.Equal(t, domain.RoleGuest, body.User.Role)

	code, env = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", adminID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", deskID), admin, nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)

	code, _ = api.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", deskID), admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPopularServices(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodGet, "/api/v1/services/popular?limit=3", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Zero(t, body.Count)

	code, _ = api.do(http.MethodGet, "/api/v1/services/popular?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
