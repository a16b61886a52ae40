package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RonaldAllanRivera/ride-info/internal/auth"
	"github.com/RonaldAllanRivera/ride-info/internal/pagination"
	"github.com/RonaldAllanRivera/ride-info/internal/repository/memory"
	"github.com/RonaldAllanRivera/ride-info/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type crudHandler interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Patch(*gin.Context)
	Delete(*gin.Context)
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	paginator := pagination.Paginator{DefaultSize: 10, MaxSize: 100}
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	users := NewUserHandler(service.NewUserService(store.Users, nil, nil), paginator)
	rides := NewRideHandler(service.NewRideService(store.Rides, store.Events, nil), paginator)
	events := NewRideEventHandler(service.NewRideEventService(store.Events, nil), paginator)
	login := NewAuthHandler(service.NewAuthService(store.Users, issuer))

	resources := map[string]crudHandler{
		"/users":       users,
		"/rides":       rides,
		"/ride-events": events,
	}

	r := gin.New()
	r.POST("/auth/token", login.Login)
	for path, h := range resources {
		g := r.Group(path)
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.PATCH("/:id", h.Patch)
		g.DELETE("/:id", h.Delete)
	}
	return &testServer{router: r, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createUser(t *testing.T, email, role string) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/users", gin.H{
		"role": role, "first_name": "Test", "last_name": "User",
		"email": email, "phone_number": "555", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u.ID
}

func (s *testServer) createRide(t *testing.T, riderID, driverID int64, lat, lon float64, pickup time.Time) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/rides", gin.H{
		"status": "pickup", "rider_id": riderID, "driver_id": driverID,
		"pickup_latitude": lat, "pickup_longitude": lon,
		"dropoff_latitude": 14.5, "dropoff_longitude": 121.0,
		"pickup_time": pickup.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var r RideResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r.ID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error
}

func TestUserHandler_CRUD(t *testing.T) {
	s := newTestServer(t)
	id := s.createUser(t, "jane@example.com", "standard")

	w := s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(t, http.MethodPost, "/users", gin.H{"email": "JANE@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user with this email already exists.", decodeError(t, w).Details["email"])

	w = s.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", id), gin.H{"first_name": "Janet"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "jane@example.com", updated.Email)

	w = s.do(t, http.MethodPut, fmt.Sprintf("/users/%d", id), gin.H{"first_name": "Janet"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This field is required.", decodeError(t, w).Details["email"])

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found.", decodeError(t, w).Message)

	w = s.do(t, http.MethodGet, "/users/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandler_DeleteReferenced(t *testing.T) {
	s := newTestServer(t)
	rider := s.createUser(t, "rider@example.com", "standard")
	driver := s.createUser(t, "driver@example.com", "standard")
	s.createRide(t, rider, driver, 14.6, 120.98, time.Now())

	w := s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", driver), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeConflict, decodeError(t, w).Code)
}

func TestUserHandler_ListPagination(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 12; i++ {
		s.createUser(t, fmt.Sprintf("user%02d@example.com", i), "standard")
	}
	s.createUser(t, "boss@example.com", "admin")

	var page pagination.Page[UserResponse]

	w := s.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 13, page.Count)
	assert.Len(t, page.Results, 10)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://example.com/users?page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = s.do(t, http.MethodGet, "/users?page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = pagination.Page[UserResponse]{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Results, 3)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/users", *page.Previous)

	w = s.do(t, http.MethodGet, "/users?page=3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invalid page.", decodeError(t, w).Message)

	w = s.do(t, http.MethodGet, "/users?role=ADMIN", nil)
	page = pagination.Page[UserResponse]{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "boss@example.com", page.Results[0].Email)
}

func TestUserHandler_EmptyListIsFirstPage(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, w.Body.String())
}

func TestBindJSON_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"wrong type", `{"rider_id":"one"}`, "rider_id", msgInvalidInteger},
		{"bad time", `{"pickup_time":"yesterday"}`, "pickup_time", msgInvalidTime},
		{"malformed", `{"status":`, "non_field_errors", "JSON parse error."},
		{"too long", `{"status":"` + string(bytes.Repeat([]byte("x"), 51)) + `"}`, "status", "Ensure this field has no more than 50 characters."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/rides", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, CodeValidation, body.Code)
			assert.Equal(t, tt.message, body.Details[tt.field])
		})
	}
}

func TestRideHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/rides", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decodeError(t, w).Details
	for _, field := range []string{"status", "rider_id", "driver_id", "pickup_latitude", "pickup_longitude", "dropoff_latitude", "dropoff_longitude", "pickup_time"} {
		assert.Contains(t, details, field)
	}
}

func TestRideHandler_ListWithDistanceAndEvents(t *testing.T) {
	s := newTestServer(t)
	rider := s.createUser(t, "rider@example.com", "standard")
	driver := s.createUser(t, "driver@example.com", "standard")
	now := time.Now().UTC().Truncate(time.Second)

	far := s.createRide(t, rider, driver, 10.0, 120.0, now)
	near := s.createRide(t, rider, driver, 14.6, 120.98, now.Add(time.Hour))

	w := s.do(t, http.MethodPost, "/ride-events", gin.H{"ride_id": near, "description": "Status changed to pickup"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/ride-events", gin.H{
		"ride_id": near, "description": "old", "created_at": now.Add(-48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/rides?lat=14.6&lon=120.98&ordering=distance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page pagination.Page[RideListingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Results, 2)
	assert.Equal(t, near, page.Results[0].ID)
	assert.Equal(t, far, page.Results[1].ID)
	require.NotNil(t, page.Results[0].DistanceToPickupMeters)
	assert.InDelta(t, 0, *page.Results[0].DistanceToPickupMeters, 0.001)
	assert.Greater(t, *page.Results[1].DistanceToPickupMeters, 100000.0)
	assert.Equal(t, "rider@example.com", page.Results[0].Rider.Email)
	assert.Equal(t, "driver@example.com", page.Results[0].Driver.Email)
	require.Len(t, page.Results[0].TodaysRideEvents, 1)
	assert.Equal(t, "Status changed to pickup", page.Results[0].TodaysRideEvents[0].Description)
	assert.NotNil(t, page.Results[1].TodaysRideEvents)
	assert.Empty(t, page.Results[1].TodaysRideEvents)

	w = s.do(t, http.MethodGet, "/rides", nil)
	assert.Contains(t, w.Body.String(), `"distance_to_pickup_meters":null`)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/rides/%d?lat=14.6&lon=120.98", far), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var single RideListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &single))
	require.NotNil(t, single.DistanceToPickupMeters)
}

func TestRideHandler_ListParamErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/rides?ordering=-distance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "ordering")

	w = s.do(t, http.MethodGet, "/rides?lat=north&lon=120", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := decodeError(t, w).Details
	assert.Equal(t, "Must be a number", details["lat"])
	assert.Equal(t, "Must be a number", details["lon"])

	w = s.do(t, http.MethodGet, "/rides?ordering=bogus", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRideHandler_DeleteCascades(t *testing.T) {
	s := newTestServer(t)
	rider := s.createUser(t, "rider@example.com", "standard")
	driver := s.createUser(t, "driver@example.com", "standard")
	ride := s.createRide(t, rider, driver, 14.6, 120.98, time.Now())

	w := s.do(t, http.MethodPost, "/ride-events", gin.H{"ride_id": ride, "description": "created"})
	require.Equal(t, http.StatusCreated, w.Code)
	var event RideEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))

	w = s.do(t, http.MethodDelete, fmt.Sprintf("/rides/%d", ride), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/ride-events/%d", event.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRideEventHandler_ListFilter(t *testing.T) {
	s := newTestServer(t)
	rider := s.createUser(t, "rider@example.com", "standard")
	driver := s.createUser(t, "driver@example.com", "standard")
	first := s.createRide(t, rider, driver, 14.6, 120.98, time.Now())
	second := s.createRide(t, rider, driver, 14.6, 120.98, time.Now())

	for _, id := range []int64{first, first, second} {
		w := s.do(t, http.MethodPost, "/ride-events", gin.H{"ride_id": id, "description": "event"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := s.do(t, http.MethodGet, fmt.Sprintf("/ride-events?ride_id=%d", first), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page pagination.Page[RideEventResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Count)

	w = s.do(t, http.MethodGet, "/ride-events?ride_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "ride_id")
}

func TestAuthHandler_Login(t *testing.T) {
	s := newTestServer(t)
	s.createUser(t, "admin@example.com", "admin")
	s.createUser(t, "user@example.com", "standard")

	w := s.do(t, http.MethodPost, "/auth/token", gin.H{"email": "admin@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var token TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	tests := []struct {
		name    string
		body    gin.H
		status  int
		message string
	}{
		{"wrong password", gin.H{"email": "admin@example.com", "password": "nope"}, http.StatusUnauthorized, "Invalid email or password."},
		{"unknown email", gin.H{"email": "ghost@example.com", "password": "secret"}, http.StatusUnauthorized, "Invalid email or password."},
		{"not admin", gin.H{"email": "user@example.com", "password": "secret"}, http.StatusUnauthorized, "Admin access required."},
		{"missing password", gin.H{"email": "admin@example.com"}, http.StatusBadRequest, "Invalid input."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/auth/token", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeError(t, w).Message)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("down") }),
		"disabled": nil,
	})
	r := gin.New()
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"database":"ok","redis":"unavailable"}}`, w.Body.String())
}
