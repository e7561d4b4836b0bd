package e2e

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-ticket-booking/internal/api/router"
	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
	"github.com/sanosuguru/go-event-ticket-booking/internal/config"
	"github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/memory"
	redisinfra "github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/metrics"
)

// TestServer はE2Eテスト用のサーバー
// ストレージはインメモリ、Redis は miniredis で代替する
type TestServer struct {
	Echo    *echo.Echo
	Store   *memory.Store
	Redis   *miniredis.Miniredis
	Booking *application.BookingService
	Metrics *metrics.Metrics
}

// NewTestServer はテストごとに独立したサーバーを作成する
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = config.DriverMemory
	cfg.RateLimit.Enabled = false

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redisinfra.NewEventStatusCache(client, cfg.Redis.CacheTTL)

	store := memory.NewStore()
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	bookingService := application.NewBookingService(store, store.Events(), store.Bookings(), store.WaitingList(),
		application.WithStatusCache(cache),
		application.WithMetrics(m),
		application.WithMaxAttempts(cfg.Booking.MaxAttempts),
	)
	eventService := application.NewEventService(store.Events(), store.WaitingList(), cache)
	userService := application.NewUserService(store.Users())

	e := router.New(cfg, router.Handlers{
		Booking: handler.NewBookingHandler(bookingService),
		Event:   handler.NewEventHandler(eventService),
		User:    handler.NewUserHandler(userService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": store,
			"redis":    redisinfra.NewPinger(client),
		}),
	}, m, reg)

	return &TestServer{Echo: e, Store: store, Redis: mr, Booking: bookingService, Metrics: m}
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// decode はレスポンスボディをJSONとして読む
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
