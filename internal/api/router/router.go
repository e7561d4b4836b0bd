package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-event-ticket-booking/internal/api"
	"github.com/sanosuguru/go-event-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-event-ticket-booking/internal/config"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/metrics"
)

// Handlers はルーティング対象のハンドラー
type Handlers struct {
	Booking *handler.BookingHandler
	Event   *handler.EventHandler
	User    *handler.UserHandler
	Health  *handler.HealthHandler
}

// New は共通ミドルウェアとルートを設定したEchoインスタンスを作成する
// gatherer が nil の場合 /metrics は公開しない
func New(cfg *config.Config, h Handlers, m *metrics.Metrics, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.IPExtractor = middleware.ClientIPExtractor(cfg.Server.TrustedProxies)

	middleware.SetupMiddleware(e, m)
	Register(e, cfg, h, gatherer)
	return e
}

// Register はルートを登録する
func Register(e *echo.Echo, cfg *config.Config, h Handlers, gatherer prometheus.Gatherer) {
	e.GET("/health", h.Health.Check)
	e.GET("/health/ready", h.Health.Ready)

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
			middleware.MetricsBasicAuth(cfg.Metrics))
	}

	v1 := e.Group("/api/v1")

	bookings := v1.Group("/booking", middleware.BookingRateLimiter(cfg.RateLimit))
	bookings.POST("/book", h.Booking.Book)
	bookings.POST("/cancel", h.Booking.Cancel)

	v1.POST("/events", h.Event.Create)
	v1.GET("/events/status/:eventId", h.Event.GetStatus)

	v1.POST("/users", h.User.Create)
}
