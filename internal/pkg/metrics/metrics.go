package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 予約結果のラベル
const (
	ResultBooked     = "booked"
	ResultWaitlisted = "waitlisted"
	ResultConflict   = "conflict"
	ResultNotFound   = "not_found"
	ResultError      = "error"
)

// 繰り上げのきっかけ
const (
	SourceCancellation = "cancellation"
	SourceReconciler   = "reconciler"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約リクエストの結果（result: booked, waitlisted, conflict, not_found, error）
	BookingsTotal *prometheus.CounterVec

	// 楽観的ロック競合による再試行回数
	BookingRetriesTotal prometheus.Counter

	// キャンセルの結果（result: cancelled, promoted, not_found, conflict, error）
	CancellationsTotal *prometheus.CounterVec

	// 順番待ちからの繰り上げ数（source: cancellation, reconciler）
	WaitlistPromotionsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking requests by outcome",
			},
			[]string{"result"},
		),
		BookingRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "booking_conflict_retries_total",
				Help: "Booking attempts retried after a concurrent update",
			},
		),
		CancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_cancellations_total",
				Help: "Total number of cancellation requests by outcome",
			},
			[]string{"result"},
		),
		WaitlistPromotionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_promotions_total",
				Help: "Waiting list entries promoted to bookings",
			},
			[]string{"source"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.BookingRetriesTotal,
		m.CancellationsTotal,
		m.WaitlistPromotionsTotal,
		m.DistributedLockDuration,
	)

	return m
}

// 以下の記録用メソッドは nil レシーバでも安全に呼べる

func (m *Metrics) RecordBooking(result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordBookingRetry() {
	if m == nil {
		return
	}
	m.BookingRetriesTotal.Inc()
}

func (m *Metrics) RecordCancellation(result string) {
	if m == nil {
		return
	}
	m.CancellationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordPromotions(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.WaitlistPromotionsTotal.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) ObserveLock(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
