package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking counters.  A nil *Metrics is valid and records
// nothing, which keeps the services usable without a registry.
type Metrics struct {
	BookingsCreated prometheus.Counter
	BookingsUpdated prometheus.Counter
	BookingsDeleted prometheus.Counter
	Rejections      *prometheus.CounterVec
	Backups         prometheus.Counter
	Restores        prometheus.Counter
	StoreErrors     *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewMetrics registers the counters on reg under namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		BookingsUpdated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_updated_total",
			Help:      "The total number of bookings edited",
		}),
		BookingsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_deleted_total",
			Help:      "The total number of bookings cancelled",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejections_total",
			Help:      "Booking mutations refused by the availability rules",
		}, []string{"reason"}),
		Backups: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "The total number of snapshots exported",
		}),
		Restores: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restores_total",
			Help:      "The total number of snapshots restored",
		}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Storage medium failures by operation",
		}, []string{"operation"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Created() {
	if m != nil {
		m.BookingsCreated.Inc()
	}
}

func (m *Metrics) Updated() {
	if m != nil {
		m.BookingsUpdated.Inc()
	}
}

func (m *Metrics) Deleted() {
	if m != nil {
		m.BookingsDeleted.Inc()
	}
}

// Rejected counts a refused mutation; reason is "date_full",
// "duplicate_phone" or "invalid".
func (m *Metrics) Rejected(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) BackedUp() {
	if m != nil {
		m.Backups.Inc()
	}
}

func (m *Metrics) Restored() {
	if m != nil {
		m.Restores.Inc()
	}
}

func (m *Metrics) StoreError(op string) {
	if m != nil {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	}
}
