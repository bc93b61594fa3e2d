package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the registration engine.
type Metrics struct {
	RegistrationsCreated prometheus.Counter
	RegistrationsDeleted prometheus.Counter
	FieldUpdates         prometheus.Counter
	FileReplacements     prometheus.Counter
	PaymentStatusPolls   prometheus.Counter
	SessionRotations     prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registerer; tests pass a fresh
// registry to avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "regflow_registrations_created_total",
			Help: "Total number of registrations created",
		}),
		RegistrationsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "regflow_registrations_deleted_total",
			Help: "Total number of registrations deleted",
		}),
		FieldUpdates: factory.NewCounter(prometheus.CounterOpts{
			Name: "regflow_field_updates_total",
			Help: "Total number of per-field updates applied",
		}),
		FileReplacements: factory.NewCounter(prometheus.CounterOpts{
			Name: "regflow_file_replacements_total",
			Help: "Total number of file attachments stored or replaced",
		}),
		PaymentStatusPolls: factory.NewCounter(prometheus.CounterOpts{
			Name: "regflow_payment_status_polls_total",
			Help: "Total number of payment gateway status polls issued",
		}),
		SessionRotations: factory.NewCounter(prometheus.CounterOpts{
			Name: "regflow_session_rotations_total",
			Help: "Total number of session identity regenerations",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regflow_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
