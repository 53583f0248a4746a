// Package metrics holds the Prometheus instruments of the settings host. All
// collectors are registered with the global registry, so serving
// promhttp.Handler() is enough to expose them.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-settingsform/pkg/form"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "settingsform_active_sessions",
			Help: "Number of editing sessions currently held by the host.",
		})

	ValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settingsform_validations_total",
			Help: "Field validations, by outcome.",
		}, []string{"outcome"})

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settingsform_requests_total",
			Help: "Configuration and action requests issued by sessions, by kind and outcome.",
		}, []string{"kind", "outcome"})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settingsform_request_duration_seconds",
			Help:    "Latency of configuration and action requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		ValidationsTotal,
		RequestsTotal,
		RequestDuration,
	)
}

// Observe records a session event. Install it with form.WithEventHook. A
// save blocked by invalid fields counts as "blocked" and issues no request,
// so it has no latency.
func Observe(evt form.Event) {
	outcome := "ok"
	if !evt.OK {
		outcome = "failed"
	}
	switch evt.Type {
	case form.EventValidate:
		ValidationsTotal.WithLabelValues(outcome).Inc()
	case form.EventSave, form.EventLoad, form.EventAction:
		kind := string(evt.Type)
		if errors.Is(evt.Err, form.ErrInvalid) {
			RequestsTotal.WithLabelValues(kind, "blocked").Inc()
			return
		}
		RequestsTotal.WithLabelValues(kind, outcome).Inc()
		RequestDuration.WithLabelValues(kind).Observe(evt.Duration.Seconds())
	}
}
