// Package metrics provides Prometheus metrics for the pick pipeline.
// Labels stay low-cardinality: no session IDs or paths.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snapetech/vidpicker/internal/pick"
)

var (
	// OutcomesTotal counts delivered outcomes by kind and error kind.
	OutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidpicker",
		Name:      "pick_outcomes_total",
		Help:      "Total number of delivered pick outcomes, by outcome and error kind.",
	}, []string{"outcome", "error_kind"})

	// AuthorizationTotal counts authorization answers by status.
	AuthorizationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidpicker",
		Name:      "authorization_total",
		Help:      "Total number of authorization answers, by status.",
	}, []string{"status"})

	// StartRejectedTotal counts Start calls refused before a run began.
	StartRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vidpicker",
		Name:      "start_rejected_total",
		Help:      "Total number of rejected session starts, by reason.",
	}, []string{"reason"})

	// StageSeconds observes how long each pipeline stage waited.
	StageSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vidpicker",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each pick pipeline stage.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"stage"})

	// SessionsInFlight is 1 while a run is between Start and delivery.
	SessionsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vidpicker",
		Name:      "sessions_in_flight",
		Help:      "Number of pick sessions currently in flight.",
	})
)

// ObserveOutcome records a delivered outcome.
func ObserveOutcome(out pick.Outcome) {
	OutcomesTotal.WithLabelValues(out.Kind.String(), pick.KindOf(out.Err).String()).Inc()
}

// ObserveStage records the time spent in stage since start.
func ObserveStage(stage string, start time.Time) {
	StageSeconds.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
