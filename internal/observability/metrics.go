// internal/observability/metrics.go
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	mealsLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nutrition_log",
		Name:      "meals_logged_total",
		Help:      "Number of meal records persisted.",
	})

	lookupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nutrition_log",
		Name:      "lookups_total",
		Help:      "Nutrition provider lookups grouped by outcome (ok, not_found, provider_error, invalid_input).",
	}, []string{"outcome"})

	queryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nutrition_log",
		Name:      "queries_total",
		Help:      "Aggregate queries grouped by kind and outcome.",
	}, []string{"kind", "outcome"})

	lastMealGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nutrition_log",
		Name:      "last_meal_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent meal record persisted.",
	})
)

func init() {
	prometheus.MustRegister(mealsLoggedCounter, lookupCounter, queryCounter, lastMealGauge)
}

// RecordMealLogged counts a persisted record and moves the watermark gauge.
func RecordMealLogged(ts time.Time) {
	mealsLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	lastMealGauge.Set(float64(ts.Unix()))
}

func RecordLookup(outcome string) {
	lookupCounter.WithLabelValues(outcome).Inc()
}

func RecordQuery(kind, outcome string) {
	queryCounter.WithLabelValues(kind, outcome).Inc()
}
