// Package metrics exposes the decision core's counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karlbackan/gigaverse-bot-sub002/pkg/rps"
)

// Collector implements brain.Observer on top of Prometheus collectors.
type Collector struct {
	registry *prometheus.Registry

	rounds      *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	predictions *prometheus.CounterVec
	winRate     *prometheus.GaugeVec
}

// New creates a Collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_rounds_total",
			Help: "Recorded rounds by outcome (bot's perspective).",
		}, []string{"mode", "outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_decisions_total",
			Help: "Decisions by policy path.",
		}, []string{"mode", "path"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bot_predictions_total",
			Help: "Scored predictions by correctness.",
		}, []string{"mode", "result"}),
		winRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bot_recent_win_rate",
			Help: "Win rate over the rolling outcome window.",
		}, []string{"mode"}),
	}
	c.registry.MustRegister(c.rounds, c.decisions, c.predictions, c.winRate)
	return c
}

// ObserveDecision counts one decision by policy path.
func (c *Collector) ObserveDecision(mode, path string) {
	c.decisions.WithLabelValues(mode, path).Inc()
}

// ObserveOutcome counts one resolved round and refreshes the rolling
// win-rate gauge.
func (c *Collector) ObserveOutcome(mode string, outcome rps.Outcome, recentWinRate float64) {
	c.rounds.WithLabelValues(mode, outcome.String()).Inc()
	c.winRate.WithLabelValues(mode).Set(recentWinRate)
}

// ObservePrediction counts one scored prediction.
func (c *Collector) ObservePrediction(mode string, correct bool) {
	result := "wrong"
	if correct {
		result = "correct"
	}
	c.predictions.WithLabelValues(mode, result).Inc()
}

// Handler returns the /metrics HTTP handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
