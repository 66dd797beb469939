// Package metrics counts AI attempts, retries and token usage for a session.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kstost/firstvibe/internal/normalize"
)

// Collector holds the session's Prometheus metrics in a private registry.
type Collector struct {
	registry *prometheus.Registry

	attemptsTotal    *prometheus.CounterVec
	retriesTotal     *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	tokensTotal      *prometheus.CounterVec
	latencySeconds   *prometheus.HistogramVec

	usage *UsageTracker
}

// New creates a Collector.
func New() *Collector {
	r := prometheus.NewRegistry()
	c := &Collector{
		registry: r,
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firstvibe_ai_attempts_total",
			Help: "Provider attempts by outcome.",
		}, []string{"provider", "purpose", "outcome"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firstvibe_ai_retries_total",
			Help: "Automatic retries by error class.",
		}, []string{"provider", "class"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firstvibe_ai_escalations_total",
			Help: "Operator escalations by purpose.",
		}, []string{"purpose"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firstvibe_ai_tokens_total",
			Help: "Tokens sent and received, estimated when the provider does not report them.",
		}, []string{"provider", "direction"}),
		latencySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "firstvibe_ai_attempt_duration_seconds",
			Help:    "Duration of a single provider attempt.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"provider", "purpose"}),
		usage: NewUsageTracker(),
	}
	r.MustRegister(c.attemptsTotal, c.retriesTotal, c.escalationsTotal, c.tokensTotal, c.latencySeconds)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveAttempt records one provider attempt. Outcome is "success" or an
// error class name.
func (c *Collector) ObserveAttempt(provider, purpose, outcome string, dur time.Duration) {
	c.attemptsTotal.WithLabelValues(provider, purpose, outcome).Inc()
	c.latencySeconds.WithLabelValues(provider, purpose).Observe(dur.Seconds())
}

// ObserveRetry records an automatic retry.
func (c *Collector) ObserveRetry(provider, class string) {
	c.retriesTotal.WithLabelValues(provider, class).Inc()
}

// ObserveEscalation records an operator prompt.
func (c *Collector) ObserveEscalation(purpose string) {
	c.escalationsTotal.WithLabelValues(purpose).Inc()
}

// ObserveUsage records token usage of a successful call. When the provider
// reported nothing, counts are estimated from the prompt and completion.
func (c *Collector) ObserveUsage(provider, purpose string, u normalize.Usage, prompt, completion string) {
	estimated := false
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		u = normalize.Usage{
			InputTokens:  EstimateTokens(prompt),
			OutputTokens: EstimateTokens(completion),
		}
		estimated = true
	}
	c.tokensTotal.WithLabelValues(provider, "input").Add(float64(u.InputTokens))
	c.tokensTotal.WithLabelValues(provider, "output").Add(float64(u.OutputTokens))
	c.usage.Add(purpose, u, estimated)
}

// Usage returns the per-purpose usage tracker.
func (c *Collector) Usage() *UsageTracker {
	return c.usage
}

// WriteTextfile exports every metric in the Prometheus text format, for
// node_exporter's textfile collector or later inspection.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
