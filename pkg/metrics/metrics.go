// Package metrics exposes Prometheus counters for the analysis pipeline.
// All methods are safe to call on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "conceptube"

type Metrics struct {
	Requests       *prometheus.CounterVec
	ModelCalls     prometheus.Counter
	DroppedGroups  prometheus.Counter
	BillableChars  prometheus.Counter
	EstimatedCost  *prometheus.CounterVec
	TranscriptErrs *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyze_requests_total",
			Help:      "Video analysis requests by outcome.",
		}, []string{"outcome"}),
		ModelCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Concept extraction calls made to the generative model.",
		}),
		DroppedGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_groups_total",
			Help:      "Groups whose model output contained no JSON object.",
		}),
		BillableChars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billable_characters_total",
			Help:      "Billable characters of retrieved transcripts.",
		}),
		EstimatedCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimated_cost_dollars_total",
			Help:      "Estimated model cost in dollars by direction.",
		}, []string{"direction"}),
		TranscriptErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_source_errors_total",
			Help:      "Failed transcript fetches by source.",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.ModelCalls, m.DroppedGroups,
			m.BillableChars, m.EstimatedCost, m.TranscriptErrs)
	}
	return m
}

func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveModelCall(inputCost, outputCost float64) {
	if m == nil {
		return
	}
	m.ModelCalls.Inc()
	m.EstimatedCost.WithLabelValues("input").Add(inputCost)
	m.EstimatedCost.WithLabelValues("output").Add(outputCost)
}

func (m *Metrics) ObserveDroppedGroup() {
	if m == nil {
		return
	}
	m.DroppedGroups.Inc()
}

func (m *Metrics) ObserveBillableChars(n int) {
	if m == nil || n < 0 {
		return
	}
	m.BillableChars.Add(float64(n))
}

func (m *Metrics) ObserveSourceError(source string) {
	if m == nil {
		return
	}
	m.TranscriptErrs.WithLabelValues(source).Inc()
}
