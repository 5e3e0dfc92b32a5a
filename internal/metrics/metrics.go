package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voiceshop"

// Parser outcomes
const (
	ParserOK       = "ok"
	ParserDisabled = "disabled"
	ParserError    = "error"
	ParserEmpty    = "empty"
)

// Metrics groups the collectors recorded per turn.
type Metrics struct {
	Turns          *prometheus.CounterVec
	Clarifications *prometheus.CounterVec
	ParserResults  *prometheus.CounterVec
	CatalogFetches *prometheus.CounterVec
	TurnDuration   prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Turns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of resolved dialog turns by action",
			},
			[]string{"action"},
		),
		Clarifications: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clarifications_total",
				Help:      "Total number of clarification prompts by pending slot",
			},
			[]string{"slot"},
		),
		ParserResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parser_results_total",
				Help:      "Outcomes of the probabilistic utterance parser",
			},
			[]string{"outcome"},
		),
		CatalogFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_fetch_total",
				Help:      "Catalog fetches by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		TurnDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Time spent resolving one turn, catalog fetch included",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// NewNop returns collectors bound to a private registry that nothing scrapes.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
