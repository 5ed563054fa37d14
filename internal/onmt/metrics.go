package onmt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors updated by NMTModel.
type Metrics struct {
	EncoderTokens      prometheus.Counter
	DecoderSteps       prometheus.Counter
	ExhaustedPositions prometheus.Histogram
}

// NewMetrics creates and registers the collectors with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EncoderTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "nmt_encoder_tokens_total",
			Help: "Source tokens encoded, padding excluded",
		}),
		DecoderSteps: factory.NewCounter(prometheus.CounterOpts{
			Name: "nmt_decoder_steps_total",
			Help: "Target time steps decoded",
		}),
		ExhaustedPositions: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "nmt_fertility_exhausted_positions",
			Help:    "Source positions with no fertility budget left after a decoding call",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
}

func (m *Metrics) observeEncoder(src *Tokens, lengths []int) {
	if m == nil {
		return
	}
	if lengths == nil {
		m.EncoderTokens.Add(float64(src.Len() * src.Batch()))
		return
	}
	total := 0
	for _, l := range lengths {
		total += l
	}
	m.EncoderTokens.Add(float64(total))
}

func (m *Metrics) observeDecoder(steps int, budget *FertilityBudget) {
	if m == nil {
		return
	}
	m.DecoderSteps.Add(float64(steps))
	m.ExhaustedPositions.Observe(float64(budget.Exhausted()))
}
