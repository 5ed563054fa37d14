package onmt

import "github.com/born-ml/nmt/internal/tensor"

// Attention map keys.
const (
	AttnStd         = "std"
	AttnCopy        = "copy"
	AttnCoverage    = "coverage"
	AttnUpperBounds = "upper_bounds"
)

// Attentions holds the attention maps of one decoding call, each stacked as
// (tgtLen × srcLen × batch). Optional maps are nil when their mechanism is
// disabled.
type Attentions struct {
	Std         *tensor.Tensor
	Copy        *tensor.Tensor
	Coverage    *tensor.Tensor
	UpperBounds *tensor.Tensor
}

// Map returns the present maps keyed by name.
func (a *Attentions) Map() map[string]*tensor.Tensor {
	m := map[string]*tensor.Tensor{AttnStd: a.Std}
	if a.Copy != nil {
		m[AttnCopy] = a.Copy
	}
	if a.Coverage != nil {
		m[AttnCoverage] = a.Coverage
	}
	if a.UpperBounds != nil {
		m[AttnUpperBounds] = a.UpperBounds
	}
	return m
}

// attnRecorder collects per-step [batch, srcLen] maps for the enabled
// mechanisms.
type attnRecorder struct {
	std, copy, coverage, upperBounds []*tensor.Tensor
	f                                features
}

func newAttnRecorder(f features, steps int) *attnRecorder {
	r := &attnRecorder{f: f, std: make([]*tensor.Tensor, 0, steps)}
	if f.copy {
		r.copy = make([]*tensor.Tensor, 0, steps)
	}
	if f.coverage {
		r.coverage = make([]*tensor.Tensor, 0, steps)
	}
	if f.exhaustion {
		r.upperBounds = make([]*tensor.Tensor, 0, steps)
	}
	return r
}

// stack builds the (tgtLen × srcLen × batch) maps.
func (r *attnRecorder) stack() *Attentions {
	a := &Attentions{Std: stackMaps(r.std)}
	if r.f.copy {
		a.Copy = stackMaps(r.copy)
	}
	if r.f.coverage {
		a.Coverage = stackMaps(r.coverage)
	}
	if r.f.exhaustion {
		a.UpperBounds = stackMaps(r.upperBounds)
	}
	return a
}

func stackMaps(steps []*tensor.Tensor) *tensor.Tensor {
	cols := make([]*tensor.Tensor, len(steps))
	for i, s := range steps {
		cols[i] = s.Transpose(0, 1)
	}
	return tensor.Stack(cols, 0)
}
