package nn

import (
	"fmt"

	"github.com/born-ml/nmt/internal/tensor"
)

// ContextGateType selects how a ContextGate mixes source and target context.
type ContextGateType string

// Supported gate variants (Tu et al. 2017).
const (
	SourceGate ContextGateType = "source" // gate the attention (source) side
	TargetGate ContextGateType = "target" // gate the decoder (target) side
	BothGate   ContextGateType = "both"   // convex mix of the two sides
)

// Validate reports whether g is a known gate variant.
func (g ContextGateType) Validate() error {
	switch g {
	case SourceGate, TargetGate, BothGate:
		return nil
	default:
		return fmt.Errorf("unknown context gate %q (want source, target or both)", string(g))
	}
}

// ContextGate blends the decoder input, the raw recurrent output and the
// attention output of one decoding step.
//
//	z      = σ(gate([emb; dec; attn]))
//	source = source_proj(attn)
//	target = target_proj([emb; dec])
//
// and then
//
//	source: tanh(target + z·source)
//	target: tanh(z·target + source)
//	both:   tanh((1-z)·target + z·source)
type ContextGate struct {
	kind       ContextGateType
	gate       *Linear
	sourceProj *Linear
	targetProj *Linear
}

// NewContextGate creates a gate of the given variant. embSize is the width of
// the decoder step input, decSize of the recurrent output, attnSize of the
// attention output; the gate emits outSize-wide vectors.
func NewContextGate(kind ContextGateType, embSize, decSize, attnSize, outSize int) *ContextGate {
	if err := kind.Validate(); err != nil {
		panic(fmt.Sprintf("ContextGate: %v", err))
	}
	return &ContextGate{
		kind:       kind,
		gate:       NewLinear(embSize+decSize+attnSize, outSize),
		sourceProj: NewLinear(attnSize, outSize),
		targetProj: NewLinear(embSize+decSize, outSize),
	}
}

// Forward computes the gated step output [batch, outSize].
func (g *ContextGate) Forward(emb, dec, attn *tensor.Tensor) *tensor.Tensor {
	if emb.Dim(0) != dec.Dim(0) || dec.Dim(0) != attn.Dim(0) {
		panic(fmt.Sprintf("ContextGate.Forward: batch mismatch %v %v %v", emb.Shape(), dec.Shape(), attn.Shape()))
	}

	z := g.gate.Forward(tensor.Cat([]*tensor.Tensor{emb, dec, attn}, 1)).Sigmoid()
	source := g.sourceProj.Forward(attn)
	target := g.targetProj.Forward(tensor.Cat([]*tensor.Tensor{emb, dec}, 1))

	switch g.kind {
	case SourceGate:
		return target.Add(z.Mul(source)).Tanh()
	case TargetGate:
		return z.Mul(target).Add(source).Tanh()
	default:
		oneMinus := z.Apply(func(v float64) float64 { return 1 - v })
		return oneMinus.Mul(target).Add(z.Mul(source)).Tanh()
	}
}

// Kind returns the gate variant.
func (g *ContextGate) Kind() ContextGateType { return g.kind }

// Parameters returns all trainable parameters.
func (g *ContextGate) Parameters() []*Parameter {
	params := g.gate.Parameters()
	params = append(params, g.sourceProj.Parameters()...)
	return append(params, g.targetProj.Parameters()...)
}
