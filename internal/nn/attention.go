package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/nmt/internal/parallel"
	"github.com/born-ml/nmt/internal/tensor"
)

// AttentionType selects the score function of GlobalAttention.
type AttentionType string

// Supported score functions.
const (
	DotAttention     AttentionType = "dot"     // score = h_s · h_t
	GeneralAttention AttentionType = "general" // score = h_s · W h_t
	MLPAttention     AttentionType = "mlp"     // score = v · tanh(W h_s + U h_t)
)

// Validate reports whether a is a known score function.
func (a AttentionType) Validate() error {
	switch a {
	case DotAttention, GeneralAttention, MLPAttention:
		return nil
	default:
		return fmt.Errorf("unknown attention type %q (want dot, general or mlp)", string(a))
	}
}

// GlobalAttention attends from a single query vector over every position of
// a memory bank (Luong et al. 2015; Bahdanau et al. 2015 for mlp scores).
//
// Output:
//
//	a   = transform(score(h_t, h_s), upper)
//	c   = Σ_s a_s h_s
//	out = linear_out([c; h_t])          (mlp)
//	out = tanh(linear_out([c; h_t]))    (dot, general)
//
// Example:
//
//	attn := nn.NewGlobalAttention(64, nn.GeneralAttention, nn.ConstrainedSoftmax)
//	out, align := attn.Forward(query, memory, bounds) // [B,64], [B,S]
type GlobalAttention struct {
	dim       int
	attnType  AttentionType
	transform AttnTransform

	linearIn      *Linear // general
	linearContext *Linear // mlp
	linearQuery   *Linear // mlp
	v             *Linear // mlp
	linearOut     *Linear
}

// NewGlobalAttention creates an attention layer over dim-wide vectors.
func NewGlobalAttention(dim int, attnType AttentionType, transform AttnTransform) *GlobalAttention {
	if err := attnType.Validate(); err != nil {
		panic(fmt.Sprintf("GlobalAttention: %v", err))
	}
	if err := transform.Validate(); err != nil {
		panic(fmt.Sprintf("GlobalAttention: %v", err))
	}

	a := &GlobalAttention{dim: dim, attnType: attnType, transform: transform}
	switch attnType {
	case GeneralAttention:
		a.linearIn = NewLinearNoBias(dim, dim)
	case MLPAttention:
		a.linearContext = NewLinearNoBias(dim, dim)
		a.linearQuery = NewLinear(dim, dim)
		a.v = NewLinearNoBias(dim, 1)
	}
	if attnType == MLPAttention {
		a.linearOut = NewLinear(2*dim, dim)
	} else {
		a.linearOut = NewLinearNoBias(2*dim, dim)
	}
	return a
}

// Forward attends with query [batch, dim] over memory [batch, srcLen, dim].
// upper is [batch, srcLen] or nil and is read by constrained transforms only.
//
// Returns the attentional output [batch, dim] and the weights [batch, srcLen].
func (a *GlobalAttention) Forward(query, memory, upper *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	if query.Rank() != 2 || memory.Rank() != 3 {
		panic(fmt.Sprintf("GlobalAttention.Forward: expected [B, dim] query and [B, S, dim] memory, got %v and %v",
			query.Shape(), memory.Shape()))
	}
	batch, srcLen := memory.Dim(0), memory.Dim(1)
	if query.Dim(0) != batch {
		panic(fmt.Sprintf("GlobalAttention.Forward: batch mismatch %d vs %d", query.Dim(0), batch))
	}
	if query.Dim(1) != a.dim || memory.Dim(2) != a.dim {
		panic(fmt.Sprintf("GlobalAttention.Forward: width mismatch, layer expects %d, got query %v memory %v",
			a.dim, query.Shape(), memory.Shape()))
	}

	align := a.transform.Normalize(a.score(query, memory), upper)

	context := tensor.Derived(tensor.Shape{batch, a.dim}, align, memory)
	rows := memory.Reshape(batch*srcLen, a.dim)
	parallel.For(batch, func(b int) {
		c := context.Row(b)
		for s, w := range align.Row(b) {
			if w != 0 {
				floats.AddScaled(c, w, rows.Row(b*srcLen+s))
			}
		}
	}, rowParallelism)

	out := a.linearOut.Forward(tensor.Cat([]*tensor.Tensor{context, query}, 1))
	if a.attnType != MLPAttention {
		out = out.Tanh()
	}
	return out, align
}

// score returns unnormalised scores [batch, srcLen].
func (a *GlobalAttention) score(query, memory *tensor.Tensor) *tensor.Tensor {
	batch, srcLen := memory.Dim(0), memory.Dim(1)
	rows := memory.Reshape(batch*srcLen, a.dim)
	scores := tensor.Derived(tensor.Shape{batch, srcLen}, query, memory)

	switch a.attnType {
	case DotAttention, GeneralAttention:
		q := query
		if a.attnType == GeneralAttention {
			q = a.linearIn.Forward(query)
		}
		parallel.For(batch, func(b int) {
			row := scores.Row(b)
			for s := range row {
				row[s] = floats.Dot(rows.Row(b*srcLen+s), q.Row(b))
			}
		}, rowParallelism)

	case MLPAttention:
		wq := a.linearQuery.Forward(query)
		uh := a.linearContext.Forward(rows)
		hidden := tensor.Derived(uh.Shape(), uh, wq)
		for b := 0; b < batch; b++ {
			for s := 0; s < srcLen; s++ {
				floats.AddTo(hidden.Row(b*srcLen+s), uh.Row(b*srcLen+s), wq.Row(b))
			}
		}
		flat := a.v.Forward(hidden.Tanh()).Data()
		copy(scores.Data(), flat)
	}
	return scores
}

// Dim returns the query and memory width.
func (a *GlobalAttention) Dim() int { return a.dim }

// Type returns the score function.
func (a *GlobalAttention) Type() AttentionType { return a.attnType }

// Transform returns the normaliser.
func (a *GlobalAttention) Transform() AttnTransform { return a.transform }

// Parameters returns all trainable parameters.
func (a *GlobalAttention) Parameters() []*Parameter {
	var params []*Parameter
	for _, l := range []*Linear{a.linearIn, a.linearContext, a.linearQuery, a.v, a.linearOut} {
		if l != nil {
			params = append(params, l.Parameters()...)
		}
	}
	return params
}
