package nn

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/nmt/internal/parallel"
	"github.com/born-ml/nmt/internal/tensor"
)

// AttnTransform names the function that turns attention scores into weights.
type AttnTransform string

// Supported attention transforms.
//
// The constrained variants cap each weight at a per-position upper bound
// and fall back to their unconstrained form when no bounds are given.
const (
	Softmax              AttnTransform = "softmax"
	Sparsemax            AttnTransform = "sparsemax"
	ConstrainedSoftmax   AttnTransform = "constrained_softmax"
	ConstrainedSparsemax AttnTransform = "constrained_sparsemax"
)

// bisectionSteps bounds the threshold search of constrained sparsemax.
const bisectionSteps = 100

// rowParallelism splits per-row attention work across CPUs.
var rowParallelism = parallel.DefaultConfig()

// Validate reports whether t is a known transform.
func (t AttnTransform) Validate() error {
	switch t {
	case Softmax, Sparsemax, ConstrainedSoftmax, ConstrainedSparsemax:
		return nil
	default:
		return fmt.Errorf("unknown attention transform %q", string(t))
	}
}

// Constrained reports whether the transform consumes upper bounds.
func (t AttnTransform) Constrained() bool {
	return t == ConstrainedSoftmax || t == ConstrainedSparsemax
}

// Normalize maps scores [batch, n] to weights [batch, n] row by row.
// upper is [batch, n] or nil; negative bounds count as zero.
func (t AttnTransform) Normalize(scores, upper *tensor.Tensor) *tensor.Tensor {
	if scores.Rank() != 2 {
		panic(fmt.Sprintf("AttnTransform.Normalize: expected [batch, n] scores, got %v", scores.Shape()))
	}
	if upper != nil && !upper.Shape().Equal(scores.Shape()) {
		panic(fmt.Sprintf("AttnTransform.Normalize: bounds %v do not match scores %v", upper.Shape(), scores.Shape()))
	}

	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("AttnTransform.Normalize: %v", err))
	}

	normalize := constrainedSoftmax
	if t == Sparsemax || t == ConstrainedSparsemax {
		normalize = constrainedSparsemax
	}

	out := tensor.Derived(scores.Shape(), scores)
	parallel.For(scores.Dim(0), func(b int) {
		var bounds []float64
		if upper != nil && t.Constrained() {
			bounds = upper.Row(b)
		}
		normalize(scores.Row(b), bounds, out.Row(b))
	}, rowParallelism)
	return out
}

func softmax(z, out []float64) {
	maxVal := floats.Max(z)
	for i, v := range z {
		out[i] = math.Exp(v - maxVal)
	}
	floats.Scale(1/floats.Sum(out), out)
}

// constrainedSoftmax computes argmin KL(p || softmax(z)) subject to p <= u.
// Positions whose softmax share exceeds their bound are pinned to it and the
// remaining mass is spread over the rest in proportion to exp(z).
func constrainedSoftmax(z, u, out []float64) {
	if u == nil {
		softmax(z, out)
		return
	}

	maxVal := floats.Max(z)
	exp := make([]float64, len(z))
	for i, v := range z {
		exp[i] = math.Exp(v - maxVal)
	}

	pinned := make([]bool, len(z))
	mass := 1.0
	for {
		free := 0.0
		for i, e := range exp {
			if !pinned[i] {
				free += e
			}
		}

		violated := false
		for i, e := range exp {
			if pinned[i] {
				continue
			}
			if free == 0 || mass <= 0 {
				out[i] = 0
				continue
			}
			out[i] = mass * e / free
			if bound := math.Max(u[i], 0); out[i] > bound {
				out[i] = bound
				pinned[i] = true
				mass -= bound
				violated = true
			}
		}
		if !violated {
			return
		}
	}
}

func sparsemax(z, out []float64) {
	sorted := append([]float64(nil), z...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	cum, tau := 0.0, 0.0
	for k, v := range sorted {
		cum += v
		if 1+float64(k+1)*v > cum {
			tau = (cum - 1) / float64(k+1)
		}
	}
	for i, v := range z {
		out[i] = math.Max(v-tau, 0)
	}
}

// constrainedSparsemax finds tau with sum_i clip(z_i - tau, 0, u_i) = 1 by
// bisection. If the bounds cannot hold unit mass the output is the bounds.
func constrainedSparsemax(z, u, out []float64) {
	if u == nil {
		sparsemax(z, out)
		return
	}

	bounds := make([]float64, len(u))
	for i, v := range u {
		bounds[i] = math.Max(v, 0)
	}
	if floats.Sum(bounds) <= 1 {
		copy(out, bounds)
		return
	}

	mass := func(tau float64) float64 {
		total := 0.0
		for i, v := range z {
			total += math.Min(math.Max(v-tau, 0), bounds[i])
		}
		return total
	}

	lo, hi := floats.Min(z)-1, floats.Max(z)
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) / 2
		if mass(mid) >= 1 {
			lo = mid
		} else {
			hi = mid
		}
	}
	for i, v := range z {
		out[i] = math.Min(math.Max(v-lo, 0), bounds[i])
	}
}
