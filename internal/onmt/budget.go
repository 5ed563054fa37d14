package onmt

import (
	"fmt"

	"github.com/born-ml/nmt/internal/tensor"
)

// SinkBound is the bound written into the sink position before every
// decoding step. It is large enough that the sink can always absorb the
// attention mass no other position has room for.
const SinkBound = 100.0

// FertilityBudget tracks, per source position, how much attention mass may
// still be assigned to it. The last source position is the sink.
//
// The update rule is:
//
//	ResetSink()        bounds[:, -1] = SinkBound   (before each step)
//	Consume(weights)   bounds -= weights           (after each step)
//
// Bounds are never clamped; normalisers treat a negative bound as zero.
type FertilityBudget struct {
	bounds *tensor.Tensor // [batch, srcLen]
}

// NewFertilityBudget creates a (batch × srcLen) budget holding fertility at
// every position and SinkBound at the sink.
func NewFertilityBudget(batch, srcLen int, fertility float64) *FertilityBudget {
	if batch <= 0 || srcLen <= 0 {
		panic(fmt.Sprintf("NewFertilityBudget: dimensions must be positive, got (%d, %d)", batch, srcLen))
	}
	f := &FertilityBudget{bounds: tensor.Full(tensor.Shape{batch, srcLen}, fertility)}
	f.ResetSink()
	return f
}

// BudgetFromTensor wraps an existing (batch × srcLen) bounds tensor.
func BudgetFromTensor(bounds *tensor.Tensor) *FertilityBudget {
	if bounds.Rank() != 2 {
		panic(fmt.Sprintf("BudgetFromTensor: expected [batch, srcLen], got %v", bounds.Shape()))
	}
	return &FertilityBudget{bounds: bounds}
}

// ResetSink writes SinkBound into the sink column.
func (f *FertilityBudget) ResetSink() {
	sink := f.SrcLen() - 1
	for b := 0; b < f.Batch(); b++ {
		f.bounds.Set(SinkBound, b, sink)
	}
}

// Consume subtracts the attention weights [batch, srcLen] realised in one step.
func (f *FertilityBudget) Consume(weights *tensor.Tensor) {
	if !weights.Shape().Equal(f.bounds.Shape()) {
		panic(fmt.Sprintf("FertilityBudget.Consume: weights %v do not match budget %v", weights.Shape(), f.bounds.Shape()))
	}
	f.bounds = f.bounds.Sub(weights)
}

// Bounds returns the remaining budget [batch, srcLen].
func (f *FertilityBudget) Bounds() *tensor.Tensor { return f.bounds }

// Batch returns the number of rows.
func (f *FertilityBudget) Batch() int { return f.bounds.Dim(0) }

// SrcLen returns the number of source positions, sink included.
func (f *FertilityBudget) SrcLen() int { return f.bounds.Dim(1) }

// Sink returns the remaining budget of the sink for row b.
func (f *FertilityBudget) Sink(b int) float64 { return f.bounds.At(b, f.SrcLen()-1) }

// Exhausted counts non-sink positions with no budget left.
func (f *FertilityBudget) Exhausted() int {
	n := 0
	for b := 0; b < f.Batch(); b++ {
		row := f.bounds.Row(b)
		for _, v := range row[:len(row)-1] {
			if v <= 0 {
				n++
			}
		}
	}
	return n
}

// Snapshot returns a copy of the current bounds.
func (f *FertilityBudget) Snapshot() *tensor.Tensor { return f.bounds.Clone() }

// Clone returns an independent copy of the budget.
func (f *FertilityBudget) Clone() *FertilityBudget {
	return &FertilityBudget{bounds: f.bounds.Clone()}
}

// Detach cuts the bounds from their computation history.
func (f *FertilityBudget) Detach() { f.bounds = f.bounds.Detach() }

// repeat tiles the rows beamSize times in beam-major order.
func (f *FertilityBudget) repeat(beamSize int) {
	f.bounds = f.bounds.Repeat(0, beamSize).Detach()
}

// beamUpdate reorders the beam rows of sentence idx in place.
func (f *FertilityBudget) beamUpdate(idx int, positions []int, beamSize int) {
	numSents := checkBeamLayout("RNNDecoderState.BeamUpdate", f.Batch(), idx, positions, beamSize)
	old := f.bounds.Clone()
	for k, p := range positions {
		copy(f.bounds.Row(k*numSents+idx), old.Row(p*numSents+idx))
	}
}
