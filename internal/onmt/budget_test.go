package onmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nmt/internal/tensor"
)

func TestNewFertilityBudget(t *testing.T) {
	f := NewFertilityBudget(2, 3, 1.5)

	assert.Equal(t, 2, f.Batch())
	assert.Equal(t, 3, f.SrcLen())
	assert.Equal(t, []float64{1.5, 1.5, SinkBound, 1.5, 1.5, SinkBound}, f.Bounds().Data())
	assert.Equal(t, 0, f.Exhausted())
}

func TestFertilityBudget_ConsumeAndResetSink(t *testing.T) {
	f := NewFertilityBudget(1, 3, 1)
	w, err := tensor.FromSlice([]float64{0.75, 0, 0.25}, tensor.Shape{1, 3})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f.ResetSink()
		assert.Equal(t, SinkBound, f.Sink(0))
		f.Consume(w)
	}

	// Consumption is not clamped.
	assert.InDelta(t, -1.25, f.Bounds().At(0, 0), 1e-12)
	assert.InDelta(t, 1, f.Bounds().At(0, 1), 1e-12)
	assert.InDelta(t, SinkBound-0.25, f.Sink(0), 1e-12)
	assert.Equal(t, 1, f.Exhausted())

	f.ResetSink()
	assert.Equal(t, SinkBound, f.Sink(0))

	assert.Panics(t, func() { f.Consume(tensor.Zeros(tensor.Shape{1, 4})) })
}

func TestFertilityBudget_CloneIsIndependent(t *testing.T) {
	f := NewFertilityBudget(1, 2, 1)
	c := f.Clone()
	f.Consume(tensor.Full(tensor.Shape{1, 2}, 0.5))

	assert.Equal(t, 1.0, c.Bounds().At(0, 0))
	assert.Equal(t, 0.5, f.Bounds().At(0, 0))
}
