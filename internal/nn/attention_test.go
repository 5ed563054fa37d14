package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

func mustTensor(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestAttnTransform_RowsSumToOne(t *testing.T) {
	scores := mustTensor(t, []float64{
		2.0, 1.0, 0.5, -1.0,
		0.0, 0.0, 0.0, 3.0,
	}, tensor.Shape{2, 4})
	bounds := mustTensor(t, []float64{
		0.2, 0.3, 0.1, 100,
		-0.5, 0.4, 0.4, 100,
	}, tensor.Shape{2, 4})

	for _, tr := range []nn.AttnTransform{nn.Softmax, nn.Sparsemax, nn.ConstrainedSoftmax, nn.ConstrainedSparsemax} {
		t.Run(string(tr), func(t *testing.T) {
			w := tr.Normalize(scores, bounds)
			for b := 0; b < 2; b++ {
				row := w.Row(b)
				assert.InDelta(t, 1.0, floats.Sum(row), 1e-9)
				for _, v := range row {
					assert.GreaterOrEqual(t, v, 0.0)
				}
				if tr.Constrained() {
					for i, v := range row {
						assert.LessOrEqual(t, v, max(bounds.At(b, i), 0)+1e-9)
					}
				}
			}
		})
	}
}

func TestAttnTransform_LargeBatchMatchesRowByRow(t *testing.T) {
	const batch, n = 100, 5
	scores := nn.Randn(tensor.Shape{batch, n})
	bounds := tensor.Full(tensor.Shape{batch, n}, 0.3)

	for _, tr := range []nn.AttnTransform{nn.ConstrainedSoftmax, nn.ConstrainedSparsemax} {
		w := tr.Normalize(scores, bounds)
		for b := 0; b < batch; b += 17 {
			single := tr.Normalize(scores.Narrow(0, b, 1), bounds.Narrow(0, b, 1))
			assert.Equal(t, single.Row(0), w.Row(b), "%s row %d", tr, b)
		}
	}
}

func TestAttnTransform_ConstrainedSoftmax(t *testing.T) {
	scores := mustTensor(t, []float64{0, 0, 0, 0}, tensor.Shape{1, 4})
	bounds := mustTensor(t, []float64{0.1, 1, 1, 1}, tensor.Shape{1, 4})

	w := nn.ConstrainedSoftmax.Normalize(scores, bounds)
	assert.InDelta(t, 0.1, w.At(0, 0), 1e-12)
	for i := 1; i < 4; i++ {
		assert.InDelta(t, 0.3, w.At(0, i), 1e-12)
	}

	// Without bounds the constrained variant is plain softmax.
	plain := nn.ConstrainedSoftmax.Normalize(scores, nil)
	assert.True(t, tensor.AllClose(plain, nn.Softmax.Normalize(scores, nil), 1e-12))
}

func TestAttnTransform_Sparsemax(t *testing.T) {
	scores := mustTensor(t, []float64{1.0, 0.8, -2.0}, tensor.Shape{1, 3})
	w := nn.Sparsemax.Normalize(scores, nil)

	assert.InDelta(t, 0.6, w.At(0, 0), 1e-12)
	assert.InDelta(t, 0.4, w.At(0, 1), 1e-12)
	assert.Equal(t, 0.0, w.At(0, 2))
}

func TestAttnTransform_ConstrainedSparsemax(t *testing.T) {
	scores := mustTensor(t, []float64{1.0, 0.8, -2.0}, tensor.Shape{1, 3})
	bounds := mustTensor(t, []float64{0.3, 1, 100}, tensor.Shape{1, 3})

	w := nn.ConstrainedSparsemax.Normalize(scores, bounds)
	assert.InDelta(t, 0.3, w.At(0, 0), 1e-9)
	assert.InDelta(t, 0.7, w.At(0, 1), 1e-9)
	assert.InDelta(t, 0.0, w.At(0, 2), 1e-9)
}

func TestGlobalAttention_Forward(t *testing.T) {
	memory := nn.Randn(tensor.Shape{2, 5, 4})
	query := nn.Randn(tensor.Shape{2, 4})

	for _, typ := range []nn.AttentionType{nn.DotAttention, nn.GeneralAttention, nn.MLPAttention} {
		t.Run(string(typ), func(t *testing.T) {
			attn := nn.NewGlobalAttention(4, typ, nn.Softmax)
			out, align := attn.Forward(query, memory, nil)

			assert.Equal(t, tensor.Shape{2, 4}, out.Shape())
			assert.Equal(t, tensor.Shape{2, 5}, align.Shape())
			for b := 0; b < 2; b++ {
				assert.InDelta(t, 1.0, floats.Sum(align.Row(b)), 1e-9)
			}
		})
	}
}

func TestGlobalAttention_DotScores(t *testing.T) {
	// One memory slot aligned with the query dominates the distribution.
	memory := mustTensor(t, []float64{
		10, 0,
		0, 10,
	}, tensor.Shape{1, 2, 2})
	query := mustTensor(t, []float64{1, 0}, tensor.Shape{1, 2})

	_, align := nn.NewGlobalAttention(2, nn.DotAttention, nn.Softmax).Forward(query, memory, nil)
	assert.Greater(t, align.At(0, 0), 0.99)
}

func TestGlobalAttention_UpperBounds(t *testing.T) {
	memory := nn.Randn(tensor.Shape{1, 3, 4})
	query := nn.Randn(tensor.Shape{1, 4})
	bounds := mustTensor(t, []float64{0, 0, 100}, tensor.Shape{1, 3})

	_, align := nn.NewGlobalAttention(4, nn.GeneralAttention, nn.ConstrainedSoftmax).Forward(query, memory, bounds)
	assert.InDelta(t, 0, align.At(0, 0), 1e-12)
	assert.InDelta(t, 0, align.At(0, 1), 1e-12)
	assert.InDelta(t, 1, align.At(0, 2), 1e-12)
}

func TestGlobalAttention_InvalidConfigPanics(t *testing.T) {
	assert.Panics(t, func() { nn.NewGlobalAttention(4, "bilinear", nn.Softmax) })
	assert.Panics(t, func() { nn.NewGlobalAttention(4, nn.DotAttention, "entmax") })

	attn := nn.NewGlobalAttention(4, nn.DotAttention, nn.Softmax)
	assert.Panics(t, func() { attn.Forward(nn.Randn(tensor.Shape{3, 4}), nn.Randn(tensor.Shape{2, 5, 4}), nil) })
}

func TestContextGate_Forward(t *testing.T) {
	emb := nn.Randn(tensor.Shape{2, 3})
	dec := nn.Randn(tensor.Shape{2, 4})
	attn := nn.Randn(tensor.Shape{2, 4})

	for _, kind := range []nn.ContextGateType{nn.SourceGate, nn.TargetGate, nn.BothGate} {
		t.Run(string(kind), func(t *testing.T) {
			gate := nn.NewContextGate(kind, 3, 4, 4, 4)
			out := gate.Forward(emb, dec, attn)
			assert.Equal(t, tensor.Shape{2, 4}, out.Shape())
			assert.Len(t, gate.Parameters(), 6)
		})
	}

	assert.Error(t, nn.ContextGateType("none").Validate())
	assert.Panics(t, func() { nn.NewContextGate("none", 3, 4, 4, 4) })
}
