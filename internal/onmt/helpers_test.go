package onmt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

const testVocab = 20

// testOptions is a small single-layer LSTM configuration with every
// optional mechanism off and no dropout.
func testOptions() Options {
	return Options{
		WordVecSize:   6,
		Layers:        1,
		RNNSize:       8,
		RNNType:       nn.LSTM,
		AttentionType: nn.GeneralAttention,
		AttnTransform: nn.Softmax,
		Fertility:     2,
		MaxPositions:  50,
	}
}

// testBatch returns the source [[5 6 7 8] [9 10 11]] with lengths [4 3]
// and a three-step target.
func testBatch() (src *Tokens, lengths []int, tgt *Tokens) {
	src, lengths = BatchTokens([][]int{{5, 6, 7, 8}, {9, 10, 11}}, PAD)
	tgt, _ = BatchTokens([][]int{{BOS, 12, 13}, {BOS, 14, EOS}}, PAD)
	return src, lengths, tgt
}

func newTestModel(t *testing.T, opts Options, modelOpts ...ModelOption) *NMTModel {
	t.Helper()
	require.NoError(t, opts.Validate())
	return NewNMTModel(NewEncoder(opts, FixedDict(testVocab)), NewDecoder(opts, FixedDict(testVocab)), modelOpts...)
}

// rowSum sums a [.., srcLen, batch] map over source positions at (step, b).
func rowSum(m *tensor.Tensor, step, b int) float64 {
	total := 0.0
	for s := 0; s < m.Dim(1); s++ {
		total += m.At(step, s, b)
	}
	return total
}
