package onmt

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/nmt/internal/loader"
	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

func TestNMTModel_FixEncHidden(t *testing.T) {
	opts := testOptions()
	opts.BRNN = true
	opts.Layers = 2
	model := newTestModel(t, opts)

	data := make([]float64, 4*2*4)
	for i := range data {
		data[i] = float64(i)
	}
	h, err := tensor.FromSlice(data, tensor.Shape{4, 2, 4})
	require.NoError(t, err)

	fixed := model.fixEncHidden(h)
	require.Equal(t, tensor.Shape{2, 2, 8}, fixed.Shape())
	for l := 0; l < 2; l++ {
		for b := 0; b < 2; b++ {
			for j := 0; j < 4; j++ {
				assert.Equal(t, h.At(2*l, b, j), fixed.At(l, b, j), "forward half")
				assert.Equal(t, h.At(2*l+1, b, j), fixed.At(l, b, 4+j), "backward half")
			}
		}
	}
}

func TestNMTModel_FixEncHidden_Unidirectional(t *testing.T) {
	model := newTestModel(t, testOptions())
	h := tensor.Full(tensor.Shape{1, 2, 8}, 1).RequireGrad()

	fixed := model.fixEncHidden(h)
	assert.NotSame(t, h, fixed)
	assert.True(t, tensor.AllClose(h, fixed, 0))
	assert.True(t, fixed.RequiresGrad(), "history is kept")
}

func TestNMTModel_DecoderStateDoesNotAliasEncoderHidden(t *testing.T) {
	model := newTestModel(t, testOptions())
	src, lengths, _ := testBatch()

	encHidden, memoryBank, _ := model.Encoder().Forward(src, lengths, nil)
	wantH, wantC := encHidden.H.Clone(), encHidden.C.Clone()

	state := model.InitDecoderState(memoryBank, encHidden)
	// Batch 2 read as a beam of 2 over one sentence: swap the hypotheses.
	state.BeamUpdate(0, []int{1, 0}, 2)

	assert.True(t, tensor.AllClose(wantH, encHidden.H, 0))
	assert.True(t, tensor.AllClose(wantC, encHidden.C, 0))
	assert.False(t, tensor.AllClose(wantH, state.Hidden.H, 0))
}

func TestNMTModel_Forward(t *testing.T) {
	for _, kind := range []nn.CellKind{nn.LSTM, nn.GRU} {
		t.Run(string(kind), func(t *testing.T) {
			opts := testOptions()
			opts.RNNType = kind
			opts.BRNN = true
			opts.InputFeed = true
			model := newTestModel(t, opts, WithLogger(zaptest.NewLogger(t)))
			src, lengths, tgt := testBatch()

			out, attns, state, budget := model.Forward(src, tgt, lengths, nil)

			assert.Equal(t, tensor.Shape{2, 2, 8}, out.Shape())
			m := attns.Map()
			require.Len(t, m, 1)
			assert.Equal(t, tensor.Shape{2, 4, 2}, m[AttnStd].Shape())
			require.NotNil(t, state)
			assert.Equal(t, tensor.Shape{1, 2, 8}, state.Hidden.H.Shape())
			assert.Equal(t, 2, budget.Batch())
			assert.Equal(t, 4, budget.SrcLen())
		})
	}
}

func TestNMTModel_ForwardContinuesState(t *testing.T) {
	opts := testOptions()
	opts.CoverageAttn = true
	model := newTestModel(t, opts)
	src, lengths, tgt := testBatch()

	_, first, state, _ := model.Forward(src, tgt, lengths, nil)
	coverage := state.Coverage.Squeeze(0).Clone()

	_, second, again, _ := model.Forward(src, tgt, lengths, state)
	assert.Same(t, state, again)

	// Coverage keeps accumulating over the previous call.
	want := coverage.Add(second.Std.Select(0, 0).Transpose(0, 1))
	assert.True(t, tensor.AllClose(want, second.Coverage.Select(0, 0).Transpose(0, 1), 1e-12))
	assert.False(t, tensor.AllClose(first.Coverage, second.Coverage, 1e-12))
}

func TestNMTModel_ForwardRejectsShortTarget(t *testing.T) {
	model := newTestModel(t, testOptions())
	src, lengths, tgt := testBatch()
	assert.Panics(t, func() { model.Forward(src, tgt.Narrow(0, 1), lengths, nil) })
}

func TestNMTModel_MultiDevice(t *testing.T) {
	model := newTestModel(t, testOptions(), WithMultiDevice())
	src, lengths, tgt := testBatch()

	out, attns, state, budget := model.Forward(src, tgt, lengths, nil)
	assert.Equal(t, tensor.Shape{2, 2, 8}, out.Shape())
	assert.Nil(t, attns)
	assert.Nil(t, state)
	assert.NotNil(t, budget)
}

func TestNMTModel_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	model := newTestModel(t, testOptions(), WithMetrics(metrics))
	src, lengths, tgt := testBatch()

	model.Forward(src, tgt, lengths, nil)

	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.EncoderTokens), "padding is not counted")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DecoderSteps))
	count, err := testutil.GatherAndCount(reg, "nmt_fertility_exhausted_positions")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNMTModel_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	model := newTestModel(t, testOptions(), WithLogger(zap.New(core)))
	src, lengths, tgt := testBatch()

	model.Forward(src, tgt, lengths, nil)

	assert.Equal(t, 1, logs.FilterMessage("encoder output").Len())
	assert.Equal(t, 1, logs.FilterMessage("decoder output").Len())
	assert.Equal(t, 1, logs.Filter(loggerNamed("encoder")).Len())
	assert.Equal(t, 1, logs.Filter(loggerNamed("decoder")).Len())
}

func loggerNamed(name string) func(observer.LoggedEntry) bool {
	return func(e observer.LoggedEntry) bool { return e.LoggerName == name }
}

func TestNMTModel_WidthMismatch(t *testing.T) {
	opts := testOptions()
	dec := opts
	dec.RNNSize = 10
	assert.Panics(t, func() {
		NewNMTModel(NewEncoder(opts, FixedDict(testVocab)), NewDecoder(dec, FixedDict(testVocab)))
	})
}

func TestNMTModel_LoadPretrained(t *testing.T) {
	dir := t.TempDir()
	vecs := tensor.Full(tensor.Shape{testVocab, 6}, 0.25)
	path := filepath.Join(dir, "enc.safetensors")
	require.NoError(t, loader.WriteSafeTensors(path, map[string]*tensor.Tensor{"weight": vecs}, nil))

	opts := testOptions()
	opts.PreWordVecsEnc = path
	model := newTestModel(t, opts)

	require.NoError(t, model.LoadPretrained(opts))
	assert.True(t, tensor.AllClose(vecs, model.Encoder().Embeddings().Weight(), 0))

	opts.PreWordVecsDec = filepath.Join(dir, "missing.safetensors")
	err := model.LoadPretrained(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoder")
}

func TestNMTModel_Parameters(t *testing.T) {
	model := newTestModel(t, testOptions())
	enc := len(model.Encoder().Parameters())
	dec := len(model.Decoder().Parameters())
	assert.Len(t, model.Parameters(), enc+dec)
}

func TestBuild(t *testing.T) {
	opts := testOptions()
	core, logs := observer.New(zap.InfoLevel)

	model, err := Build(opts, FixedDict(testVocab), FixedDict(testVocab), WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.NotNil(t, model)
	require.Equal(t, 1, logs.FilterMessage("model built").Len())
	assert.EqualValues(t, nn.CountParameters(model), logs.All()[0].ContextMap()["parameters"])

	opts.RNNSize = 0
	_, err = Build(opts, FixedDict(testVocab), FixedDict(testVocab))
	assert.ErrorContains(t, err, "invalid options")

	opts = testOptions()
	opts.PreWordVecsDec = filepath.Join(t.TempDir(), "missing.safetensors")
	_, err = Build(opts, FixedDict(testVocab), FixedDict(testVocab))
	assert.ErrorContains(t, err, "load pretrained vectors")
}
