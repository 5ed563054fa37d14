package onmt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

// features records which optional decoder mechanisms are active. It is
// resolved once at construction.
type features struct {
	inputFeed  bool
	coverage   bool
	copy       bool
	exhaustion bool
	gate       bool
}

// Decoder is an input-fed recurrent decoder with fertility-bounded global
// attention.
//
// Each target step:
//  1. concatenates the embedded token with the previous output (input feed)
//  2. advances the stacked recurrent cell
//  3. resets the sink, attends with the budget as upper bounds, consumes
//  4. gates or passes through the attention output, then applies dropout
//  5. accumulates coverage
//  6. attends again with the step output for copy scores
//  7. records the remaining budget
type Decoder struct {
	embeddings *Embeddings
	rnn        *nn.StackedCell
	attn       *nn.GlobalAttention
	copyAttn   *nn.GlobalAttention // nil unless copy attention
	gate       *nn.ContextGate     // nil unless context gate
	dropout    *nn.Dropout

	features  features
	rnnSize   int
	fertility float64
	logger    *zap.Logger
}

// NewDecoder creates a decoder over the target dictionary.
func NewDecoder(opts Options, dict Dict) *Decoder {
	opts.mustValidate("NewDecoder")

	f := features{
		inputFeed:  opts.InputFeed,
		coverage:   opts.CoverageAttn,
		copy:       opts.CopyAttn,
		exhaustion: opts.ExhaustionLoss,
		gate:       opts.ContextGate != "",
	}

	inputSize := opts.WordVecSize
	if f.inputFeed {
		inputSize += opts.RNNSize
	}

	d := &Decoder{
		embeddings: NewEmbeddings(opts, dict),
		rnn:        nn.NewStackedCell(opts.RNNType, opts.Layers, inputSize, opts.RNNSize, opts.Dropout),
		attn:       nn.NewGlobalAttention(opts.RNNSize, opts.AttentionType, opts.AttnTransform),
		dropout:    nn.NewDropout(opts.Dropout),
		features:   f,
		rnnSize:    opts.RNNSize,
		fertility:  opts.Fertility,
		logger:     zap.NewNop(),
	}
	if f.gate {
		d.gate = nn.NewContextGate(nn.ContextGateType(opts.ContextGate), inputSize, opts.RNNSize, opts.RNNSize, opts.RNNSize)
	}
	if f.copy {
		d.copyAttn = nn.NewGlobalAttention(opts.RNNSize, opts.AttentionType, nn.Softmax)
	}
	return d
}

// SetLogger replaces the decoder's logger.
func (d *Decoder) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d.logger = logger
}

// Forward decodes tgt (tgtLen × batch × features) against memoryBank
// (srcLen × batch × RNNSize).
//
// state must be an *RNNDecoderState; it is updated in place and returned.
// The budget is taken from the argument, else from the state, else created
// with the configured fertility.
//
// Returns the step outputs (tgtLen × batch × RNNSize), the state, the
// attention maps and the final budget.
func (d *Decoder) Forward(tgt, src *Tokens, memoryBank *tensor.Tensor, state DecoderState, budget *FertilityBudget) (
	*tensor.Tensor, *RNNDecoderState, *Attentions, *FertilityBudget,
) {
	rnnState, ok := state.(*RNNDecoderState)
	if !ok {
		panic(fmt.Sprintf("Decoder.Forward: expected *RNNDecoderState, got %T", state))
	}
	if memoryBank.Rank() != 3 {
		panic(fmt.Sprintf("Decoder.Forward: memory bank must be (srcLen × batch × rnnSize), got %v", memoryBank.Shape()))
	}

	batch := tgt.Batch()
	aeq("Decoder.Forward", "tgt", batch, "src", src.Batch())
	aeq("Decoder.Forward", "tgt", batch, "memory bank", memoryBank.Dim(1))
	aeq("Decoder.Forward", "tgt", batch, "input feed", rnnState.InputFeed.Dim(1))

	srcLen := memoryBank.Dim(0)
	if budget == nil {
		budget = rnnState.Budget
	}
	if budget == nil {
		budget = NewFertilityBudget(batch, srcLen, d.fertility)
	}
	if budget.Batch() != batch || budget.SrcLen() != srcLen {
		panic(fmt.Sprintf("Decoder.Forward: budget (%d × %d) does not match batch %d and source length %d",
			budget.Batch(), budget.SrcLen(), batch, srcLen))
	}

	emb := d.embeddings.Forward(tgt)
	memory := memoryBank.Transpose(0, 1) // [batch, srcLen, rnnSize]
	hidden := rnnState.Hidden
	output := rnnState.InputFeed.Squeeze(0)
	var coverage *tensor.Tensor
	if rnnState.Coverage != nil {
		coverage = rnnState.Coverage.Squeeze(0)
	}

	steps := tgt.Len()
	outputs := make([]*tensor.Tensor, 0, steps)
	rec := newAttnRecorder(d.features, steps)

	for t := 0; t < steps; t++ {
		input := emb.Select(0, t)
		if d.features.inputFeed {
			input = tensor.Cat([]*tensor.Tensor{input, output}, 1)
		}

		var rnnOut *tensor.Tensor
		rnnOut, hidden = d.rnn.Step(input, hidden)

		budget.ResetSink()
		attnOut, weights := d.attn.Forward(rnnOut, memory, budget.Bounds())
		budget.Consume(weights)

		if d.features.gate {
			output = d.gate.Forward(input, rnnOut, attnOut)
		} else {
			output = attnOut
		}
		output = d.dropout.Forward(output)
		outputs = append(outputs, output)
		rec.std = append(rec.std, weights)

		if d.features.coverage {
			if coverage == nil {
				coverage = weights
			} else {
				coverage = coverage.Add(weights)
			}
			rec.coverage = append(rec.coverage, coverage)
		}
		if d.features.copy {
			_, copyWeights := d.copyAttn.Forward(output, memory, nil)
			rec.copy = append(rec.copy, copyWeights)
		}
		if d.features.exhaustion {
			rec.upperBounds = append(rec.upperBounds, budget.Snapshot())
		}
	}

	var stateCoverage *tensor.Tensor
	if coverage != nil {
		stateCoverage = coverage.Unsqueeze(0)
	}
	rnnState.Update(hidden, output.Unsqueeze(0), stateCoverage, budget)

	d.logger.Debug("decoded target",
		zap.Int("steps", steps),
		zap.Int("batch", batch),
		zap.Int("src_len", srcLen),
		zap.Int("exhausted_positions", budget.Exhausted()))

	return tensor.Stack(outputs, 0), rnnState, rec.stack(), budget
}

// InitState returns a fresh state for the decoder from a decoder-layout
// hidden state (layers × batch × RNNSize).
func (d *Decoder) InitState(hidden *nn.RNNState) *RNNDecoderState {
	if hidden.H.Dim(0) != d.rnn.NumLayers() || hidden.H.Dim(2) != d.rnnSize {
		panic(fmt.Sprintf("Decoder.InitState: hidden %v does not match (%d × batch × %d)",
			hidden.H.Shape(), d.rnn.NumLayers(), d.rnnSize))
	}
	return NewRNNDecoderState(hidden, d.rnnSize)
}

// Embeddings returns the target embeddings.
func (d *Decoder) Embeddings() *Embeddings { return d.embeddings }

// RNNSize returns the hidden width.
func (d *Decoder) RNNSize() int { return d.rnnSize }

// SetTraining toggles every dropout layer.
func (d *Decoder) SetTraining(training bool) {
	d.embeddings.SetTraining(training)
	d.rnn.SetTraining(training)
	d.dropout.SetTraining(training)
}

// Parameters returns all trainable parameters.
func (d *Decoder) Parameters() []*nn.Parameter {
	params := append(d.embeddings.Parameters(), d.rnn.Parameters()...)
	params = append(params, d.attn.Parameters()...)
	if d.gate != nil {
		params = append(params, d.gate.Parameters()...)
	}
	if d.copyAttn != nil {
		params = append(params, d.copyAttn.Parameters()...)
	}
	return params
}

// aeq panics when two sizes that must agree differ.
func aeq(op, nameA string, a int, nameB string, b int) {
	if a != b {
		panic(fmt.Sprintf("%s: %s batch %d does not match %s batch %d", op, nameA, a, nameB, b))
	}
}
