package onmt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

// Encoder runs a recurrent network over embedded source tokens.
type Encoder struct {
	embeddings    *Embeddings
	rnn           *nn.Recurrent
	numDirections int
	hiddenSize    int // per direction
	logger        *zap.Logger
}

// NewEncoder creates an encoder over dict. Panics on invalid options,
// including an RNNSize not divisible by the number of directions.
func NewEncoder(opts Options, dict Dict) *Encoder {
	opts.mustValidate("NewEncoder")
	dirs := opts.NumDirections()
	hidden := opts.RNNSize / dirs

	return &Encoder{
		embeddings:    NewEmbeddings(opts, dict),
		rnn:           nn.NewRecurrent(opts.RNNType, opts.WordVecSize, hidden, opts.Layers, opts.Dropout, opts.BRNN),
		numDirections: dirs,
		hiddenSize:    hidden,
		logger:        zap.NewNop(),
	}
}

// SetLogger replaces the encoder's logger.
func (e *Encoder) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e.logger = logger
}

// Forward encodes src (srcLen × batch × features).
//
// lengths holds the valid length of each sequence, or nil when all are
// full length; outputs past a sequence's length are zero. hidden is the
// initial state or nil.
//
// Returns the final state (layers·directions × batch × RNNSize/directions),
// the memory bank (srcLen × batch × RNNSize) and a reserved fertility
// prediction, currently always nil.
func (e *Encoder) Forward(src *Tokens, lengths []int, hidden *nn.RNNState) (*nn.RNNState, *tensor.Tensor, *tensor.Tensor) {
	if lengths != nil && len(lengths) != src.Batch() {
		panic(fmt.Sprintf("Encoder.Forward: %d lengths for batch of %d", len(lengths), src.Batch()))
	}

	emb := e.embeddings.Forward(src)
	memoryBank, final := e.rnn.Forward(emb, lengths, hidden)

	e.logger.Debug("encoded source",
		zap.Int("src_len", src.Len()),
		zap.Int("batch", src.Batch()),
		zap.Int("directions", e.numDirections))
	return final, memoryBank, nil
}

// Embeddings returns the source embeddings.
func (e *Encoder) Embeddings() *Embeddings { return e.embeddings }

// NumDirections returns 2 for a bidirectional encoder, else 1.
func (e *Encoder) NumDirections() int { return e.numDirections }

// HiddenSize returns the per-direction hidden width.
func (e *Encoder) HiddenSize() int { return e.hiddenSize }

// SetTraining toggles dropout.
func (e *Encoder) SetTraining(training bool) {
	e.embeddings.SetTraining(training)
	e.rnn.SetTraining(training)
}

// Parameters returns all trainable parameters.
func (e *Encoder) Parameters() []*nn.Parameter {
	return append(e.embeddings.Parameters(), e.rnn.Parameters()...)
}
