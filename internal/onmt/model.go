package onmt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

// NMTModel chains an Encoder and a Decoder for teacher-forced decoding.
type NMTModel struct {
	encoder     *Encoder
	decoder     *Decoder
	multiDevice bool
	logger      *zap.Logger
	metrics     *Metrics
}

// ModelOption configures an NMTModel.
type ModelOption func(*NMTModel)

// WithMultiDevice marks the model as split across devices. Forward then
// returns nil state and attention maps.
func WithMultiDevice() ModelOption {
	return func(m *NMTModel) { m.multiDevice = true }
}

// WithLogger sets the logger of the model and its components.
func WithLogger(logger *zap.Logger) ModelOption {
	return func(m *NMTModel) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics records encoder, decoder and budget metrics.
func WithMetrics(metrics *Metrics) ModelOption {
	return func(m *NMTModel) { m.metrics = metrics }
}

// NewNMTModel creates a model from its components.
func NewNMTModel(encoder *Encoder, decoder *Decoder, opts ...ModelOption) *NMTModel {
	if encoder.NumDirections()*encoder.HiddenSize() != decoder.RNNSize() {
		panic(fmt.Sprintf("NewNMTModel: encoder width %d×%d does not match decoder width %d",
			encoder.NumDirections(), encoder.HiddenSize(), decoder.RNNSize()))
	}
	m := &NMTModel{encoder: encoder, decoder: decoder, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	encoder.SetLogger(m.logger.Named("encoder"))
	decoder.SetLogger(m.logger.Named("decoder"))
	return m
}

// Build validates opts, creates the encoder and decoder over their
// vocabularies and loads any configured pretrained word vectors.
func Build(opts Options, srcDict, tgtDict Dict, modelOpts ...ModelOption) (*NMTModel, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	m := NewNMTModel(NewEncoder(opts, srcDict), NewDecoder(opts, tgtDict), modelOpts...)
	if err := m.LoadPretrained(opts); err != nil {
		return nil, fmt.Errorf("load pretrained vectors: %w", err)
	}
	m.logger.Info("model built",
		zap.Int("parameters", nn.CountParameters(m)),
		zap.String("rnn_type", string(opts.RNNType)),
		zap.Bool("brnn", opts.BRNN),
		zap.String("attn_transform", string(opts.AttnTransform)))
	return m, nil
}

// fixEncHidden converts (layers·directions × batch × hidden/directions) to
// (layers × batch × hidden) by joining each layer's forward (even) and
// backward (odd) slices along the channel axis.
func (m *NMTModel) fixEncHidden(h *tensor.Tensor) *tensor.Tensor {
	if m.encoder.NumDirections() == 1 {
		c := h.Clone()
		if h.RequiresGrad() {
			c.RequireGrad()
		}
		return c
	}
	layers := h.Dim(0) / 2
	even := make([]int, layers)
	odd := make([]int, layers)
	for l := range even {
		even[l] = 2 * l
		odd[l] = 2*l + 1
	}
	return tensor.Cat([]*tensor.Tensor{h.IndexSelect(0, even), h.IndexSelect(0, odd)}, 2)
}

// InitDecoderState builds the decoder state from the encoder's final state.
// The input feed starts at zero. The state owns copies of the hidden
// tensors, so beam reordering never writes into encHidden.
func (m *NMTModel) InitDecoderState(memoryBank *tensor.Tensor, encHidden *nn.RNNState) *RNNDecoderState {
	hidden := &nn.RNNState{H: m.fixEncHidden(encHidden.H)}
	if encHidden.C != nil {
		hidden.C = m.fixEncHidden(encHidden.C)
	}
	aeq("NMTModel.InitDecoderState", "memory bank", memoryBank.Dim(1), "hidden", hidden.H.Dim(1))
	return m.decoder.InitState(hidden)
}

// Forward encodes src (srcLen × batch × features) and decodes all but the
// last step of tgt (tgtLen × batch × features).
//
// state continues a previous call when non-nil. In multi-device mode the
// returned state and attention maps are nil.
//
// Returns the decoder outputs ((tgtLen-1) × batch × RNNSize), the attention
// maps, the decoder state and the final fertility budget.
func (m *NMTModel) Forward(src, tgt *Tokens, lengths []int, state DecoderState) (
	*tensor.Tensor, *Attentions, *RNNDecoderState, *FertilityBudget,
) {
	if tgt.Len() < 2 {
		panic(fmt.Sprintf("NMTModel.Forward: target needs at least 2 steps, got %d", tgt.Len()))
	}
	tgt = tgt.Narrow(0, tgt.Len()-1)

	encHidden, memoryBank, _ := m.encoder.Forward(src, lengths, nil)
	m.metrics.observeEncoder(src, lengths)
	m.logger.Debug("encoder output",
		zap.Ints("memory_bank", memoryBank.Shape()),
		zap.Ints("hidden", encHidden.H.Shape()))

	if state == nil {
		state = m.InitDecoderState(memoryBank, encHidden)
	}
	out, decState, attns, budget := m.decoder.Forward(tgt, src, memoryBank, state, nil)
	m.metrics.observeDecoder(tgt.Len(), budget)
	m.logger.Debug("decoder output", zap.Ints("outputs", out.Shape()))

	if m.multiDevice {
		return out, nil, nil, budget
	}
	return out, attns, decState, budget
}

// Encoder returns the encoder.
func (m *NMTModel) Encoder() *Encoder { return m.encoder }

// Decoder returns the decoder.
func (m *NMTModel) Decoder() *Decoder { return m.decoder }

// SetTraining toggles dropout in both components.
func (m *NMTModel) SetTraining(training bool) {
	m.encoder.SetTraining(training)
	m.decoder.SetTraining(training)
}

// LoadPretrained loads the configured encoder and decoder word vectors.
func (m *NMTModel) LoadPretrained(opts Options) error {
	if err := m.encoder.Embeddings().LoadPretrained(opts.PreWordVecsEnc); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	if err := m.decoder.Embeddings().LoadPretrained(opts.PreWordVecsDec); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	return nil
}

// Parameters returns all trainable parameters.
func (m *NMTModel) Parameters() []*nn.Parameter {
	return append(m.encoder.Parameters(), m.decoder.Parameters()...)
}
