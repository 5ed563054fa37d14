package onmt

import (
	"fmt"

	"github.com/born-ml/nmt/internal/nn"
)

// Options configures Embeddings, Encoder and Decoder.
//
// The mapstructure tags are the configuration keys read by the CLI.
type Options struct {
	WordVecSize int         `mapstructure:"word_vec_size"`
	Layers      int         `mapstructure:"layers"`
	BRNN        bool        `mapstructure:"brnn"`
	RNNSize     int         `mapstructure:"rnn_size"`
	RNNType     nn.CellKind `mapstructure:"rnn_type"`
	Dropout     float64     `mapstructure:"dropout"`

	AttentionType nn.AttentionType `mapstructure:"attention_type"`
	AttnTransform nn.AttnTransform `mapstructure:"attn_transform"`
	CAttn         bool             `mapstructure:"c_attn"` // reserved
	CoverageAttn  bool             `mapstructure:"coverage_attn"`
	InputFeed     bool             `mapstructure:"input_feed"`
	ContextGate   string           `mapstructure:"context_gate"` // "", source, target or both
	CopyAttn      bool             `mapstructure:"copy_attn"`

	Fertility           float64 `mapstructure:"fertility"`
	PredictFertility    bool    `mapstructure:"predict_fertility"`    // reserved
	SupervisedFertility bool    `mapstructure:"supervised_fertility"` // reserved
	GuidedFertility     bool    `mapstructure:"guided_fertility"`     // reserved
	ExhaustionLoss      bool    `mapstructure:"exhaustion_loss"`

	PositionEncoding bool `mapstructure:"position_encoding"`
	MaxPositions     int  `mapstructure:"max_positions"`

	PreWordVecsEnc string `mapstructure:"pre_word_vecs_enc"`
	PreWordVecsDec string `mapstructure:"pre_word_vecs_dec"`
}

// DefaultMaxPositions is the length of the position-encoding table.
const DefaultMaxPositions = 5000

// DefaultOptions returns a two-layer LSTM configuration with general
// attention and input feeding.
func DefaultOptions() Options {
	return Options{
		WordVecSize:   500,
		Layers:        2,
		RNNSize:       500,
		RNNType:       nn.LSTM,
		Dropout:       0.3,
		AttentionType: nn.GeneralAttention,
		AttnTransform: nn.Softmax,
		InputFeed:     true,
		Fertility:     2,
		MaxPositions:  DefaultMaxPositions,
	}
}

// NumDirections returns 2 for a bidirectional encoder, else 1.
func (o Options) NumDirections() int {
	if o.BRNN {
		return 2
	}
	return 1
}

// Validate reports the first configuration problem, if any.
func (o Options) Validate() error {
	switch {
	case o.WordVecSize <= 0:
		return fmt.Errorf("word_vec_size must be positive, got %d", o.WordVecSize)
	case o.Layers <= 0:
		return fmt.Errorf("layers must be positive, got %d", o.Layers)
	case o.RNNSize <= 0:
		return fmt.Errorf("rnn_size must be positive, got %d", o.RNNSize)
	case o.RNNSize%o.NumDirections() != 0:
		return fmt.Errorf("rnn_size %d is not divisible by %d directions", o.RNNSize, o.NumDirections())
	case o.Dropout < 0 || o.Dropout >= 1:
		return fmt.Errorf("dropout must be in [0, 1), got %v", o.Dropout)
	case o.Fertility < 0:
		return fmt.Errorf("fertility must not be negative, got %v", o.Fertility)
	case o.PositionEncoding && o.MaxPositions <= 0:
		return fmt.Errorf("max_positions must be positive, got %d", o.MaxPositions)
	}
	if err := o.RNNType.Validate(); err != nil {
		return err
	}
	if err := o.AttentionType.Validate(); err != nil {
		return err
	}
	if err := o.AttnTransform.Validate(); err != nil {
		return err
	}
	if o.ContextGate != "" {
		if err := nn.ContextGateType(o.ContextGate).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// mustValidate panics on invalid options; constructors share it.
func (o Options) mustValidate(component string) {
	if err := o.Validate(); err != nil {
		panic(fmt.Sprintf("%s: %v", component, err))
	}
}

// maxPositions returns the configured table length or the default.
func (o Options) maxPositions() int {
	if o.MaxPositions > 0 {
		return o.MaxPositions
	}
	return DefaultMaxPositions
}
