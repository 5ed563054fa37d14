package onmt

import (
	"fmt"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/tensor"
)

// DecoderState carries decoder state across decoding calls and across
// beam-search hypothesis reordering.
//
// Batch entries are laid out beam-major: hypothesis k of sentence s lives at
// batch index k·numSents + s.
//
// The set of implementations is closed: *RNNDecoderState and
// *TransformerDecoderState.
type DecoderState interface {
	// Detach severs computation history while keeping values.
	Detach()

	// RepeatBeam tiles the state beamSize times along the batch axis.
	RepeatBeam(beamSize int)

	// BeamUpdate reorders the hypotheses of sentence idx in place: new
	// hypothesis k takes the state of old hypothesis positions[k].
	BeamUpdate(idx int, positions []int, beamSize int)

	decoderState()
}

// RNNDecoderState is the state of the recurrent decoder.
//
// Shapes:
//   - Hidden.H, Hidden.C: [layers, batch, rnnSize] (C only for LSTM)
//   - InputFeed: [1, batch, rnnSize]
//   - Coverage: [1, batch, srcLen] or nil
//   - Budget: (batch × srcLen) or nil
type RNNDecoderState struct {
	Hidden    *nn.RNNState
	InputFeed *tensor.Tensor
	Coverage  *tensor.Tensor
	Budget    *FertilityBudget
}

// NewRNNDecoderState wraps an initial hidden state and zero-initialises the
// input feed.
func NewRNNDecoderState(hidden *nn.RNNState, rnnSize int) *RNNDecoderState {
	if hidden == nil || hidden.H.Rank() != 3 {
		panic("NewRNNDecoderState: hidden must be [layers, batch, rnnSize]")
	}
	batch := hidden.H.Dim(1)
	return &RNNDecoderState{
		Hidden:    hidden,
		InputFeed: tensor.Zeros(tensor.Shape{1, batch, rnnSize}),
	}
}

func (*RNNDecoderState) decoderState() {}

// Batch returns the batch size of the state.
func (s *RNNDecoderState) Batch() int { return s.InputFeed.Dim(1) }

// Update replaces the state after a decoding call.
func (s *RNNDecoderState) Update(hidden *nn.RNNState, inputFeed, coverage *tensor.Tensor, budget *FertilityBudget) {
	s.Hidden = hidden
	s.InputFeed = inputFeed
	s.Coverage = coverage
	s.Budget = budget
}

// all returns pointers to every present (X × batch × dim) state tensor.
// The budget has a different layout and is handled separately.
func (s *RNNDecoderState) all() []**tensor.Tensor {
	refs := []**tensor.Tensor{&s.Hidden.H}
	if s.Hidden.C != nil {
		refs = append(refs, &s.Hidden.C)
	}
	refs = append(refs, &s.InputFeed)
	if s.Coverage != nil {
		refs = append(refs, &s.Coverage)
	}
	return refs
}

// Detach severs history from every state tensor, the budget included.
func (s *RNNDecoderState) Detach() {
	for _, ref := range s.all() {
		*ref = (*ref).Detach()
	}
	if s.Budget != nil {
		s.Budget.Detach()
	}
}

// RepeatBeam tiles every state tensor beamSize times along the batch axis.
// The tiled tensors carry no history.
func (s *RNNDecoderState) RepeatBeam(beamSize int) {
	if beamSize <= 0 {
		panic(fmt.Sprintf("RNNDecoderState.RepeatBeam: beam size must be positive, got %d", beamSize))
	}
	for _, ref := range s.all() {
		*ref = (*ref).Repeat(1, beamSize).Detach()
	}
	if s.Budget != nil {
		s.Budget.repeat(beamSize)
	}
}

// BeamUpdate reorders the hypotheses of sentence idx in every state tensor
// and, separately, in the fertility budget.
func (s *RNNDecoderState) BeamUpdate(idx int, positions []int, beamSize int) {
	for _, ref := range s.all() {
		beamUpdateTensor(*ref, idx, positions, beamSize)
	}
	if s.Budget != nil {
		s.Budget.beamUpdate(idx, positions, beamSize)
	}
}

// beamUpdateTensor reorders an (X × batch × dim) tensor in place.
func beamUpdateTensor(t *tensor.Tensor, idx int, positions []int, beamSize int) {
	outer, batch, dim := t.Dim(0), t.Dim(1), t.Dim(2)
	numSents := checkBeamLayout("RNNDecoderState.BeamUpdate", batch, idx, positions, beamSize)

	data := t.Data()
	old := append([]float64(nil), data...)
	for a := 0; a < outer; a++ {
		for k, p := range positions {
			dst := (a*batch + k*numSents + idx) * dim
			src := (a*batch + p*numSents + idx) * dim
			copy(data[dst:dst+dim], old[src:src+dim])
		}
	}
}

// checkBeamLayout validates a beam reorder request and returns the number
// of sentences in the batch.
func checkBeamLayout(op string, batch, idx int, positions []int, beamSize int) int {
	if beamSize <= 0 || batch%beamSize != 0 {
		panic(fmt.Sprintf("%s: batch %d is not a multiple of beam size %d", op, batch, beamSize))
	}
	numSents := batch / beamSize
	if idx < 0 || idx >= numSents {
		panic(fmt.Sprintf("%s: sentence %d out of range [0, %d)", op, idx, numSents))
	}
	if len(positions) != beamSize {
		panic(fmt.Sprintf("%s: %d positions for beam size %d", op, len(positions), beamSize))
	}
	for _, p := range positions {
		if p < 0 || p >= beamSize {
			panic(fmt.Sprintf("%s: position %d out of range [0, %d)", op, p, beamSize))
		}
	}
	return numSents
}

// TransformerDecoderState carries the previously seen input tokens for
// decoders that consume the whole history at every step.
type TransformerDecoderState struct {
	PreviousInput *Tokens
}

// NewTransformerDecoderState creates a state holding src.
func NewTransformerDecoderState(src *Tokens) *TransformerDecoderState {
	return &TransformerDecoderState{PreviousInput: src}
}

func (*TransformerDecoderState) decoderState() {}

// Detach is a no-op: token ids carry no history.
func (s *TransformerDecoderState) Detach() {}

// RepeatBeam is a no-op: there is no fixed-size recurrent state to tile.
func (s *TransformerDecoderState) RepeatBeam(int) {}

// BeamUpdate reorders the token columns of sentence idx in place.
func (s *TransformerDecoderState) BeamUpdate(idx int, positions []int, beamSize int) {
	if s.PreviousInput == nil {
		panic("TransformerDecoderState.BeamUpdate: no previous input")
	}
	s.PreviousInput.beamUpdate(idx, positions, beamSize)
}
