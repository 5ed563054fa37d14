package onmt

import "fmt"

// Tokens is a time-major batch of token ids with shape
// (time × batch × features). Feature 0 is the word id.
type Tokens struct {
	ids   []int
	steps int
	batch int
	feats int
}

// NewTokens wraps ids laid out row-major as (steps, batch, feats).
func NewTokens(ids []int, steps, batch, feats int) (*Tokens, error) {
	if steps <= 0 || batch <= 0 || feats <= 0 {
		return nil, fmt.Errorf("tokens: dimensions must be positive, got (%d, %d, %d)", steps, batch, feats)
	}
	if len(ids) != steps*batch*feats {
		return nil, fmt.Errorf("tokens: shape (%d, %d, %d) needs %d ids, got %d", steps, batch, feats, steps*batch*feats, len(ids))
	}
	return &Tokens{ids: append([]int(nil), ids...), steps: steps, batch: batch, feats: feats}, nil
}

// BatchTokens builds single-feature tokens from batch-major sentences,
// padding short ones with pad. It also returns each sentence's length.
//
// Example:
//
//	src, lengths := onmt.BatchTokens([][]int{{5, 6, 7, 8}, {9, 10, 11}}, onmt.PAD)
//	// src: (4 × 2 × 1), lengths: [4 3]
func BatchTokens(sentences [][]int, pad int) (*Tokens, []int) {
	if len(sentences) == 0 {
		panic("BatchTokens: empty batch")
	}
	lengths := make([]int, len(sentences))
	steps := 0
	for i, s := range sentences {
		if len(s) == 0 {
			panic(fmt.Sprintf("BatchTokens: sentence %d is empty", i))
		}
		lengths[i] = len(s)
		steps = max(steps, len(s))
	}

	batch := len(sentences)
	ids := make([]int, steps*batch)
	for t := 0; t < steps; t++ {
		for b, s := range sentences {
			if t < len(s) {
				ids[t*batch+b] = s[t]
			} else {
				ids[t*batch+b] = pad
			}
		}
	}
	return &Tokens{ids: ids, steps: steps, batch: batch, feats: 1}, lengths
}

// Len returns the number of time steps.
func (t *Tokens) Len() int { return t.steps }

// Batch returns the batch size.
func (t *Tokens) Batch() int { return t.batch }

// Features returns the number of feature channels.
func (t *Tokens) Features() int { return t.feats }

// At returns the id at (step, b, feature).
func (t *Tokens) At(step, b, feature int) int {
	if step < 0 || step >= t.steps || b < 0 || b >= t.batch || feature < 0 || feature >= t.feats {
		panic(fmt.Sprintf("Tokens.At: index (%d, %d, %d) out of range (%d, %d, %d)", step, b, feature, t.steps, t.batch, t.feats))
	}
	return t.ids[(step*t.batch+b)*t.feats+feature]
}

// Words returns the word ids (feature 0) in (time, batch) order.
func (t *Tokens) Words() []int {
	words := make([]int, t.steps*t.batch)
	for i := range words {
		words[i] = t.ids[i*t.feats]
	}
	return words
}

// Narrow returns steps [start, start+length) as new Tokens.
func (t *Tokens) Narrow(start, length int) *Tokens {
	if start < 0 || length <= 0 || start+length > t.steps {
		panic(fmt.Sprintf("Tokens.Narrow: range [%d, %d) out of bounds for %d steps", start, start+length, t.steps))
	}
	row := t.batch * t.feats
	return &Tokens{
		ids:   append([]int(nil), t.ids[start*row:(start+length)*row]...),
		steps: length,
		batch: t.batch,
		feats: t.feats,
	}
}

// Clone returns a deep copy.
func (t *Tokens) Clone() *Tokens {
	c := *t
	c.ids = append([]int(nil), t.ids...)
	return &c
}

// beamUpdate reorders, for sentence idx, the beam columns of every step in
// place: column k·numSents+idx receives the old column positions[k]·numSents+idx.
func (t *Tokens) beamUpdate(idx int, positions []int, beamSize int) {
	numSents := checkBeamLayout("TransformerDecoderState.BeamUpdate", t.batch, idx, positions, beamSize)
	old := t.Clone()
	for s := 0; s < t.steps; s++ {
		for k, p := range positions {
			dst := (s*t.batch + k*numSents + idx) * t.feats
			src := (s*t.batch + p*numSents + idx) * t.feats
			copy(t.ids[dst:dst+t.feats], old.ids[src:src+t.feats])
		}
	}
}
