package onmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchTokens(t *testing.T) {
	src, lengths := BatchTokens([][]int{{5, 6, 7}, {8}}, PAD)

	assert.Equal(t, []int{3, 1}, lengths)
	assert.Equal(t, 3, src.Len())
	assert.Equal(t, 2, src.Batch())
	assert.Equal(t, 1, src.Features())
	assert.Equal(t, []int{5, 8, 6, PAD, 7, PAD}, src.Words())

	assert.Panics(t, func() { BatchTokens(nil, PAD) })
	assert.Panics(t, func() { BatchTokens([][]int{{}}, PAD) })
}

func TestNewTokens_Features(t *testing.T) {
	// Two steps, one sentence, word plus one feature channel.
	tok, err := NewTokens([]int{5, 100, 6, 101}, 2, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, tok.Words())
	assert.Equal(t, 101, tok.At(1, 0, 1))

	_, err = NewTokens([]int{1, 2, 3}, 2, 1, 2)
	assert.Error(t, err)
}

func TestTokens_Narrow(t *testing.T) {
	tgt, _ := BatchTokens([][]int{{BOS, 4, EOS}, {BOS, 5, 6}}, PAD)
	head := tgt.Narrow(0, 2)

	assert.Equal(t, 2, head.Len())
	assert.Equal(t, []int{BOS, BOS, 4, 5}, head.Words())
	assert.Panics(t, func() { tgt.Narrow(2, 2) })
}

func TestTokens_BeamUpdate(t *testing.T) {
	// Beam 2 over 2 sentences: column k*2+s.
	tok, err := NewTokens([]int{
		10, 20, 11, 21, // step 0: (k0,s0) (k0,s1) (k1,s0) (k1,s1)
		30, 40, 31, 41, // step 1
	}, 2, 4, 1)
	require.NoError(t, err)

	state := NewTransformerDecoderState(tok)
	state.BeamUpdate(1, []int{1, 1}, 2)

	assert.Equal(t, []int{10, 21, 11, 21, 30, 41, 31, 41}, tok.Words())
}
