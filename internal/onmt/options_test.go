package onmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
	assert.NoError(t, testOptions().Validate())

	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{name: "zero word vectors", modify: func(o *Options) { o.WordVecSize = 0 }},
		{name: "zero layers", modify: func(o *Options) { o.Layers = 0 }},
		{name: "odd width bidirectional", modify: func(o *Options) { o.BRNN = true; o.RNNSize = 7 }},
		{name: "dropout one", modify: func(o *Options) { o.Dropout = 1 }},
		{name: "negative fertility", modify: func(o *Options) { o.Fertility = -1 }},
		{name: "unknown rnn", modify: func(o *Options) { o.RNNType = "SRU" }},
		{name: "unknown attention", modify: func(o *Options) { o.AttentionType = "bilinear" }},
		{name: "unknown transform", modify: func(o *Options) { o.AttnTransform = "entmax" }},
		{name: "unknown gate", modify: func(o *Options) { o.ContextGate = "all" }},
		{name: "no positions", modify: func(o *Options) { o.PositionEncoding = true; o.MaxPositions = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			tt.modify(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestNewEncoder_WidthNotDivisiblePanics(t *testing.T) {
	opts := testOptions()
	opts.BRNN = true
	opts.RNNSize = 9
	assert.Panics(t, func() { NewEncoder(opts, FixedDict(testVocab)) })
}
