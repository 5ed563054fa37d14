// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package onmt provides an attentional encoder-decoder translation model
// whose attention is bounded by per-source-word fertility.
//
// Example usage:
//
//	import "github.com/born-ml/nmt/onmt"
//
//	opts := onmt.DefaultOptions()
//	opts.AttnTransform = nn.ConstrainedSoftmax
//
//	model, err := onmt.Build(opts, onmt.FixedDict(srcVocab), onmt.FixedDict(tgtVocab))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src, lengths := onmt.BatchTokens(srcSentences, onmt.PAD)
//	tgt, _ := onmt.BatchTokens(tgtSentences, onmt.PAD)
//	out, attns, state, budget := model.Forward(src, tgt, lengths, nil)
package onmt

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/born-ml/nmt/internal/nn"
	"github.com/born-ml/nmt/internal/onmt"
	"github.com/born-ml/nmt/internal/tensor"
)

// Reserved vocabulary ids.
const (
	PAD = onmt.PAD
	UNK = onmt.UNK
	BOS = onmt.BOS
	EOS = onmt.EOS
)

// Attention map keys.
const (
	AttnStd         = onmt.AttnStd
	AttnCopy        = onmt.AttnCopy
	AttnCoverage    = onmt.AttnCoverage
	AttnUpperBounds = onmt.AttnUpperBounds
)

// SinkBound is the budget the final source position is reset to before
// every decoding step.
const SinkBound = onmt.SinkBound

// Options configures Embeddings, Encoder and Decoder.
type Options = onmt.Options

// Dict is the vocabulary view the embeddings need.
type Dict = onmt.Dict

// FixedDict is a Dict of the given size padded with PAD.
type FixedDict = onmt.FixedDict

// Tokens is a (time × batch × features) block of token ids.
type Tokens = onmt.Tokens

// Embeddings maps tokens to word vectors.
type Embeddings = onmt.Embeddings

// Encoder is the recurrent source encoder.
type Encoder = onmt.Encoder

// Decoder is the fertility-bounded attentional decoder.
type Decoder = onmt.Decoder

// NMTModel chains an Encoder and a Decoder.
type NMTModel = onmt.NMTModel

// ModelOption configures an NMTModel.
type ModelOption = onmt.ModelOption

// FertilityBudget is the remaining attention budget per source position.
type FertilityBudget = onmt.FertilityBudget

// Attentions holds the stacked attention maps of a decoding call.
type Attentions = onmt.Attentions

// DecoderState carries decoder state across calls and beam reordering.
type DecoderState = onmt.DecoderState

// RNNDecoderState is the state of the recurrent decoder.
type RNNDecoderState = onmt.RNNDecoderState

// TransformerDecoderState holds previously seen input tokens.
type TransformerDecoderState = onmt.TransformerDecoderState

// Metrics are the Prometheus collectors updated by NMTModel.
type Metrics = onmt.Metrics

// DefaultOptions returns a two-layer LSTM configuration with general
// attention and input feeding.
func DefaultOptions() Options { return onmt.DefaultOptions() }

// Build validates opts and creates a model over the given vocabularies.
func Build(opts Options, srcDict, tgtDict Dict, modelOpts ...ModelOption) (*NMTModel, error) {
	return onmt.Build(opts, srcDict, tgtDict, modelOpts...)
}

// NewEmbeddings creates word embeddings for dict.
func NewEmbeddings(opts Options, dict Dict) *Embeddings { return onmt.NewEmbeddings(opts, dict) }

// NewEncoder creates an encoder.
func NewEncoder(opts Options, dict Dict) *Encoder { return onmt.NewEncoder(opts, dict) }

// NewDecoder creates a decoder.
func NewDecoder(opts Options, dict Dict) *Decoder { return onmt.NewDecoder(opts, dict) }

// NewNMTModel creates a model from its components.
func NewNMTModel(encoder *Encoder, decoder *Decoder, opts ...ModelOption) *NMTModel {
	return onmt.NewNMTModel(encoder, decoder, opts...)
}

// WithLogger sets the logger of the model and its components.
func WithLogger(logger *zap.Logger) ModelOption { return onmt.WithLogger(logger) }

// WithMetrics records encoder, decoder and budget metrics.
func WithMetrics(metrics *Metrics) ModelOption { return onmt.WithMetrics(metrics) }

// WithMultiDevice marks the model as split across devices.
func WithMultiDevice() ModelOption { return onmt.WithMultiDevice() }

// NewMetrics creates and registers the model collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics { return onmt.NewMetrics(reg) }

// NewTokens wraps time-major ids of shape (steps × batch × feats).
func NewTokens(ids []int, steps, batch, feats int) (*Tokens, error) {
	return onmt.NewTokens(ids, steps, batch, feats)
}

// BatchTokens pads sentences into a single-feature Tokens block and
// returns their lengths.
func BatchTokens(sentences [][]int, pad int) (*Tokens, []int) {
	return onmt.BatchTokens(sentences, pad)
}

// NewFertilityBudget creates a budget of fertility per position with the
// sink reset.
func NewFertilityBudget(batch, srcLen int, fertility float64) *FertilityBudget {
	return onmt.NewFertilityBudget(batch, srcLen, fertility)
}

// NewRNNDecoderState wraps an initial hidden state with a zero input feed.
func NewRNNDecoderState(hidden *nn.RNNState, rnnSize int) *RNNDecoderState {
	return onmt.NewRNNDecoderState(hidden, rnnSize)
}

// NewTransformerDecoderState creates a state holding src.
func NewTransformerDecoderState(src *Tokens) *TransformerDecoderState {
	return onmt.NewTransformerDecoderState(src)
}

// BudgetFromTensor wraps existing (batch × srcLen) bounds.
func BudgetFromTensor(bounds *tensor.Tensor) *FertilityBudget {
	return onmt.BudgetFromTensor(bounds)
}
