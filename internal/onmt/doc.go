// Package onmt implements the encoder-decoder core of an attentional
// neural machine translation model with fertility-bounded attention.
//
// Components, leaves first:
//   - Embeddings: word lookup plus optional sinusoidal position encoding
//   - Encoder: multi-layer, optionally bidirectional recurrent network
//   - Decoder: input-fed stacked recurrent decoder whose attention is capped
//     by a per-source-position FertilityBudget, with optional coverage,
//     copy attention, context gating and exhaustion recording
//   - NMTModel: encode, initialise the decoder state, decode
//   - DecoderState: RNNDecoderState or TransformerDecoderState, mutated by
//     a beam-search driver between decoding calls
//
// Tensors are time-major: tokens are (time × batch × features), the memory
// bank is (srcLen × batch × rnnSize). Attention maps are returned stacked as
// (tgtLen × srcLen × batch).
//
// Programming-contract violations (batch disagreement, wrong state variant,
// bad widths) panic. Configuration problems are reported by
// Options.Validate, and file loading returns errors.
package onmt
