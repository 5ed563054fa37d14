// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer turns text into the word ids consumed by the translation
// model.
//
// Ids 0-3 are reserved for PAD, UNK, BOS and EOS; the byte-pair vocabulary
// starts right after them.
//
// Example usage:
//
//	import "github.com/born-ml/nmt/tokenizer"
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tok.Encode("Hello, world!")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	text, err := tok.Decode(ids)
package tokenizer

import (
	"github.com/born-ml/nmt/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// TikToken is a tiktoken BPE vocabulary shifted past the reserved ids.
type TikToken = tokenizer.TikToken

// Reserved ids.
const (
	PAD         = tokenizer.PAD
	UNK         = tokenizer.UNK
	BOS         = tokenizer.BOS
	EOS         = tokenizer.EOS
	NumSpecials = tokenizer.NumSpecials
)

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base" (GPT-4), "p50k_base" (GPT-3).
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	return tokenizer.NewTikTokenForModel(modelName)
}

// IsSpecial reports whether id is one of the reserved ids.
func IsSpecial(id int) bool {
	return tokenizer.IsSpecial(id)
}
