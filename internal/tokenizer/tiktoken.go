package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase is the encoding name for GPT-3.
	encodingP50kBase = "p50k_base"
	// encodingR50kBase is the encoding name for older GPT-3 models.
	encodingR50kBase = "r50k_base"
)

// TikToken wraps the pkoukk/tiktoken-go library as a translation vocabulary.
//
// Subword id i of the encoding becomes model id i+NumSpecials.
//
// Supported encodings:
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci-002, babbage-002
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a vocabulary backed by the named encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// NewTikTokenForModel creates a vocabulary for a specific OpenAI model name.
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken for model %q: %w", modelName, err)
	}
	return &TikToken{encoding: encoding, name: modelName}, nil
}

// Encode converts text to model ids.
func (t *TikToken) Encode(text string) ([]int, error) {
	tokens := t.encoding.Encode(text, nil, nil)
	for i := range tokens {
		tokens[i] += NumSpecials
	}
	return tokens, nil
}

// EncodeTarget encodes a target sentence wrapped in BOS and EOS.
func (t *TikToken) EncodeTarget(text string) ([]int, error) {
	ids, err := t.Encode(text)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(ids)+2)
	out = append(out, BOS)
	out = append(out, ids...)
	return append(out, EOS), nil
}

// Decode converts model ids back to text. Reserved ids are skipped.
func (t *TikToken) Decode(tokens []int) (string, error) {
	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if IsSpecial(tok) {
			continue
		}
		if tok < 0 || tok >= t.Size() {
			return "", fmt.Errorf("token id %d out of range [0, %d)", tok, t.Size())
		}
		ids = append(ids, tok-NumSpecials)
	}
	return t.encoding.Decode(ids), nil
}

// Size returns the number of model ids.
func (t *TikToken) Size() int {
	return t.encodingSize() + NumSpecials
}

// encodingSize returns the subword vocabulary size of the encoding.
// tiktoken-go doesn't expose it directly.
func (t *TikToken) encodingSize() int {
	switch t.name {
	case encodingCL100kBase:
		return 100256
	case encodingP50kBase, encodingR50kBase:
		return 50257
	default:
		return 100000
	}
}

// PaddingIdx returns PAD.
func (t *TikToken) PaddingIdx() int {
	return PAD
}

// Name returns the encoding or model name.
func (t *TikToken) Name() string {
	return t.name
}
