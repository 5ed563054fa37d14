// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/born-ml/nmt/onmt"
)

// setModelDefaults registers every model.* key so that NMT_MODEL_*
// variables are picked up by UnmarshalKey.
func setModelDefaults() {
	d := onmt.DefaultOptions()
	defaults := map[string]any{
		"word_vec_size":        d.WordVecSize,
		"layers":               d.Layers,
		"brnn":                 d.BRNN,
		"rnn_size":             d.RNNSize,
		"rnn_type":             string(d.RNNType),
		"dropout":              d.Dropout,
		"attention_type":       string(d.AttentionType),
		"attn_transform":       string(d.AttnTransform),
		"c_attn":               d.CAttn,
		"coverage_attn":        d.CoverageAttn,
		"input_feed":           d.InputFeed,
		"context_gate":         d.ContextGate,
		"copy_attn":            d.CopyAttn,
		"fertility":            d.Fertility,
		"predict_fertility":    d.PredictFertility,
		"supervised_fertility": d.SupervisedFertility,
		"guided_fertility":     d.GuidedFertility,
		"exhaustion_loss":      d.ExhaustionLoss,
		"position_encoding":    d.PositionEncoding,
		"max_positions":        d.MaxPositions,
		"pre_word_vecs_enc":    d.PreWordVecsEnc,
		"pre_word_vecs_dec":    d.PreWordVecsDec,
	}
	for key, value := range defaults {
		viper.SetDefault("model."+key, value)
	}
}

// loadOptions decodes the model section of the configuration.
//
// The whole configuration is unmarshalled rather than the model key alone:
// viper applies environment overrides per leaf key only.
func loadOptions(v *viper.Viper) (onmt.Options, error) {
	cfg := struct {
		Model onmt.Options `mapstructure:"model"`
	}{Model: onmt.DefaultOptions()}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg.Model, fmt.Errorf("decode model options: %w", err)
	}
	if err := cfg.Model.Validate(); err != nil {
		return cfg.Model, fmt.Errorf("invalid model options: %w", err)
	}
	return cfg.Model, nil
}
