// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/born-ml/nmt/onmt"
	"github.com/born-ml/nmt/tokenizer"
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "Encode source sentences and decode their targets with teacher forcing",
	Long: `Tokenize each --src/--tgt pair, build a freshly initialised model from
the model.* configuration and run one teacher-forced decoding pass.

The remaining fertility budget of every source token is printed afterwards.
The model shares the tokenizer vocabulary on both sides, so keep
model.word_vec_size small for large encodings.`,
	RunE: runForward,
}

func init() {
	rootCmd.AddCommand(forwardCmd)

	forwardCmd.Flags().StringArray("src", nil, "source sentence (repeatable)")
	forwardCmd.Flags().StringArray("tgt", nil, "target sentence, one per --src")
	forwardCmd.Flags().String("encoding", "cl100k_base", "tiktoken encoding")
	forwardCmd.Flags().Int("beam", 1, "tile the final decoder state for a beam of this size")

	mustBindPFlag("forward.encoding", forwardCmd.Flags().Lookup("encoding"))
	mustBindPFlag("forward.beam", forwardCmd.Flags().Lookup("beam"))
}

func runForward(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(viper.GetString("log.level"), viper.GetString("log.style"))
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	srcText, _ := cmd.Flags().GetStringArray("src")
	tgtText, _ := cmd.Flags().GetStringArray("tgt")
	if len(srcText) == 0 {
		return errors.New("at least one --src is required")
	}
	if len(srcText) != len(tgtText) {
		return fmt.Errorf("%d --src sentences but %d --tgt sentences", len(srcText), len(tgtText))
	}

	opts, err := loadOptions(viper.GetViper())
	if err != nil {
		return err
	}

	tok, err := tokenizer.NewTikToken(viper.GetString("forward.encoding"))
	if err != nil {
		return err
	}
	srcIDs, tgtIDs, err := encodePairs(tok, srcText, tgtText)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	model, err := onmt.Build(opts, tok, tok,
		onmt.WithLogger(logger),
		onmt.WithMetrics(onmt.NewMetrics(registry)))
	if err != nil {
		return err
	}
	model.SetTraining(false)

	src, lengths := onmt.BatchTokens(srcIDs, onmt.PAD)
	tgt, _ := onmt.BatchTokens(tgtIDs, onmt.PAD)
	out, attns, state, budget := model.Forward(src, tgt, lengths, nil)

	logger.Info("decoded",
		zap.Ints("outputs", out.Shape()),
		zap.Strings("attention_maps", attnKeys(attns)),
		zap.Int("exhausted_positions", budget.Exhausted()))

	if beam := viper.GetInt("forward.beam"); beam > 1 && state != nil {
		state.RepeatBeam(beam)
		logger.Info("tiled decoder state", zap.Int("beam", beam), zap.Int("batch", state.Batch()))
	}

	if err := printBudget(cmd.OutOrStdout(), tok, srcIDs, budget); err != nil {
		return err
	}
	return logMetrics(logger, registry)
}

func encodePairs(tok *tokenizer.TikToken, srcText, tgtText []string) ([][]int, [][]int, error) {
	src := make([][]int, len(srcText))
	tgt := make([][]int, len(tgtText))
	for i := range srcText {
		ids, err := tok.Encode(srcText[i])
		if err != nil {
			return nil, nil, fmt.Errorf("encode source %d: %w", i, err)
		}
		if len(ids) == 0 {
			return nil, nil, fmt.Errorf("source %d is empty", i)
		}
		src[i] = ids

		if tgt[i], err = tok.EncodeTarget(tgtText[i]); err != nil {
			return nil, nil, fmt.Errorf("encode target %d: %w", i, err)
		}
	}
	return src, tgt, nil
}

func attnKeys(attns *onmt.Attentions) []string {
	if attns == nil {
		return nil
	}
	var keys []string
	for _, k := range []string{onmt.AttnStd, onmt.AttnCopy, onmt.AttnCoverage, onmt.AttnUpperBounds} {
		if _, ok := attns.Map()[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// printBudget writes one line per source token with its remaining budget.
func printBudget(w io.Writer, tok tokenizer.Tokenizer, srcIDs [][]int, budget *onmt.FertilityBudget) error {
	for b, ids := range srcIDs {
		if _, err := fmt.Fprintf(w, "sentence %d (sink %.4f)\n", b, budget.Sink(b)); err != nil {
			return err
		}
		for s, id := range ids {
			piece, err := tok.Decode([]int{id})
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  %3d %-16q %.4f\n", s, piece, budget.Bounds().At(b, s)); err != nil {
				return err
			}
		}
	}
	return nil
}

// logMetrics logs the value of every gathered counter and the sample count
// of every histogram.
func logMetrics(logger *zap.Logger, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				logger.Info("metric", zap.String("name", mf.GetName()), zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				logger.Info("metric", zap.String("name", mf.GetName()),
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
		}
	}
	return nil
}
