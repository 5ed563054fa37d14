// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/nmt/nn"
	"github.com/born-ml/nmt/onmt"
)

func TestLoadOptions_FromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
model:
  rnn_type: GRU
  brnn: true
  rnn_size: 64
  attn_transform: constrained_sparsemax
  fertility: 1.5
  context_gate: both
`)))

	opts, err := loadOptions(v)
	require.NoError(t, err)
	assert.Equal(t, nn.GRU, opts.RNNType)
	assert.True(t, opts.BRNN)
	assert.Equal(t, 64, opts.RNNSize)
	assert.Equal(t, nn.ConstrainedSparsemax, opts.AttnTransform)
	assert.Equal(t, 1.5, opts.Fertility)
	assert.Equal(t, "both", opts.ContextGate)
	assert.Equal(t, onmt.DefaultOptions().WordVecSize, opts.WordVecSize, "unset keys keep their defaults")
}

func TestLoadOptions_Invalid(t *testing.T) {
	v := viper.New()
	v.Set("model.attention_type", "cosine")
	_, err := loadOptions(v)
	assert.ErrorContains(t, err, "invalid model options")
}

func TestLoadOptions_Env(t *testing.T) {
	t.Setenv("NMT_MODEL_FERTILITY", "0.75")

	v := viper.New()
	v.SetEnvPrefix("NMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("model.fertility", 2.0)

	opts, err := loadOptions(v)
	require.NoError(t, err)
	assert.Equal(t, 0.75, opts.Fertility)
}

func TestNewLogger(t *testing.T) {
	for _, style := range []string{"console", "json", "noop"} {
		t.Run(style, func(t *testing.T) {
			logger, err := newLogger("debug", style)
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}

	_, err := newLogger("loud", "json")
	assert.Error(t, err)
	_, err = newLogger("info", "xml")
	assert.Error(t, err)
}

func TestFindEnvFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	_, ok := findEnvFile(nested)
	assert.False(t, ok)

	envPath := filepath.Join(root, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NMT_LOG_LEVEL=debug\n"), 0o600))

	found, ok := findEnvFile(nested)
	require.True(t, ok)
	assert.Equal(t, envPath, found)
}

func TestVersionCommand(t *testing.T) {
	Version = "v1.2.3"
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "nmt v1.2.3\n", out.String())
}

func TestEncodeMismatchedPairs(t *testing.T) {
	forwardCmd.SetArgs(nil)
	require.NoError(t, forwardCmd.Flags().Set("src", "a"))
	err := runForward(forwardCmd, nil)
	assert.ErrorContains(t, err, "--tgt")
}
