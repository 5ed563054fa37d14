// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cmd implements the nmt subcommands.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Version is printed by the version subcommand.
	Version string
)

var rootCmd = &cobra.Command{
	Use:   "nmt",
	Short: "Run a fertility-bounded attentional translation model",
	Long: `Build an encoder-decoder translation model from a configuration file
and run teacher-forced decoding over tokenized sentences.

Examples:
  # Decode one sentence pair with the default configuration
  nmt forward --src "the cat sat" --tgt "le chat"

  # Use constrained softmax attention with fertility 1.5
  NMT_MODEL_ATTN_TRANSFORM=constrained_softmax NMT_MODEL_FERTILITY=1.5 \
    nmt forward --src "the cat sat" --tgt "le chat"`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file path (e.g. nmt.yaml)")
	rootCmd.PersistentFlags().
		String("log-level", "info", "set the logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		String("log-style", "console", "set the logging output style (console, json, noop)")

	mustBindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBindPFlag("log.style", rootCmd.PersistentFlags().Lookup("log-style"))

	setModelDefaults()
}

// initConfig reads the .env file, the config file and NMT_ variables.
func initConfig() {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading .env: %v\n", err)
	}

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			fmt.Fprintf(os.Stderr, "Config file not found: %s\n", cfgFile)
			os.Exit(1)
		}
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("nmt")
	}

	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("NMT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file [%s]: %v\n", viper.ConfigFileUsed(), err)
		os.Exit(1)
	}
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
