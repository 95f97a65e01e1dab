// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the doc2latex CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the doc2latex CLI.
var rootCmd = &cobra.Command{
	Use:   "doc2latex",
	Short: "Convert DOCX, PDF, Markdown, and text files to LaTeX",
	Long: `doc2latex converts word-processor documents, PDFs, Markdown, and plain
text into standalone LaTeX source. Headings, emphasis, lists, tables, and code
blocks are carried over; everything else is escaped so the output compiles.

Options are read from flags, DOC2LATEX_* environment variables, and
doc2latex.yaml in the current directory or ~/.config/doc2latex/.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./doc2latex.yaml or ~/.config/doc2latex/doc2latex.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("history-db", "", "conversion history database (default: ~/.config/doc2latex/history.db)")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("history_db", rootCmd.PersistentFlags().Lookup("history-db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("doc2latex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "doc2latex"))
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("history_db", filepath.Join(home, ".config", "doc2latex", "history.db"))
	}

	viper.SetEnvPrefix("DOC2LATEX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// loadConfig decodes the merged flag, environment, and file settings.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	// Packages may arrive as a list or as one comma-separated string.
	cfg.Preamble.Packages = types.ParsePackages(strings.Join(cfg.Preamble.Packages, ","))
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
