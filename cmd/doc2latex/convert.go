// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doc2latex/internal/convert"
	"github.com/pdiddy/doc2latex/internal/ledger"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>...",
	Short: "Convert documents to LaTeX",
	Long: `Convert reads each input (.docx, .pdf, .md, .markdown, .txt) and writes a
standalone .tex file. With a single input, -o chooses the output path;
otherwise each output is written beside its input or into --output-dir.

Batch runs record every conversion in the history database and skip inputs
whose content and options are unchanged since their last successful
conversion. Use --force to convert anyway or --no-history to bypass the
database entirely.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringP("output", "o", "", "output .tex path (single input only)")
	f.String("doc-class", "", "LaTeX document class: article, report, or book (default article)")
	f.String("fontsize", "", "base font size: 10pt, 11pt, or 12pt (default 12pt)")
	f.String("margins", "", "geometry package options (default margin=1in)")
	f.StringSlice("packages", nil, "extra packages to load, comma-separated")
	f.String("custom-preamble", "", "raw LaTeX inserted before the title block")
	f.String("output-dir", "", "directory for generated .tex files")
	f.Int("workers", 0, "concurrent conversions in batch mode (default: number of CPUs)")
	f.Bool("force", false, "convert even when the history shows the input unchanged")
	f.Bool("no-history", false, "do not read or write the history database")

	for key, flag := range map[string]string{
		"doc_class":       "doc-class",
		"fontsize":        "fontsize",
		"margins":         "margins",
		"packages":        "packages",
		"custom_preamble": "custom-preamble",
		"output_dir":      "output-dir",
		"workers":         "workers",
		"force":           "force",
	} {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.Conversion.Version = version
	output, _ := cmd.Flags().GetString("output")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	if output != "" {
		if len(args) != 1 {
			return fmt.Errorf("-o/--output requires exactly one input, got %d", len(args))
		}
		c := convert.New(cfg.Conversion)
		if err := c.Convert(args[0], output, cfg.Preamble); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("converted: ") + args[0] + dimStyle.Render(" -> "+output))
		return nil
	}

	opts := []convert.Option{convert.WithWriter(os.Stdout)}
	if !noHistory && cfg.History.Path != "" {
		l, err := ledger.Open(cfg.History.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.History.Path).Msg("history unavailable; converting without it")
		} else {
			defer l.Close()
			opts = append(opts, convert.WithLedger(l))
		}
	}

	result := convert.New(cfg.Conversion, opts...).ConvertBatch(cmd.Context(), args, cfg.Preamble)
	fmt.Println(renderSummary(result))
	if result.HasFailures() {
		return fmt.Errorf("%d of %d conversions failed", result.Failed, result.Total())
	}
	return nil
}
