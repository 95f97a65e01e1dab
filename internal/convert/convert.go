// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives one source file or a batch of them through
// parse, render, and preamble assembly, writing .tex output atomically.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/doc2latex/internal/latex"
	"github.com/pdiddy/doc2latex/internal/ledger"
	"github.com/pdiddy/doc2latex/internal/parse"
	"github.com/pdiddy/doc2latex/pkg/types"
)

// ErrOutputConflict is reported for a batch input whose output path is
// already claimed by an earlier input in the same batch.
var ErrOutputConflict = errors.New("output path conflict")

// ParserLookup selects a parser for an input path.
type ParserLookup func(path string) (parse.Parser, types.Format, error)

// Converter converts source documents into LaTeX files.
type Converter struct {
	cfg    types.ConversionConfig
	ledger *ledger.Ledger
	lookup ParserLookup
	w      io.Writer
}

// Option configures a Converter.
type Option func(*Converter)

// WithLedger records every conversion in l and skips unchanged inputs in
// batch mode.
func WithLedger(l *ledger.Ledger) Option {
	return func(c *Converter) { c.ledger = l }
}

// WithWriter sets where batch status lines are printed. Default io.Discard.
func WithWriter(w io.Writer) Option {
	return func(c *Converter) { c.w = w }
}

// WithParserLookup replaces extension-based parser selection.
func WithParserLookup(fn ParserLookup) Option {
	return func(c *Converter) { c.lookup = fn }
}

// New returns a Converter for cfg.
func New(cfg types.ConversionConfig, opts ...Option) *Converter {
	c := &Converter{cfg: cfg, lookup: parse.ForPath, w: io.Discard}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DefaultOutputPath returns input with its extension replaced by .tex,
// placed in the configured output directory when there is one.
func (c *Converter) DefaultOutputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".tex"
	if c.cfg.OutputDir != "" {
		return filepath.Join(c.cfg.OutputDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}

// Convert converts the file at input and writes the LaTeX document to
// output. On error no output file is created or modified.
func (c *Converter) Convert(input, output string, opts types.PreambleOptions) error {
	_, err := c.convert(input, output, opts)
	return err
}

func (c *Converter) convert(input, output string, opts types.PreambleOptions) (types.Format, error) {
	p, format, err := c.lookup(input)
	if err != nil {
		return "", err
	}
	log.Info().Str("input", input).Str("format", string(format)).Msg("detected input type")

	doc, err := p.Parse(input)
	if err != nil {
		return format, err
	}
	if doc.Meta.Title == "" {
		doc.Meta.Title = filepath.Base(input)
	}

	out := latex.Assemble(latex.BuildPreamble(opts, doc.Meta), latex.Render(doc))
	if err := writeAtomic(output, []byte(out)); err != nil {
		return format, fmt.Errorf("writing %s: %w", output, err)
	}
	log.Info().Str("input", input).Str("output", output).Int("blocks", len(doc.Blocks)).
		Msg("conversion complete")
	return format, nil
}

// writeAtomic writes data to a temp file beside path and renames it into
// place.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// outcome is the per-file result of a batch run.
type outcome struct {
	status types.ConversionStatus
	err    error
}

// ConvertBatch converts each path to its default output path with up to
// cfg.Workers conversions in flight. Status lines are printed in input
// order once all conversions finish, followed by a summary.
func (c *Converter) ConvertBatch(ctx context.Context, paths []string, opts types.PreambleOptions) BatchResult {
	workers := c.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	outcomes := make([]outcome, len(paths))
	claimed := make(map[string]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		key := outputKey(c.DefaultOutputPath(p))
		if first, ok := claimed[key]; ok {
			outcomes[i] = outcome{
				status: types.ConversionFailed,
				err:    fmt.Errorf("%w: %s is also written by %s", ErrOutputConflict, c.DefaultOutputPath(p), first),
			}
			continue
		}
		claimed[key] = p
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = c.convertOne(ctx, p, opts)
			return nil
		})
	}
	g.Wait()

	var result BatchResult
	for i, p := range paths {
		o := outcomes[i]
		switch o.status {
		case types.ConversionDone:
			fmt.Fprintf(c.w, "converted: %s\n", p)
			result.Converted++
		case types.ConversionSkipped:
			fmt.Fprintf(c.w, "skipped: %s (unchanged)\n", p)
			result.Skipped++
		default:
			fmt.Fprintf(c.w, "failed:  %s (%v)\n", p, o.err)
			result.Failed++
		}
	}
	fmt.Fprintf(c.w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// convertOne converts a single batch input, consulting and updating the
// ledger when one is configured.
func (c *Converter) convertOne(ctx context.Context, input string, opts types.PreambleOptions) outcome {
	if err := ctx.Err(); err != nil {
		return outcome{status: types.ConversionFailed, err: err}
	}
	output := c.DefaultOutputPath(input)

	if c.ledger == nil {
		if _, err := c.convert(input, output, opts); err != nil {
			log.Error().Err(err).Str("input", input).Msg("conversion failed")
			return outcome{status: types.ConversionFailed, err: err}
		}
		return outcome{status: types.ConversionDone}
	}

	inputHash, err := ledger.HashFile(input)
	if err != nil {
		return outcome{status: types.ConversionFailed, err: err}
	}
	optionsHash, err := ledger.HashOptions(opts, c.cfg.Version)
	if err != nil {
		return outcome{status: types.ConversionFailed, err: err}
	}

	if !c.cfg.Force {
		_, ok, err := c.ledger.Unchanged(ctx, input, output, inputHash, optionsHash)
		if err != nil {
			log.Warn().Err(err).Str("input", input).Msg("history lookup failed; converting")
		} else if ok && fileExists(output) {
			log.Debug().Str("input", input).Msg("unchanged since last conversion")
			return outcome{status: types.ConversionSkipped}
		}
	}

	format, convErr := c.convert(input, output, opts)
	entry := ledger.Entry{
		InputPath:   input,
		InputHash:   inputHash,
		OptionsHash: optionsHash,
		OutputPath:  output,
		Format:      format,
		Status:      types.ConversionDone,
	}
	if convErr != nil {
		log.Error().Err(convErr).Str("input", input).Msg("conversion failed")
		entry.Status = types.ConversionFailed
		entry.Message = convErr.Error()
	}
	if _, err := c.ledger.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("input", input).Msg("recording history failed")
	}
	if convErr != nil {
		return outcome{status: types.ConversionFailed, err: convErr}
	}
	return outcome{status: types.ConversionDone}
}

// outputKey normalises an output path for conflict detection.
func outputKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
