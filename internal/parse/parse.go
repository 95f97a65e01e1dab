// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse extracts a format-neutral document IR from DOCX, PDF,
// Markdown, and plain-text files. Parsers leave all text raw; escaping is the
// renderer's job.
package parse

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// Parser turns one source file into a document IR.
type Parser interface {
	// Parse reads the file at path and returns its blocks in source order.
	// On failure it returns a *ParseError and no partial document.
	Parse(path string) (types.Document, error)
}

// ErrUnsupportedFormat is matched by errors.Is for any UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported format")

// UnsupportedFormatError reports an input whose extension has no parser.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file type: no extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// ParseError wraps an extraction or read failure inside a parser.
type ParseError struct {
	Format types.Format
	Path   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(format types.Format, path string, err error) *ParseError {
	return &ParseError{Format: format, Path: path, Err: err}
}

// extensions maps lower-cased file extensions to source formats.
var extensions = map[string]types.Format{
	".docx":     types.FormatDOCX,
	".pdf":      types.FormatPDF,
	".md":       types.FormatMarkdown,
	".markdown": types.FormatMarkdown,
	".txt":      types.FormatText,
}

// DetectFormat returns the source format for path based on its extension.
func DetectFormat(path string) (types.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extensions[ext]
	if !ok {
		return "", &UnsupportedFormatError{Ext: ext}
	}
	return f, nil
}

// ForFormat returns the production parser for a source format.
func ForFormat(f types.Format) (Parser, error) {
	switch f {
	case types.FormatDOCX:
		return NewDocxParser(), nil
	case types.FormatPDF:
		return NewPdfParser(nil), nil
	case types.FormatMarkdown:
		return NewMarkdownParser(), nil
	case types.FormatText:
		return NewTextParser(), nil
	default:
		return nil, &UnsupportedFormatError{Ext: "." + string(f)}
	}
}

// ForPath detects the format of path and returns its parser.
func ForPath(path string) (Parser, types.Format, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, "", err
	}
	p, err := ForFormat(f)
	if err != nil {
		return nil, "", err
	}
	return p, f, nil
}
