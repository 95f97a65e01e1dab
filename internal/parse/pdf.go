// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// NoTextWarning is the message of the Warning block produced for a PDF with
// no extractable text, such as a scanned or image-only file.
const NoTextWarning = "[WARNING: No text extracted from PDF]"

// PageExtractor yields the text of each page of a PDF in page order. A page
// with no text layer yields an empty string.
type PageExtractor interface {
	ExtractPages(path string) ([]string, types.Metadata, error)
}

// PdfParser extracts the text layer of a PDF. Layout is not reconstructed:
// each page's text is reflowed into a single paragraph.
type PdfParser struct {
	extractor PageExtractor
}

// NewPdfParser returns a PDF parser using ex for page extraction, or the
// built-in extractor when ex is nil.
func NewPdfParser(ex PageExtractor) *PdfParser {
	if ex == nil {
		ex = textLayerExtractor{}
	}
	return &PdfParser{extractor: ex}
}

// Parse implements Parser.
func (p *PdfParser) Parse(path string) (types.Document, error) {
	pages, meta, err := p.extractor.ExtractPages(path)
	if err != nil {
		return types.Document{}, parseErr(types.FormatPDF, path, err)
	}

	doc := types.Document{Meta: meta}
	for _, page := range pages {
		if text := reflow(page); text != "" {
			doc.Blocks = append(doc.Blocks, types.Paragraph{Runs: []types.Run{types.Plain(text)}})
		}
	}
	if len(doc.Blocks) == 0 {
		log.Warn().Str("path", path).Int("pages", len(pages)).
			Msg("no text extracted; PDF might be scanned or image-only")
		doc.Blocks = []types.Block{types.Warning{Message: NoTextWarning}}
	}
	return doc, nil
}

// reflow normalises extracted text to NFKC, which folds ligature glyphs into
// plain letters, and collapses every whitespace run, line breaks included, to
// one space.
func reflow(text string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(text)), " ")
}

// textLayerExtractor reads page text with github.com/ledongthuc/pdf.
type textLayerExtractor struct{}

func (textLayerExtractor) ExtractPages(path string) (pages []string, meta types.Metadata, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, types.Metadata{}, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	// The reader panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			pages, meta, err = nil, types.Metadata{}, fmt.Errorf("reading pdf: %v", rec)
		}
	}()

	info := r.Trailer().Key("Info")
	meta = types.Metadata{
		Title:  strings.TrimSpace(info.Key("Title").Text()),
		Author: strings.TrimSpace(info.Key("Author").Text()),
	}

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		// Font resource names are page-local, so the map is too.
		fonts := make(map[string]*pdf.Font)
		for _, name := range p.Fonts() {
			font := p.Font(name)
			fonts[name] = &font
		}
		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, types.Metadata{}, fmt.Errorf("reading page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, meta, nil
}
