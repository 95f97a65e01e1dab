// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doc2latex/internal/latex"
	"github.com/pdiddy/doc2latex/pkg/types"
)

// fakeExtractor implements PageExtractor with canned pages or an error.
type fakeExtractor struct {
	pages []string
	meta  types.Metadata
	err   error
}

func (f *fakeExtractor) ExtractPages(string) ([]string, types.Metadata, error) {
	if f.err != nil {
		return nil, types.Metadata{}, f.err
	}
	return f.pages, f.meta, nil
}

func TestPdfParserReflowsPages(t *testing.T) {
	ex := &fakeExtractor{
		pages: []string{
			"First line\nsecond line  with   gaps\n",
			"",
			"   \n  ",
			"Costs $5 & 10%\r\nof\ttotal",
			"The ﬁle", // ligature fi
		},
		meta: types.Metadata{Title: "Scanned"},
	}

	doc, err := NewPdfParser(ex).Parse("paper.pdf")
	require.NoError(t, err)

	want := []types.Block{
		types.Paragraph{Runs: []types.Run{types.Plain("First line second line with gaps")}},
		types.Paragraph{Runs: []types.Run{types.Plain("Costs $5 & 10% of total")}},
		types.Paragraph{Runs: []types.Run{types.Plain("The file")}},
	}
	assert.Equal(t, want, doc.Blocks)
	assert.Equal(t, "Scanned", doc.Meta.Title)

	body := latex.Render(doc)
	assert.Equal(t, "First line second line with gaps\n\nCosts \\$5 \\& 10\\% of total\n\nThe file", body)
}

func TestPdfParserNoText(t *testing.T) {
	doc, err := NewPdfParser(&fakeExtractor{pages: []string{"", "  \n"}}).Parse("scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, []types.Block{types.Warning{Message: NoTextWarning}}, doc.Blocks)
	assert.Equal(t, "% "+NoTextWarning, latex.Render(doc))
}

func TestPdfParserExtractorFailure(t *testing.T) {
	cause := errors.New("xref table corrupt")

	_, err := NewPdfParser(&fakeExtractor{err: cause}).Parse("bad.pdf")

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, types.FormatPDF, pe.Format)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "xref table corrupt")
}

func writePDF(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	f := gofpdf.New("P", "mm", "A4", "")
	f.AddPage()
	f.SetFont("Helvetica", "", 12)
	for _, l := range lines {
		f.Cell(0, 10, l)
		f.Ln(10)
	}
	require.NoError(t, f.OutputFileAndClose(path))
	return path
}

func TestTextLayerExtractor(t *testing.T) {
	path := writePDF(t, "Hello World")

	doc, err := NewPdfParser(nil).Parse(path)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	p, ok := doc.Blocks[0].(types.Paragraph)
	require.True(t, ok, "got %T", doc.Blocks[0])
	assert.Contains(t, p.Runs[0].Text, "Hello")
}

func TestTextLayerExtractorBlankPage(t *testing.T) {
	path := writePDF(t)

	doc, err := NewPdfParser(nil).Parse(path)
	require.NoError(t, err)
	assert.Equal(t, []types.Block{types.Warning{Message: NoTextWarning}}, doc.Blocks)
}

func TestTextLayerExtractorNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")

	_, err := NewPdfParser(nil).Parse(path)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}
