// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"os"
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// TextParser reads plain text. It detects no structure beyond paragraph
// breaks: each chunk between blank lines becomes one Paragraph.
type TextParser struct{}

// NewTextParser returns a plain-text parser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Parse implements Parser.
func (p *TextParser) Parse(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, parseErr(types.FormatText, path, err)
	}
	var doc types.Document
	for _, chunk := range splitParagraphs(string(data)) {
		doc.Blocks = append(doc.Blocks, types.Paragraph{Runs: []types.Run{types.Plain(chunk)}})
	}
	return doc, nil
}

// splitParagraphs splits text on lines that are empty or whitespace-only and
// drops leading and trailing newlines from each chunk.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		chunks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return chunks
}
