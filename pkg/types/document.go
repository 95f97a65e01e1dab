// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Style is a set of inline formatting flags carried by a Run.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleCode
)

// Has reports whether every flag in f is set in s.
func (s Style) Has(f Style) bool {
	return s&f == f
}

// Run is a contiguous span of inline text sharing one style set.
// Text is raw: escaping happens once, when the run is rendered.
type Run struct {
	Text  string
	Style Style
}

// Plain returns an unstyled run.
func Plain(text string) Run {
	return Run{Text: text}
}

// Block is one structural unit of a document. The set of implementations is
// closed: Heading, Paragraph, List, Table, CodeBlock, and Warning.
type Block interface {
	block()
}

// Heading is a section title of level 1, 2, or 3.
type Heading struct {
	Level int
	Runs  []Run
}

// Paragraph is a run of body text.
type Paragraph struct {
	Runs []Run
}

// List is a flat bulleted list; each item is a sequence of runs.
type List struct {
	Items [][]Run
}

// Table holds raw cell text row by row. Rows may differ in width; the
// renderer pads short rows to Columns().
type Table struct {
	Rows [][]string
}

// Columns returns the width of the widest row.
func (t Table) Columns() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// CodeBlock is preformatted source code. Code is emitted verbatim and is
// never escaped.
type CodeBlock struct {
	Code string
}

// Warning is a non-fatal diagnostic surfaced in the output as a comment.
type Warning struct {
	Message string
}

func (Heading) block()   {}
func (Paragraph) block() {}
func (List) block()      {}
func (Table) block()     {}
func (CodeBlock) block() {}
func (Warning) block()   {}

// Metadata holds optional document properties found in the source file.
type Metadata struct {
	// Title is the document title (Markdown front matter, DOCX core
	// properties, or the PDF Info dictionary).
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Author is the document author, from the same sources as Title.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// Document is the format-neutral intermediate representation produced by a
// parser and consumed once by the renderer.
type Document struct {
	Meta   Metadata
	Blocks []Block
}
