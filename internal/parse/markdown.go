// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// MarkdownParser handles a practical Markdown subset: YAML front matter,
// fenced code, ATX headings, dash bullet lists, paragraphs, inline code,
// bold, and italic.
//
// Parsing is two passes. tokenize classifies each line (and captures fenced
// code whole), then a fold over the tokens builds blocks. Inline markup is
// parsed per block from the token text, so code content is never matched
// against heading, list, or emphasis patterns.
type MarkdownParser struct{}

// NewMarkdownParser returns a Markdown parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse implements Parser.
func (p *MarkdownParser) Parse(path string) (types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, parseErr(types.FormatMarkdown, path, err)
	}
	doc, err := ParseMarkdown(string(data))
	if err != nil {
		return types.Document{}, parseErr(types.FormatMarkdown, path, err)
	}
	return doc, nil
}

// ParseMarkdown converts Markdown source into a document.
func ParseMarkdown(src string) (types.Document, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")

	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return types.Document{}, err
	}

	var acc accumulator
	for _, t := range tokenize(body) {
		acc = acc.step(t)
	}
	return types.Document{Meta: meta, Blocks: acc.finish()}, nil
}

// --- front matter ---

type frontMatter struct {
	Title  string      `yaml:"title"`
	Author authorField `yaml:"author"`
}

// authorField accepts either a single name or a list of names.
type authorField string

func (a *authorField) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = authorField(node.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*a = authorField(strings.Join(names, ", "))
		return nil
	default:
		return fmt.Errorf("author: expected a string or a list of strings")
	}
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// body. Input without a closed block is returned unchanged.
func splitFrontMatter(src string) (types.Metadata, string, error) {
	if !strings.HasPrefix(src, "---\n") {
		return types.Metadata{}, src, nil
	}
	rest := src[len("---\n"):]
	end, next := -1, 0
	for off := 0; off < len(rest); {
		nl := strings.IndexByte(rest[off:], '\n')
		line := rest[off:]
		if nl >= 0 {
			line = rest[off : off+nl]
		}
		if t := strings.TrimRight(line, " \t"); t == "---" || t == "..." {
			end, next = off, off+len(line)
			if nl >= 0 {
				next++
			}
			break
		}
		if nl < 0 {
			break
		}
		off += nl + 1
	}
	if end < 0 {
		return types.Metadata{}, src, nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return types.Metadata{}, "", fmt.Errorf("reading front matter: %w", err)
	}
	meta := types.Metadata{
		Title:  strings.TrimSpace(fm.Title),
		Author: strings.TrimSpace(string(fm.Author)),
	}
	return meta, rest[next:], nil
}

// --- tokenizer ---

type tokenKind int

const (
	tokText tokenKind = iota
	tokBlank
	tokHeading
	tokItem
	tokFence
)

type token struct {
	kind  tokenKind
	level int    // heading level
	text  string // line text, or raw code for fences
}

var (
	headingLine = regexp.MustCompile(`^(#{1,6})[ \t]+(.*?)[ \t]*$`)
	itemLine    = regexp.MustCompile(`^\s*-\s+(.*)$`)
	fenceOpen   = regexp.MustCompile("^ {0,3}```[^`]*$")
	fenceClose  = regexp.MustCompile("^ {0,3}```[ \t]*$")
)

// tokenize classifies each line of src. A fenced code block becomes a single
// token holding its content verbatim; an unclosed fence runs to end of input.
func tokenize(src string) []token {
	lines := strings.Split(src, "\n")
	toks := make([]token, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case fenceOpen.MatchString(line):
			j := i + 1
			for j < len(lines) && !fenceClose.MatchString(lines[j]) {
				j++
			}
			toks = append(toks, token{kind: tokFence, text: strings.Join(lines[i+1:j], "\n")})
			i = j
		case strings.TrimSpace(line) == "":
			toks = append(toks, token{kind: tokBlank})
		case headingLine.MatchString(line):
			m := headingLine.FindStringSubmatch(line)
			toks = append(toks, token{kind: tokHeading, level: min(len(m[1]), 3), text: m[2]})
		case itemLine.MatchString(line):
			m := itemLine.FindStringSubmatch(line)
			toks = append(toks, token{kind: tokItem, text: strings.TrimSpace(m[1])})
		default:
			toks = append(toks, token{kind: tokText, text: strings.TrimSpace(line)})
		}
	}
	return toks
}

// --- block fold ---

type listState int

const (
	outside listState = iota
	inList
)

// accumulator is the fold state over tokens: finished blocks plus the open
// list and open paragraph, if any.
type accumulator struct {
	state  listState
	blocks []types.Block
	items  [][]types.Run
	para   []string
}

func (a accumulator) step(t token) accumulator {
	if t.kind != tokText {
		a = a.closeParagraph()
	}
	if t.kind != tokItem {
		a = a.closeList()
	}
	switch t.kind {
	case tokItem:
		a.state = inList
		a.items = append(a.items, parseInline(t.text))
	case tokText:
		a.para = append(a.para, t.text)
	case tokHeading:
		a.blocks = append(a.blocks, types.Heading{Level: t.level, Runs: parseInline(t.text)})
	case tokFence:
		a.blocks = append(a.blocks, types.CodeBlock{Code: t.text})
	}
	return a
}

func (a accumulator) closeParagraph() accumulator {
	if len(a.para) > 0 {
		a.blocks = append(a.blocks, types.Paragraph{Runs: parseInline(strings.Join(a.para, "\n"))})
		a.para = nil
	}
	return a
}

func (a accumulator) closeList() accumulator {
	if a.state == inList {
		a.blocks = append(a.blocks, types.List{Items: a.items})
		a.items = nil
		a.state = outside
	}
	return a
}

func (a accumulator) finish() []types.Block {
	return a.closeParagraph().closeList().blocks
}

// --- inline ---

// parseInline splits text into styled runs, scanning left to right once.
// Code spans are recognised first at each position, then a matched ***,
// then ** before *. Markers without a valid closer are kept as literal text.
func parseInline(s string) []types.Run {
	return mergeRuns(inlineRuns(s, 0))
}

func inlineRuns(s string, base types.Style) []types.Run {
	var (
		runs  []types.Run
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			runs = append(runs, types.Run{Text: plain.String(), Style: base})
			plain.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case s[i] == '`':
			n := runLength(s[i:], '`')
			if end := findBackticks(s, i+n, n); end >= 0 {
				flush()
				runs = append(runs, types.Run{Text: trimCodeSpan(s[i+n : end]), Style: base | types.StyleCode})
				i = end + n
				continue
			}
			plain.WriteString(s[i : i+n])
			i += n
		case strings.HasPrefix(s[i:], "***") && findCloser(s, i+3, "***") >= 0:
			end := findCloser(s, i+3, "***")
			flush()
			runs = append(runs, inlineRuns(s[i+3:end], base|types.StyleBold|types.StyleItalic)...)
			i = end + 3
			continue
		case strings.HasPrefix(s[i:], "**"):
			if end := findCloser(s, i+2, "**"); end >= 0 {
				flush()
				runs = append(runs, inlineRuns(s[i+2:end], base|types.StyleBold)...)
				i = end + 2
				continue
			}
			plain.WriteString("**")
			i += 2
		case s[i] == '*':
			if end := findCloser(s, i+1, "*"); end >= 0 {
				flush()
				runs = append(runs, inlineRuns(s[i+1:end], base|types.StyleItalic)...)
				i = end + 1
				continue
			}
			plain.WriteByte('*')
			i++
		default:
			plain.WriteByte(s[i])
			i++
		}
	}
	flush()
	return runs
}

// findCloser returns the index of the delimiter closing an emphasis span
// opened just before from, or -1. Content must be non-empty and must not
// start or end with whitespace. Code spans are skipped, and a single-star
// search steps over "**" pairs so bold nested in italic stays intact.
func findCloser(s string, from int, delim string) int {
	if from >= len(s) || isSpace(s[from]) {
		return -1
	}
	for j := from; j < len(s); {
		switch {
		case s[j] == '`':
			n := runLength(s[j:], '`')
			if end := findBackticks(s, j+n, n); end >= 0 {
				j = end + n
				continue
			}
			j += n
		case delim == "*" && strings.HasPrefix(s[j:], "**"):
			j += 2
		case strings.HasPrefix(s[j:], delim):
			if j > from && !isSpace(s[j-1]) {
				return j
			}
			j += len(delim)
		default:
			j++
		}
	}
	return -1
}

// findBackticks returns the start of the next run of exactly n backticks at
// or after from, or -1.
func findBackticks(s string, from, n int) int {
	for j := from; j < len(s); {
		if s[j] != '`' {
			j++
			continue
		}
		k := runLength(s[j:], '`')
		if k == n {
			return j
		}
		j += k
	}
	return -1
}

func runLength(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// trimCodeSpan strips one space from each side when both are present, which
// lets a code span open or close with a backtick.
func trimCodeSpan(code string) string {
	if len(code) >= 2 && code[0] == ' ' && code[len(code)-1] == ' ' && strings.TrimSpace(code) != "" {
		return code[1 : len(code)-1]
	}
	return code
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// mergeRuns joins adjacent runs that share a style.
func mergeRuns(runs []types.Run) []types.Run {
	out := runs[:0:0]
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == r.Style {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}
