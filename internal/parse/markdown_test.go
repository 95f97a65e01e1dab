// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doc2latex/internal/latex"
	"github.com/pdiddy/doc2latex/pkg/types"
)

func TestParseMarkdownScenario(t *testing.T) {
	doc, err := ParseMarkdown("# Title\n\nSome **bold** and *italic* text.\n- a\n- b\n")
	require.NoError(t, err)

	want := []types.Block{
		types.Heading{Level: 1, Runs: []types.Run{types.Plain("Title")}},
		types.Paragraph{Runs: []types.Run{
			types.Plain("Some "),
			{Text: "bold", Style: types.StyleBold},
			types.Plain(" and "),
			{Text: "italic", Style: types.StyleItalic},
			types.Plain(" text."),
		}},
		types.List{Items: [][]types.Run{
			{types.Plain("a")},
			{types.Plain("b")},
		}},
	}
	assert.Equal(t, want, doc.Blocks)

	body := latex.Render(doc)
	assert.Contains(t, body, `\section{Title}`)
	assert.Contains(t, body, `\textbf{bold}`)
	assert.Contains(t, body, `\textit{italic}`)
	assert.Equal(t, 1, strings.Count(body, `\begin{itemize}`))
	assert.Equal(t, 2, strings.Count(body, `\item `))
}

func TestParseMarkdownHeadings(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel int
		wantText  string
	}{
		{"# One", 1, "One"},
		{"## Two", 2, "Two"},
		{"### Three  ", 3, "Three"},
		{"#### Four", 3, "Four"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			doc, err := ParseMarkdown(tt.line)
			require.NoError(t, err)
			require.Len(t, doc.Blocks, 1)
			h, ok := doc.Blocks[0].(types.Heading)
			require.True(t, ok, "got %T", doc.Blocks[0])
			assert.Equal(t, tt.wantLevel, h.Level)
			assert.Equal(t, []types.Run{types.Plain(tt.wantText)}, h.Runs)
		})
	}

	doc, err := ParseMarkdown("#hashtag is not a heading")
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 1)
	assert.IsType(t, types.Paragraph{}, doc.Blocks[0])
}

func TestParseMarkdownFencedCodeIsVerbatim(t *testing.T) {
	code := "# not a heading\n- not an item\n**not bold** and `tick` & 100%\n\n\\section{x}"
	src := "Intro\n\n```go\n" + code + "\n```\n\nAfter *it*.\n"

	doc, err := ParseMarkdown(src)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, types.CodeBlock{Code: code}, doc.Blocks[1])

	body := latex.Render(doc)
	assert.Contains(t, body, "\\begin{lstlisting}\n"+code+"\n\\end{lstlisting}")
	assert.Contains(t, body, `After \textit{it}.`)
}

func TestParseMarkdownUnclosedFence(t *testing.T) {
	doc, err := ParseMarkdown("```\nline 1\nline 2")
	require.NoError(t, err)
	assert.Equal(t, []types.Block{types.CodeBlock{Code: "line 1\nline 2"}}, doc.Blocks)
}

func TestParseMarkdownLists(t *testing.T) {
	src := strings.Join([]string{
		"- one",
		"- two",
		"text between",
		"- three",
		"",
		"- four",
		"  - five",
	}, "\n")

	doc, err := ParseMarkdown(src)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 4)

	first := doc.Blocks[0].(types.List)
	assert.Len(t, first.Items, 2)
	assert.IsType(t, types.Paragraph{}, doc.Blocks[1])
	assert.Len(t, doc.Blocks[2].(types.List).Items, 1)
	assert.Len(t, doc.Blocks[3].(types.List).Items, 2)

	body := latex.Render(doc)
	assert.Equal(t, strings.Count(body, `\begin{itemize}`), strings.Count(body, `\end{itemize}`))
	assert.Equal(t, 3, strings.Count(body, `\begin{itemize}`))
	assert.NotContains(t, body, "\\begin{itemize}\n\\end{itemize}")
}

func TestParseInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []types.Run
	}{
		{
			name: "plain",
			in:   "just text",
			want: []types.Run{types.Plain("just text")},
		},
		{
			name: "inline code protects markers",
			in:   "run `a*b*c` now",
			want: []types.Run{
				types.Plain("run "),
				{Text: "a*b*c", Style: types.StyleCode},
				types.Plain(" now"),
			},
		},
		{
			name: "double backtick span",
			in:   "`` `x` ``",
			want: []types.Run{{Text: "`x`", Style: types.StyleCode}},
		},
		{
			name: "italic inside bold",
			in:   "**a *b* c**",
			want: []types.Run{
				{Text: "a ", Style: types.StyleBold},
				{Text: "b", Style: types.StyleBold | types.StyleItalic},
				{Text: " c", Style: types.StyleBold},
			},
		},
		{
			name: "bold inside italic",
			in:   "*a **b** c*",
			want: []types.Run{
				{Text: "a ", Style: types.StyleItalic},
				{Text: "b", Style: types.StyleItalic | types.StyleBold},
				{Text: " c", Style: types.StyleItalic},
			},
		},
		{
			name: "triple star is bold italic",
			in:   "a ***b c*** d",
			want: []types.Run{
				types.Plain("a "),
				{Text: "b c", Style: types.StyleBold | types.StyleItalic},
				types.Plain(" d"),
			},
		},
		{
			name: "unmatched triple star falls back to bold",
			in:   "***a**",
			want: []types.Run{{Text: "*a", Style: types.StyleBold}},
		},
		{
			name: "unmatched markers stay literal",
			in:   "2 * 3 and ** open and `tick",
			want: []types.Run{types.Plain("2 * 3 and ** open and `tick")},
		},
		{
			name: "specials stay raw",
			in:   "cost $5 & 10%",
			want: []types.Run{types.Plain("cost $5 & 10%")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInline(tt.in))
		})
	}
}

func TestParseMarkdownFrontMatter(t *testing.T) {
	src := "---\ntitle: My Notes\nauthor:\n  - Ada\n  - Grace\n---\n# Heading\n"

	doc, err := ParseMarkdown(src)
	require.NoError(t, err)
	assert.Equal(t, types.Metadata{Title: "My Notes", Author: "Ada, Grace"}, doc.Meta)
	require.Len(t, doc.Blocks, 1)
	assert.IsType(t, types.Heading{}, doc.Blocks[0])
}

func TestParseMarkdownFrontMatterErrors(t *testing.T) {
	_, err := ParseMarkdown("---\ntitle: [unclosed\n---\nbody\n")
	assert.Error(t, err)

	doc, err := ParseMarkdown("---\nno closing delimiter\n")
	require.NoError(t, err)
	assert.Empty(t, doc.Meta.Title)
}

func TestMarkdownParserReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.md")

	_, err := NewMarkdownParser().Parse(path)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, types.FormatMarkdown, pe.Format)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
