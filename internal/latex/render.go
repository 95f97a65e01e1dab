// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// blankLines matches a paragraph break, which LaTeX rejects inside the
// argument of \textbf, \section and friends.
var blankLines = regexp.MustCompile(`\n\s*\n`)

// headingCommands maps heading levels to sectioning commands.
var headingCommands = [...]string{1: "section", 2: "subsection", 3: "subsubsection"}

// Render converts a document's blocks into a LaTeX body. Blocks are separated
// by a blank line. Every run and cell is escaped here and nowhere else;
// code blocks are emitted verbatim.
func Render(doc types.Document) string {
	parts := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderBlock(b types.Block) string {
	switch b := b.(type) {
	case types.Heading:
		return fmt.Sprintf(`\%s{%s}`, headingCommand(b.Level), joinLines(renderRuns(b.Runs)))
	case types.Paragraph:
		return renderRuns(b.Runs)
	case types.List:
		return renderList(b)
	case types.Table:
		return renderTable(b)
	case types.CodeBlock:
		return "\\begin{lstlisting}\n" + b.Code + "\n\\end{lstlisting}"
	case types.Warning:
		return "% " + strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(b.Message)
	default:
		return ""
	}
}

func headingCommand(level int) string {
	if level < 1 {
		level = 1
	}
	if level >= len(headingCommands) {
		level = len(headingCommands) - 1
	}
	return headingCommands[level]
}

// renderRuns escapes each run and wraps it in its style commands. Bold wraps
// italic; code is innermost.
func renderRuns(runs []types.Run) string {
	var b strings.Builder
	for _, r := range runs {
		text := Escape(r.Text)
		if r.Style != 0 {
			text = joinLines(text)
		}
		if r.Style.Has(types.StyleCode) {
			text = `\texttt{` + text + `}`
		}
		if r.Style.Has(types.StyleItalic) {
			text = `\textit{` + text + `}`
		}
		if r.Style.Has(types.StyleBold) {
			text = `\textbf{` + text + `}`
		}
		b.WriteString(text)
	}
	return b.String()
}

// joinLines collapses every blank-line sequence in s to a single newline.
func joinLines(s string) string {
	return blankLines.ReplaceAllString(s, "\n")
}

func renderList(l types.List) string {
	if len(l.Items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\\begin{itemize}\n")
	for _, item := range l.Items {
		text := renderRuns(item)
		// A leading [ would be read as the optional label of \item.
		if strings.HasPrefix(text, "[") {
			text = "{[}" + text[1:]
		}
		b.WriteString(`\item `)
		b.WriteString(text)
		b.WriteByte('\n')
	}
	b.WriteString(`\end{itemize}`)
	return b.String()
}

func renderTable(t types.Table) string {
	cols := t.Columns()
	if cols == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\\begin{table}[H]\n\\centering\n")
	fmt.Fprintf(&b, "\\begin{tabular}{|%s}\n", strings.Repeat("l|", cols))
	b.WriteString("\\hline\n")
	cells := make([]string, cols)
	for _, row := range t.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				// A blank line inside a tabular cell is a paragraph break,
				// which the l column type rejects.
				cells[i] = Escape(strings.Join(strings.Fields(row[i]), " "))
			}
		}
		b.WriteString(strings.Join(cells, " & "))
		b.WriteString(" \\\\ \\hline\n")
	}
	b.WriteString("\\end{tabular}\n\\end{table}")
	return b.String()
}
