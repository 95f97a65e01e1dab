// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"fmt"
	"strings"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// basePackages are loaded by every generated document, after geometry.
var basePackages = []string{
	"graphicx", "hyperref", "amsmath", "listings", "xcolor", "booktabs", "float",
}

const listingStyle = `\lstset{
    basicstyle=\ttfamily\small,
    breaklines=true,
    frame=single,
    backgroundcolor=\color{gray!10},
    keywordstyle=\color{blue},
    commentstyle=\color{green!50!black},
    stringstyle=\color{red}
}`

// BuildPreamble returns everything that precedes the body: document class,
// packages, listing style, the user's custom preamble, the title block, and
// \begin{document}. Option values are not validated; bad LaTeX in Margins or
// CustomPreamble surfaces when the output is compiled. Title and author come
// from meta and are escaped; CustomPreamble is inserted verbatim.
func BuildPreamble(opts types.PreambleOptions, meta types.Metadata) string {
	opts = opts.WithDefaults()

	lines := []string{
		fmt.Sprintf(`\documentclass[%s]{%s}`, opts.FontSize, opts.DocClass),
		fmt.Sprintf(`\usepackage[%s]{geometry}`, opts.Margins),
	}

	seen := map[string]bool{"geometry": true}
	for _, pkg := range append(append([]string{}, basePackages...), opts.Packages...) {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" || seen[pkg] {
			continue
		}
		seen[pkg] = true
		lines = append(lines, fmt.Sprintf(`\usepackage{%s}`, pkg))
	}

	lines = append(lines, "", listingStyle, "")

	if opts.CustomPreamble != "" {
		lines = append(lines, opts.CustomPreamble)
	}

	author := meta.Author
	if author == "" {
		author = types.DefaultAuthor
	}
	lines = append(lines,
		fmt.Sprintf(`\title{%s}`, Escape(meta.Title)),
		fmt.Sprintf(`\author{%s}`, Escape(author)),
		`\date{\today}`,
		`\begin{document}`,
		`\maketitle`,
	)
	return strings.Join(lines, "\n")
}

// Postamble returns the text that closes the document.
func Postamble() string {
	return `\end{document}`
}

// Assemble joins preamble, body, and postamble into a complete document.
func Assemble(preamble, body string) string {
	return preamble + "\n\n" + body + "\n\n" + Postamble() + "\n"
}
