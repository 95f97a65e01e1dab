// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package latex renders the document IR into LaTeX source: text escaping,
// block rendering, and the preamble around the body.
package latex

import "strings"

// escaper substitutes in a single pass over the input; replacement text is
// never rescanned, so the backslashes it inserts are not escaped again.
var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\^{}`,
)

// Escape returns s with every LaTeX special character replaced by a sequence
// that typesets it literally. Bytes that are not special, including invalid
// UTF-8, are copied unchanged.
func Escape(s string) string {
	if s == "" {
		return ""
	}
	return escaper.Replace(s)
}
