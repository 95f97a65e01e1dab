package types

import "strings"

// Preamble defaults applied when an option is left empty.
const (
	DefaultDocClass = "article"
	DefaultFontSize = "12pt"
	DefaultMargins  = "margin=1in"
	DefaultAuthor   = "Auto-Generated"
)

// PreambleOptions controls the LaTeX preamble wrapped around a converted body.
type PreambleOptions struct {
	// DocClass is the LaTeX document class: article, report, or book.
	DocClass string `json:"doc_class" yaml:"doc_class" mapstructure:"doc_class"`

	// FontSize is the class option for the base font size: 10pt, 11pt, or 12pt.
	FontSize string `json:"fontsize" yaml:"fontsize" mapstructure:"fontsize"`

	// Margins is passed verbatim as the geometry package option
	// (e.g. "margin=1in").
	Margins string `json:"margins" yaml:"margins" mapstructure:"margins"`

	// Packages lists extra packages to load after the baseline set.
	Packages []string `json:"packages,omitempty" yaml:"packages,omitempty" mapstructure:"packages"`

	// CustomPreamble is raw LaTeX injected verbatim before the title block.
	// It is trusted input and is never escaped.
	CustomPreamble string `json:"custom_preamble,omitempty" yaml:"custom_preamble,omitempty" mapstructure:"custom_preamble"`
}

// WithDefaults returns a copy of o with empty fields set to their defaults.
func (o PreambleOptions) WithDefaults() PreambleOptions {
	if o.DocClass == "" {
		o.DocClass = DefaultDocClass
	}
	if o.FontSize == "" {
		o.FontSize = DefaultFontSize
	}
	if o.Margins == "" {
		o.Margins = DefaultMargins
	}
	return o
}

// ParsePackages splits a comma-separated package list, trimming whitespace
// and dropping empty entries.
func ParsePackages(s string) []string {
	var pkgs []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// OutputDir is where .tex files are written when no explicit output path
	// is given. Empty means next to the input file.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Workers bounds concurrent conversions in batch mode (0 = NumCPU).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Force converts every input even when the history shows it unchanged.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`

	// Version identifies the converter build. A change invalidates the
	// history so outputs are regenerated after an upgrade.
	Version string `json:"-" yaml:"-" mapstructure:"-"`
}

// HistoryConfig holds settings for the conversion history database.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`
}

// PipelineConfig groups all configuration read from flags, environment, and
// the config file.
type PipelineConfig struct {
	Preamble   PreambleOptions  `json:"preamble" yaml:"preamble" mapstructure:",squash"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:",squash"`
	History    HistoryConfig    `json:"history" yaml:"history" mapstructure:",squash"`
}
