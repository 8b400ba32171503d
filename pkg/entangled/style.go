package entangled

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Style selects the code-fence info-string dialect for a document.
type Style string

const (
	// StyleNative is the default dialect: ```python #main file=out.py
	StyleNative Style = "entangled-rs"
	// StylePandoc is the braced dialect: ``` {.python #main file=out.py}
	StylePandoc Style = "pandoc"
	// StyleQuarto is ```{python} with "#|" option lines inside the body.
	StyleQuarto Style = "quarto"
	// StyleKnitr is the RMarkdown dialect: ```{python, label=main, …}
	StyleKnitr Style = "knitr"
)

// UnmarshalText lets the style be read straight from TOML.
func (s *Style) UnmarshalText(text []byte) error {
	switch v := Style(strings.ToLower(string(text))); v {
	case StyleNative, StylePandoc, StyleQuarto, StyleKnitr:
		*s = v
		return nil
	default:
		return fmt.Errorf("unknown style %q", string(text))
	}
}

// StyleForDocument picks the dialect for a document: the file extension wins
// (.qmd is always quarto, .Rmd always knitr), otherwise the configured
// default applies.
func StyleForDocument(path string, configured Style) Style {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".qmd":
		return StyleQuarto
	case ".rmd":
		return StyleKnitr
	}
	if configured == "" {
		return StyleNative
	}
	return configured
}

// parseInfo dispatches an info string to the dialect parser. Quarto documents
// also harvest options from the body; that happens in the markdown reader.
func (s Style) parseInfo(info string) (*Properties, error) {
	switch s {
	case StylePandoc:
		return ParsePandoc(info)
	case StyleKnitr:
		return ParseKnitr(info)
	case StyleQuarto:
		return ParseQuartoInfo(info)
	default:
		return ParseNative(info)
	}
}
