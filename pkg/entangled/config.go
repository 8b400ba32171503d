package entangled

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// configFileNames are searched, in order, from the base directory upward.
var configFileNames = []string{"entangled.toml", ".entangled.toml"}

// AnnotationMethod selects how tangled output is annotated.
type AnnotationMethod string

const (
	// AnnotationStandard emits begin/end markers.
	AnnotationStandard AnnotationMethod = "standard"
	// AnnotationNaked emits no markers; stitching is unavailable.
	AnnotationNaked AnnotationMethod = "naked"
	// AnnotationSupplemental emits markers but treats them as advisory when
	// reading back.
	AnnotationSupplemental AnnotationMethod = "supplemental"
)

func (a *AnnotationMethod) UnmarshalText(text []byte) error {
	switch v := AnnotationMethod(strings.ToLower(string(text))); v {
	case AnnotationStandard, AnnotationNaked, AnnotationSupplemental:
		*a = v
		return nil
	default:
		return fmt.Errorf("unknown annotation method %q", string(text))
	}
}

// HasMarkers reports whether this method emits markers.
func (a AnnotationMethod) HasMarkers() bool { return a != AnnotationNaked }

// NamespaceDefault controls whether bare block names are qualified with
// their source path at insertion.
type NamespaceDefault string

const (
	// NamespaceFile qualifies bare names with the source path.
	NamespaceFile NamespaceDefault = "file"
	// NamespaceNone leaves bare names global.
	NamespaceNone NamespaceDefault = "none"
)

func (n *NamespaceDefault) UnmarshalText(text []byte) error {
	// "private" and "global" are accepted for compatibility with older
	// configurations.
	switch strings.ToLower(string(text)) {
	case "file", "private":
		*n = NamespaceFile
		return nil
	case "none", "global":
		*n = NamespaceNone
		return nil
	default:
		return fmt.Errorf("unknown namespace_default %q", string(text))
	}
}

// LanguageConfig is one [[languages]] entry extending the built-in table.
// Comment is the line-comment prefix, or the block-comment opener when
// CommentClose is also set.
type LanguageConfig struct {
	Name         string   `toml:"name"`
	Identifiers  []string `toml:"identifiers"`
	Comment      string   `toml:"comment"`
	CommentClose string   `toml:"comment_close"`
}

// WatchConfig is advisory for the watcher collaborator; the core does not
// consume it.
type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// HooksConfig enables the built-in content hooks.
type HooksConfig struct {
	Shebang     bool `toml:"shebang"`
	SPDXLicense bool `toml:"spdx_license"`
}

// Config is the decoded entangled.toml.
type Config struct {
	Version            string           `toml:"version"`
	SourcePatterns     []string         `toml:"source_patterns"`
	OutputDir          string           `toml:"output_dir"`
	Style              Style            `toml:"style"`
	StripQuartoOptions bool             `toml:"strip_quarto_options"`
	Annotation         AnnotationMethod `toml:"annotation"`
	NamespaceDefault   NamespaceDefault `toml:"namespace_default"`
	FileDBPath         string           `toml:"filedb_path"`
	Markers            Markers          `toml:"markers"`
	Watch              WatchConfig      `toml:"watch"`
	Hooks              HooksConfig      `toml:"hooks"`
	Languages          []LanguageConfig `toml:"languages"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Version:            "2.0",
		SourcePatterns:     []string{"**/*.md", "**/*.qmd", "**/*.Rmd"},
		Style:              StyleNative,
		StripQuartoOptions: true,
		Annotation:         AnnotationStandard,
		NamespaceDefault:   NamespaceNone,
		FileDBPath:         filepath.Join(".entangled", "filedb.json"),
		Markers:            DefaultMarkers(),
		Watch:              WatchConfig{DebounceMs: 100},
	}
}

// FindLanguage resolves a fence language identifier to its comment style,
// checking configured languages before the built-in table.
func (c *Config) FindLanguage(identifier string) (Language, bool) {
	for _, lc := range c.Languages {
		l := Language{Name: lc.Name, Identifiers: lc.Identifiers}
		if lc.CommentClose != "" {
			l.Comment = BlockComment(lc.Comment, lc.CommentClose)
		} else {
			l.Comment = LineComment(lc.Comment)
		}
		if l.Matches(identifier) {
			return l, true
		}
	}
	return FindBuiltinLanguage(identifier)
}

// FindConfigFile searches startDir and its parents for a configuration file.
func FindConfigFile(startDir string) (string, bool) {
	dir := startDir
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ReadConfigFile decodes one TOML file over the defaults. Unknown keys are
// logged as warnings, never fatal.
func ReadConfigFile(ctx context.Context, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Msg: "cannot read", Err: err}
	}
	cfg := DefaultConfig()

	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			log.FromContext(ctx).Warn("ignoring unknown config keys",
				"path", path, "detail", strict.String())
			cfg = DefaultConfig()
			if err := toml.Unmarshal(content, cfg); err != nil {
				return nil, &ConfigError{Path: path, Msg: "cannot parse", Err: err}
			}
		} else {
			return nil, &ConfigError{Path: path, Msg: "cannot parse", Err: err}
		}
	}

	cfg.Markers = cfg.Markers.withDefaults()
	return cfg, nil
}

// ReadConfig searches from startDir upward and decodes the first
// configuration file found, or returns the defaults.
func ReadConfig(ctx context.Context, startDir string) (*Config, error) {
	path, ok := FindConfigFile(startDir)
	if !ok {
		return DefaultConfig(), nil
	}
	return ReadConfigFile(ctx, path)
}
