package entangled

import (
	"context"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// DocumentMeta is the decoded YAML front matter of a markdown document. The
// core does not interpret it; it is exposed for callers.
type DocumentMeta map[string]any

// ParsedDocument is the result of scanning one markdown source.
type ParsedDocument struct {
	// Path of the source file, relative to the base directory.
	Path string
	// Blocks in document order. IDs are not assigned yet; insertion into a
	// ReferenceMap does that.
	Blocks []*CodeBlock
	// Meta is the front matter mapping, nil when absent.
	Meta DocumentMeta
	// FrontMatterLines counts the consumed front matter lines including both
	// "---" delimiters.
	FrontMatterLines int
}

var fenceOpenPattern = regexp.MustCompile("^([ \t]*)(`{3,}|~{3,})(.*)$")

// ParseMarkdown scans a markdown document and extracts its annotated code
// blocks. Line numbers in block origins are absolute within the file,
// counting front matter. Unbalanced fences at EOF produce a warning and drop
// the block; malformed fence properties are fatal.
func ParseMarkdown(ctx context.Context, input, path string, cfg *Config) (*ParsedDocument, error) {
	lg := log.FromContext(ctx)
	doc := &ParsedDocument{Path: path}

	lines := splitLines(input)
	offset := 0

	if meta, consumed, err := parseFrontMatter(lines, path); err != nil {
		return nil, err
	} else if consumed > 0 {
		doc.Meta = meta
		doc.FrontMatterLines = consumed
		offset = consumed
	}

	style := StyleForDocument(path, cfg.Style)

	for i := offset; i < len(lines); {
		m := fenceOpenPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		indent, fence, info := m[1], m[2], strings.TrimSpace(m[3])
		openerLine := i + 1 // 1-indexed

		body, next, closed := collectFence(lines, i+1, indent, fence)
		if !closed {
			lg.Warn("unterminated code fence, block dropped",
				"path", path, "line", openerLine)
			break
		}
		i = next

		block, err := buildBlock(body, info, path, openerLine, style, cfg)
		if err != nil {
			return nil, err
		}
		if block != nil {
			doc.Blocks = append(doc.Blocks, block)
		}
	}

	return doc, nil
}

// collectFence gathers body lines until a closing fence: the same character
// repeated at least as many times as the opener, with nothing else on the
// line. Opener indentation is stripped from body lines that carry it.
func collectFence(lines []string, start int, indent, fence string) (body []string, next int, closed bool) {
	char := fence[0]
	minLen := len(fence)

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if isFenceClose(line, char, minLen) {
			return body, i + 1, true
		}
		body = append(body, strings.TrimPrefix(line, indent))
	}
	return body, len(lines), false
}

func isFenceClose(line string, char byte, minLen int) bool {
	t := strings.TrimSpace(line)
	if len(t) < minLen {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != char {
			return false
		}
	}
	return true
}

// buildBlock turns a fenced region into a CodeBlock, or nil for prose
// examples (no name and no target).
func buildBlock(body []string, info, path string, openerLine int, style Style, cfg *Config) (*CodeBlock, error) {
	props, err := style.parseInfo(info)
	if err != nil {
		return nil, err
	}

	rawLines := len(body)
	source := joinBody(body)
	optionLines := 0

	if style == StyleQuarto {
		opts, remaining := HarvestQuartoOptions(source)
		merged := opts.Properties(props.Language())
		props = merged
		if cfg.StripQuartoOptions {
			source = remaining
			optionLines = opts.Lines
		}
	}

	target := props.File()
	if props.ID == "" && target == "" {
		return nil, nil
	}

	// A file target names the block: markers and the target index both use
	// the "file:PATH" form. Only targetless blocks go by their "#name", which
	// is what reference sites resolve against.
	var name ReferenceName
	if target != "" {
		name = FileTargetName(target)
	} else {
		name = ReferenceName(props.ID)
		if cfg.NamespaceDefault == NamespaceFile && path != "" {
			name = name.Qualify(path)
		}
	}

	block := &CodeBlock{
		ID:       ReferenceID{Name: name},
		Language: props.Language(),
		Target:   target,
		Source:   source,
		Origin: TextLocation{
			Path:         path,
			Line:         openerLine,
			ContentLines: rawLines,
			OptionLines:  optionLines,
		},
	}
	if len(props.Classes) > 1 {
		block.Classes = append(block.Classes, props.Classes[1:]...)
	}
	for _, a := range props.Attributes {
		if a.Key != "file" {
			block.Attributes = append(block.Attributes, a)
		}
	}
	return block, nil
}

func joinBody(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// parseFrontMatter consumes a leading "---" … "---" region. An opening
// delimiter without a closing one is a hard error.
func parseFrontMatter(lines []string, path string) (DocumentMeta, int, error) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, 0, nil
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			var meta DocumentMeta
			raw := strings.Join(lines[1:i], "\n")
			if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
				// Front matter the core cannot decode is still skipped; only
				// its boundaries matter for line accounting.
				meta = nil
			}
			return meta, i + 1, nil
		}
	}
	return nil, 0, &MarkdownError{Path: path, Line: 1, Msg: "unterminated front matter"}
}
