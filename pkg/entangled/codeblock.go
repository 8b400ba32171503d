package entangled

import "strings"

// TextLocation pins a block to its markdown source.
type TextLocation struct {
	// Path of the markdown file (relative to the base directory).
	Path string
	// Line of the fence opener, 1-indexed, counting any YAML front matter.
	Line int
	// ContentLines is the number of raw body lines between the fences.
	ContentLines int
	// OptionLines counts leading "#|" option lines stripped from Source
	// (quarto documents only). Stitch patches start after them.
	OptionLines int
}

// Attribute is a key=value pair carried through from the fence info string.
type Attribute struct {
	Key   string
	Value string
}

// CodeBlock is one fenced block extracted from a markdown document. Blocks
// are read-only once inserted into a ReferenceMap.
type CodeBlock struct {
	// ID is assigned on insertion into a ReferenceMap.
	ID ReferenceID

	// Language is the fence language identifier, "" when absent.
	Language string

	// Classes are additional fence classes beyond the language.
	Classes []string

	// Target is the output path for file-target blocks, "" otherwise.
	Target string

	// Source is the body text: newline-terminated lines, no outer fence.
	Source string

	// Origin locates the block in its markdown document.
	Origin TextLocation

	// Attributes holds unrecognized key=value pairs, in order of appearance.
	Attributes []Attribute
}

// Name returns the block's reference name.
func (b *CodeBlock) Name() ReferenceName { return b.ID.Name }

// HasTarget reports whether this block composes an output file.
func (b *CodeBlock) HasTarget() bool { return b.Target != "" }

// Attribute returns the value for key, or "" when absent.
func (b *CodeBlock) Attribute(key string) string {
	for _, a := range b.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// LineCount returns the number of lines in the block source.
func (b *CodeBlock) LineCount() int {
	if b.Source == "" {
		return 0
	}
	return len(splitLines(b.Source))
}

// IsLeaf reports whether the body contains no reference macros.
func (b *CodeBlock) IsLeaf() bool {
	for _, line := range splitLines(b.Source) {
		if refPattern.MatchString(line) {
			return false
		}
	}
	return true
}

// splitLines splits text into lines without trailing newlines. A trailing
// newline does not produce an empty final element.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
