package entangled

import "regexp"

// annotationTag is the fixed token that makes marker lines recognizable
// across implementations. The full format is bit-exact:
//
//	<comment> ~/~ begin <<NAME[INDEX]>>
//	<comment> ~/~ end
const annotationTag = "~/~"

// Markers configures the tokens around the reference in begin/end markers.
// The defaults produce the canonical format above.
type Markers struct {
	Open  string `toml:"open"`
	Close string `toml:"close"`
	Begin string `toml:"begin"`
	End   string `toml:"end"`
}

// DefaultMarkers returns the canonical marker tokens.
func DefaultMarkers() Markers {
	return Markers{Open: "<<", Close: ">>", Begin: "begin", End: "end"}
}

// withDefaults fills zero fields so a partial [markers] table keeps the
// canonical tokens.
func (m Markers) withDefaults() Markers {
	d := DefaultMarkers()
	if m.Open == "" {
		m.Open = d.Open
	}
	if m.Close == "" {
		m.Close = d.Close
	}
	if m.Begin == "" {
		m.Begin = d.Begin
	}
	if m.End == "" {
		m.End = d.End
	}
	return m
}

// BeginMarker renders a begin line for ref in the given comment style,
// without indentation.
func (m Markers) BeginMarker(c Comment, ref string) string {
	return c.Wrap(annotationTag + " " + m.Begin + " " + m.Open + ref + m.Close)
}

// EndMarker renders an end line in the given comment style, without
// indentation.
func (m Markers) EndMarker(c Comment) string {
	return c.Wrap(annotationTag + " " + m.End)
}

// refPattern matches a reference macro occupying a whole line: optional
// indent, "<<name>>", optional trailing whitespace. Any other occurrence of
// the macro form is literal text. Names may carry "::" namespaces, "#"
// legacy namespaces, or "file:path" targets.
var refPattern = regexp.MustCompile(`^([ \t]*)<<([\w:/.#+-]+)>>[ \t]*$`)

// matchReference returns (indent, name, true) when line is a reference site.
func matchReference(line string) (string, ReferenceName, bool) {
	m := refPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], ReferenceName(m[2]), true
}

// beginPattern and endPattern recognize marker lines when reading annotated
// output. The comment prefix is any non-space token; block-comment closers
// after the reference are tolerated.
var (
	beginPattern = regexp.MustCompile(`^([ \t]*)\S+\s+~/~\s+begin\s+<<([^>]+)>>`)
	endPattern   = regexp.MustCompile(`^[ \t]*\S+\s+~/~\s+end(\s+\S+)?\s*$`)
)
