package entangled

import "strings"

// Annotation carries the marker parameters for one tangle run. A nil Comment
// means naked output (no markers).
type Annotation struct {
	Comment *Comment
	Markers Markers
}

// NakedAnnotation tangles without markers.
func NakedAnnotation() Annotation { return Annotation{} }

// StandardAnnotation tangles with begin/end markers in the given comment
// style.
func StandardAnnotation(c Comment, m Markers) Annotation {
	return Annotation{Comment: &c, Markers: m.withDefaults()}
}

func (a Annotation) annotated() bool { return a.Comment != nil }

// cycleStack tracks the active expansion path. Membership is O(1); the stack
// order is kept for error reporting.
type cycleStack struct {
	stack []ReferenceName
	seen  map[ReferenceName]struct{}
}

func newCycleStack() *cycleStack {
	return &cycleStack{seen: map[ReferenceName]struct{}{}}
}

func (c *cycleStack) enter(name ReferenceName) error {
	if _, ok := c.seen[name]; ok {
		cycle := append(append([]ReferenceName(nil), c.stack...), name)
		return NewCycleError(cycle)
	}
	c.seen[name] = struct{}{}
	c.stack = append(c.stack, name)
	return nil
}

func (c *cycleStack) exit() {
	if n := len(c.stack); n > 0 {
		delete(c.seen, c.stack[n-1])
		c.stack = c.stack[:n-1]
	}
}

// Tangle expands the blocks of name into the full text of a target file.
// Every line is newline-terminated. References are expanded recursively;
// the indent captured at each reference site is prepended to every nonempty
// line of the nested expansion.
func Tangle(refs *ReferenceMap, name ReferenceName, ann Annotation) (string, error) {
	var sb strings.Builder
	if err := tangleName(refs, name, "", ann, newCycleStack(), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func tangleName(refs *ReferenceMap, name ReferenceName, indent string, ann Annotation, cy *cycleStack, out *strings.Builder) error {
	if err := cy.enter(name); err != nil {
		return err
	}
	defer cy.exit()

	ids := refs.ByName(name)
	if len(ids) == 0 {
		return NewUndefinedReferenceError(name)
	}

	for _, id := range ids {
		block := refs.Get(id)
		if ann.annotated() {
			emitLine(out, indent, ann.Markers.BeginMarker(*ann.Comment, id.String()))
		}
		if err := tangleBody(refs, block, indent, ann, cy, out); err != nil {
			return err
		}
		if ann.annotated() {
			emitLine(out, indent, ann.Markers.EndMarker(*ann.Comment))
		}
	}
	return nil
}

func tangleBody(refs *ReferenceMap, block *CodeBlock, indent string, ann Annotation, cy *cycleStack, out *strings.Builder) error {
	for _, line := range splitLines(block.Source) {
		refIndent, refName, ok := matchReference(line)
		if !ok {
			emitLine(out, indent, line)
			continue
		}
		target := resolveReference(refs, refName, block.Name())
		if err := tangleName(refs, target, indent+refIndent, ann, cy, out); err != nil {
			return err
		}
	}
	return nil
}

// resolveReference maps a reference site to a defined name. A bare name is
// tried as written; when the referring block lives in a namespace and the
// bare name is undefined, the same namespace is tried. Undefined names pass
// through so the expansion reports them.
func resolveReference(refs *ReferenceMap, ref, from ReferenceName) ReferenceName {
	if refs.ContainsName(ref) {
		return ref
	}
	if ns := from.Namespace(); ns != "" {
		if qualified := ref.Qualify(ns); refs.ContainsName(qualified) {
			return qualified
		}
	}
	return ref
}

// emitLine writes indent+line+"\n", skipping the indent on blank lines so the
// output carries no trailing whitespace.
func emitLine(out *strings.Builder, indent, line string) {
	if line != "" {
		out.WriteString(indent)
		out.WriteString(line)
	}
	out.WriteByte('\n')
}
