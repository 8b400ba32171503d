package entangled

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// AnnotatedBlock is one marker-delimited frame recovered from a tangled
// file. Nested frames are separate entries; a frame's Source holds only its
// own literal lines, with the frame's indentation stripped, so it compares
// directly against the originating markdown block body.
type AnnotatedBlock struct {
	ID     ReferenceID
	Source string
	Indent string
	// StartLine / EndLine are the 1-indexed lines of the begin and end
	// markers.
	StartLine int
	EndLine   int
}

type annotatedFrame struct {
	id        ReferenceID
	indent    string
	startLine int
	lines     []string
}

// ReadAnnotated parses marker-bracketed tangled output into its frames.
// Marker problems degrade to warnings: a surplus end marker is literal
// content, an unclosed frame at EOF is discarded, and a file without markers
// yields no frames (supplemental mode relies on this).
func ReadAnnotated(ctx context.Context, input, path string) []AnnotatedBlock {
	lg := log.FromContext(ctx)
	var blocks []AnnotatedBlock
	var stack []*annotatedFrame

	for i, line := range splitLines(input) {
		lineNo := i + 1

		if m := beginPattern.FindStringSubmatch(line); m != nil {
			id, ok := ParseReferenceID(m[2])
			if !ok {
				lg.Warn("malformed reference in begin marker",
					"path", path, "line", lineNo, "ref", m[2])
				continue
			}
			stack = append(stack, &annotatedFrame{
				id:        id,
				indent:    m[1],
				startLine: lineNo,
			})
			continue
		}

		if endPattern.MatchString(line) {
			if len(stack) == 0 {
				lg.Warn("unmatched end marker treated as content",
					"path", path, "line", lineNo)
				continue
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			blocks = append(blocks, AnnotatedBlock{
				ID:        frame.id,
				Source:    joinBody(frame.lines),
				Indent:    frame.indent,
				StartLine: frame.startLine,
				EndLine:   lineNo,
			})
			continue
		}

		if len(stack) == 0 {
			continue
		}
		frame := stack[len(stack)-1]
		frame.lines = append(frame.lines, stripFrameIndent(lg, line, frame.indent, path, lineNo))
	}

	for _, frame := range stack {
		lg.Warn("unclosed block discarded",
			"path", path, "line", frame.startLine, "ref", frame.id.String())
	}

	return blocks
}

// stripFrameIndent removes the frame's indentation prefix from a body line.
// Blank lines pass through; a nonblank line missing the prefix is kept
// verbatim and flagged.
func stripFrameIndent(lg *slog.Logger, line, indent, path string, lineNo int) string {
	if indent == "" || line == "" {
		return line
	}
	if stripped, ok := strings.CutPrefix(line, indent); ok {
		return stripped
	}
	lg.Warn("line does not carry block indentation, kept verbatim",
		"path", path, "line", lineNo)
	return line
}

// LocateResult maps a tangled-file line back to its markdown origin.
type LocateResult struct {
	// Block is the frame containing the line; for a marker line, the frame
	// the marker opens or closes. Zero when the line is outside every frame.
	Block ReferenceID
	// HasBlock reports whether Block is set.
	HasBlock bool
	// Offset is the 0-based content-line offset within the block body. A
	// nested frame counts as the single reference line it expands.
	Offset int
	// Marker reports that the line is itself a begin or end marker.
	Marker bool
}

// LocateLine replays marker nesting over a tangled file and reports which
// block the given 1-indexed line belongs to.
func LocateLine(input string, target int) (LocateResult, bool) {
	type frame struct {
		id    ReferenceID
		count int
	}
	var stack []frame

	for i, line := range splitLines(input) {
		lineNo := i + 1

		if m := beginPattern.FindStringSubmatch(line); m != nil {
			id, ok := ParseReferenceID(m[2])
			if lineNo == target {
				return LocateResult{Marker: true, Block: id, HasBlock: ok}, true
			}
			if ok {
				// Ordinal 0 starts a new reference site in the parent body;
				// higher ordinals continue the same site.
				if id.Ordinal == 0 && len(stack) > 0 {
					stack[len(stack)-1].count++
				}
				stack = append(stack, frame{id: id})
			}
			continue
		}
		if endPattern.MatchString(line) {
			if lineNo == target {
				res := LocateResult{Marker: true}
				if len(stack) > 0 {
					res.Block = stack[len(stack)-1].id
					res.HasBlock = true
				}
				return res, true
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		if lineNo == target {
			if len(stack) == 0 {
				return LocateResult{}, true
			}
			top := stack[len(stack)-1]
			return LocateResult{Block: top.id, HasBlock: true, Offset: top.count}, true
		}
		if len(stack) > 0 {
			stack[len(stack)-1].count++
		}
	}
	return LocateResult{}, false
}
