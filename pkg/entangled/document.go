package entangled

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// loadSources parses the given markdown files (all discovered sources when
// files is nil) into one reference map.
func (ec *Context) loadSources(ctx context.Context, files []string) (*ReferenceMap, error) {
	if files == nil {
		var err error
		files, err = ec.SourceFiles()
		if err != nil {
			return nil, err
		}
	}

	refs := NewReferenceMap()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(ec.ResolveSource(path))
		if err != nil {
			return nil, err
		}
		doc, err := ParseMarkdown(ctx, string(content), path, ec.Config)
		if err != nil {
			return nil, err
		}
		for _, block := range doc.Blocks {
			if _, err := refs.Insert(block); err != nil {
				return nil, err
			}
		}
	}
	return refs, nil
}

// annotationFor picks the marker parameters for a target from its first
// block's language. Unknown languages fall back to "#" line comments.
func (ec *Context) annotationFor(blocks []*CodeBlock) Annotation {
	if !ec.Config.Annotation.HasMarkers() {
		return NakedAnnotation()
	}
	comment := LineComment("#")
	if len(blocks) > 0 && blocks[0].Language != "" {
		if lang, ok := ec.Config.FindLanguage(blocks[0].Language); ok {
			comment = lang.Comment
		}
	}
	return StandardAnnotation(comment, ec.Config.Markers)
}

// applyPreTangle runs pre-tangle hooks over every block, producing a derived
// map when any hook rewrites a body. The session map itself stays untouched
// so stitching still compares against the authored sources.
func (ec *Context) applyPreTangle(refs *ReferenceMap) (*ReferenceMap, error) {
	if ec.Hooks.Len() == 0 {
		return refs, nil
	}
	derived := NewReferenceMap()
	for _, block := range refs.Blocks() {
		source, changed, err := ec.Hooks.RunPreTangle(block)
		if err != nil {
			return nil, err
		}
		clone := *block
		if changed {
			clone.Source = source
		}
		derived.InsertWithID(block.ID, &clone)
	}
	return derived, nil
}

// TangleFiles parses the given sources and produces the transaction that
// brings every target file up to date: Create for new files, Write for
// changed ones, nothing for unchanged ones.
func (ec *Context) TangleFiles(ctx context.Context, files []string) (*Transaction, error) {
	refs, err := ec.loadSources(ctx, files)
	if err != nil {
		return nil, err
	}
	return ec.tangleTargets(ctx, refs)
}

// TangleAll tangles every discovered source.
func (ec *Context) TangleAll(ctx context.Context) (*Transaction, error) {
	return ec.TangleFiles(ctx, nil)
}

func (ec *Context) tangleTargets(ctx context.Context, refs *ReferenceMap) (*Transaction, error) {
	lg := log.FromContext(ctx)
	tx := NewTransaction()

	expanded, err := ec.applyPreTangle(refs)
	if err != nil {
		return nil, err
	}

	for _, target := range refs.Targets() {
		name, _ := refs.TargetName(target)
		blocks := refs.BlocksByName(name)

		content, err := Tangle(expanded, name, ec.annotationFor(blocks))
		if err != nil {
			return nil, err
		}
		if len(blocks) > 0 {
			content, err = ec.Hooks.RunPostTangle(content, blocks[0])
			if err != nil {
				return nil, err
			}
		}

		path := ec.ResolveTarget(target)
		onDisk, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			tx.Create(path, content)
		case err != nil:
			return nil, err
		case string(onDisk) == content:
			lg.Debug("target unchanged", "path", target)
			// A stitched round trip can leave the recorded digest behind the
			// (already correct) on-disk content; refresh it so the next run
			// does not report a stale conflict.
			if data, ok := ec.DB.Get(path); ok && data.Hexdigest != Hexdigest(onDisk) {
				ec.DB.Record(path, FileDataFromContent(content, time.Now().UTC()))
			}
		default:
			tx.Write(path, content)
		}
	}
	return tx, nil
}

// blockPatch is one pending markdown edit: replace the origin lines of a
// block with new body lines.
type blockPatch struct {
	startLine int // first content line to replace, 1-indexed
	endLine   int // last content line to replace, inclusive
	body      string
}

// StitchFiles reads every tangled target back, compares leaf blocks against
// their markdown origins, and produces Write actions for markdown files
// whose blocks were edited.
func (ec *Context) StitchFiles(ctx context.Context, files []string) (*Transaction, error) {
	lg := log.FromContext(ctx)
	tx := NewTransaction()

	if !ec.Config.Annotation.HasMarkers() {
		lg.Debug("annotation disabled, nothing to stitch")
		return tx, nil
	}

	refs, err := ec.loadSources(ctx, files)
	if err != nil {
		return nil, err
	}

	patches := map[string][]blockPatch{}

	for _, target := range refs.Targets() {
		path := ec.ResolveTarget(target)
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, frame := range ReadAnnotated(ctx, string(content), target) {
			source := refs.Get(frame.ID)
			if source == nil {
				lg.Warn("orphaned marker, no matching block",
					"target", target, "ref", frame.ID.String())
				continue
			}
			// Only leaves carry authoritative edits; composed blocks differ
			// from their origins by construction.
			if !source.IsLeaf() {
				continue
			}
			// Pre-tangle hooks strip leading lines (shebang, SPDX) before the
			// body reaches the tangled file. Compare against the stripped
			// form and re-attach the stripped head on write-back so stitching
			// never erases it from the markdown.
			hooked, changed, err := ec.Hooks.RunPreTangle(source)
			if err != nil {
				return nil, err
			}
			authored := source.Source
			head := ""
			if changed {
				head = strings.TrimSuffix(source.Source, hooked)
				authored = hooked
			}
			if authored == frame.Source {
				continue
			}
			start := source.Origin.Line + 1 + source.Origin.OptionLines
			end := source.Origin.Line + source.Origin.ContentLines
			patches[source.Origin.Path] = append(patches[source.Origin.Path], blockPatch{
				startLine: start,
				endLine:   end,
				body:      head + frame.Source,
			})
		}
	}

	for _, path := range sortedKeys(patches) {
		edited, err := applyPatches(ec.ResolveSource(path), patches[path])
		if err != nil {
			return nil, err
		}
		tx.Write(ec.ResolveSource(path), edited)
	}
	return tx, nil
}

// StitchAll stitches every discovered source.
func (ec *Context) StitchAll(ctx context.Context) (*Transaction, error) {
	return ec.StitchFiles(ctx, nil)
}

// applyPatches splices new block bodies into a markdown file. Patches are
// applied bottom-up so earlier edits keep later line numbers valid.
func applyPatches(path string, patches []blockPatch) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	lines := splitLines(string(content))

	sortPatchesDescending(patches)
	for _, p := range patches {
		start := p.startLine - 1 // 0-indexed inclusive
		end := p.endLine         // 0-indexed exclusive
		if start < 0 || end > len(lines) || start > end {
			continue
		}
		replacement := splitLines(p.body)
		next := make([]string, 0, len(lines)-(end-start)+len(replacement))
		next = append(next, lines[:start]...)
		next = append(next, replacement...)
		next = append(next, lines[end:]...)
		lines = next
	}

	out := strings.Join(lines, "\n")
	if strings.HasSuffix(string(content), "\n") {
		out += "\n"
	}
	return out, nil
}

// Sync runs stitch, then tangle, each as its own atomic transaction. Direct
// edits to tangled files win over stale markdown, so stitch goes first.
func (ec *Context) Sync(ctx context.Context, force bool) error {
	stitchTx, err := ec.StitchAll(ctx)
	if err != nil {
		return err
	}
	if err := ec.ExecuteAndCommit(ctx, stitchTx, force); err != nil {
		return err
	}

	tangleTx, err := ec.TangleAll(ctx)
	if err != nil {
		return err
	}
	return ec.ExecuteAndCommit(ctx, tangleTx, force)
}

// SourcePosition is the markdown origin of a tangled-file line.
type SourcePosition struct {
	Path string
	Line int
	// Block is set for content lines; marker lines report only the opener.
	Block    ReferenceID
	HasBlock bool
}

// Locate maps (targetPath, line) in a tangled file back to the markdown
// position the line originates from. Marker lines map to the block's fence
// opener with no block id.
func (ec *Context) Locate(ctx context.Context, targetPath string, line int) (*SourcePosition, error) {
	content, err := os.ReadFile(ec.ResolveTarget(targetPath))
	if err != nil {
		return nil, err
	}

	res, found := LocateLine(string(content), line)
	if !found {
		return nil, nil
	}

	refs, err := ec.loadSources(ctx, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasBlock {
		return nil, nil
	}
	block := refs.Get(res.Block)
	if block == nil {
		return nil, nil
	}
	if res.Marker {
		return &SourcePosition{Path: block.Origin.Path, Line: block.Origin.Line}, nil
	}
	return &SourcePosition{
		Path:     block.Origin.Path,
		Line:     block.Origin.Line + 1 + block.Origin.OptionLines + res.Offset,
		Block:    res.Block,
		HasBlock: true,
	}, nil
}

// sortedKeys keeps patch application order deterministic across files.
func sortedKeys(m map[string][]blockPatch) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortPatchesDescending orders patches bottom-up by start line.
func sortPatchesDescending(patches []blockPatch) {
	sort.Slice(patches, func(i, j int) bool {
		return patches[i].startLine > patches[j].startLine
	})
}
