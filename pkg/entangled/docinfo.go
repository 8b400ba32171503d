package entangled

import (
	"context"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	gm_ast "github.com/yuin/goldmark/ast"
	gm_text "github.com/yuin/goldmark/text"
)

// DocInfo is a summary of one markdown source, as shown by `entangled list`.
type DocInfo struct {
	Path string
	// Title is the first H1 heading, "" when the document has none.
	Title string
	// Blocks counts the named code blocks in the document.
	Blocks int
	// Targets are the output paths this document contributes to.
	Targets []string
}

// DescribeDocument parses one source for display purposes. The title comes
// from the markdown AST; the block inventory from the fence scanner.
func (ec *Context) DescribeDocument(ctx context.Context, path string) (*DocInfo, error) {
	content, err := os.ReadFile(ec.ResolveSource(path))
	if err != nil {
		return nil, err
	}

	doc, err := ParseMarkdown(ctx, string(content), path, ec.Config)
	if err != nil {
		return nil, err
	}

	info := &DocInfo{
		Path:   path,
		Title:  extractTitle(content),
		Blocks: len(doc.Blocks),
	}
	seen := map[string]struct{}{}
	for _, block := range doc.Blocks {
		if block.Target == "" {
			continue
		}
		if _, ok := seen[block.Target]; !ok {
			seen[block.Target] = struct{}{}
			info.Targets = append(info.Targets, block.Target)
		}
	}
	return info, nil
}

// extractTitle walks the goldmark AST for the first level-1 heading.
func extractTitle(source []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(gm_text.NewReader(source))

	var title string
	_ = gm_ast.Walk(root, func(n gm_ast.Node, entering bool) (gm_ast.WalkStatus, error) {
		if !entering {
			return gm_ast.WalkContinue, nil
		}
		if h, ok := n.(*gm_ast.Heading); ok && h.Level == 1 {
			var sb strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*gm_ast.Text); ok {
					sb.Write(t.Segment.Value(source))
				}
			}
			title = strings.TrimSpace(sb.String())
			return gm_ast.WalkStop, nil
		}
		return gm_ast.WalkContinue, nil
	})
	return title
}
