package entangled

import "strings"

// ShebangHook strips a leading "#!" line from a block before tangling and
// prepends it to the final file text when the block heads a target.
type ShebangHook struct{}

func (ShebangHook) Name() string { return "shebang" }

// extractShebang splits content into its shebang line and the remainder.
// Leading blank lines before the shebang are tolerated.
func extractShebang(content string) (string, string, bool) {
	lines := splitLines(content)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#!") {
			return line, joinBody(lines[i+1:]), true
		}
		return "", "", false
	}
	return "", "", false
}

func (ShebangHook) PreTangle(block *CodeBlock) (*PreTangleResult, error) {
	shebang, rest, ok := extractShebang(block.Source)
	if !ok {
		return nil, nil
	}
	return &PreTangleResult{
		Source:   rest,
		Metadata: []Attribute{{Key: "shebang", Value: shebang}},
	}, nil
}

func (ShebangHook) PostTangle(content string, block *CodeBlock) (*PostTangleResult, error) {
	shebang, _, ok := extractShebang(block.Source)
	if !ok || !block.HasTarget() {
		return nil, nil
	}
	return &PostTangleResult{Prefix: shebang, Content: content}, nil
}

var _ Hook = ShebangHook{}
