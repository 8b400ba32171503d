package entangled

import (
	"regexp"
	"strings"
)

var spdxPattern = regexp.MustCompile(`^\s*(?:#|//|--|;)\s*SPDX-License-Identifier:\s*(.+)$`)

// SPDXLicenseHook strips SPDX license identifier comments from the head of a
// block and reinjects them at the top of the tangled file.
type SPDXLicenseHook struct{}

func (SPDXLicenseHook) Name() string { return "spdx_license" }

// extractSPDX returns the leading SPDX lines and the remaining body. Blank
// lines before the first SPDX line are skipped; the header ends at the first
// line after it that is not an SPDX line, blank or not.
func extractSPDX(content string) ([]string, string) {
	lines := splitLines(content)
	var header []string
	skip := 0
	for _, line := range lines {
		if spdxPattern.MatchString(line) {
			header = append(header, line)
			skip++
			continue
		}
		if strings.TrimSpace(line) == "" && len(header) == 0 {
			skip++
			continue
		}
		break
	}
	if len(header) == 0 {
		return nil, content
	}
	return header, joinBody(lines[skip:])
}

func (SPDXLicenseHook) PreTangle(block *CodeBlock) (*PreTangleResult, error) {
	header, rest := extractSPDX(block.Source)
	if len(header) == 0 {
		return nil, nil
	}
	return &PreTangleResult{
		Source:   rest,
		Metadata: []Attribute{{Key: "spdx_header", Value: strings.Join(header, "\n")}},
	}, nil
}

func (SPDXLicenseHook) PostTangle(content string, block *CodeBlock) (*PostTangleResult, error) {
	header, _ := extractSPDX(block.Source)
	if len(header) == 0 || !block.HasTarget() {
		return nil, nil
	}
	return &PostTangleResult{Prefix: strings.Join(header, "\n"), Content: content}, nil
}

var _ Hook = SPDXLicenseHook{}
