package entangled

import "strings"

// ParseKnitr parses the RMarkdown chunk header dialect:
//
//	{python, label=main, file=out.py, echo=FALSE}
//
// The first comma-separated item without "=" is the language; "label=x"
// becomes the block name; everything else is an attribute. A bare flag is
// treated as flag=true.
func ParseKnitr(info string) (*Properties, error) {
	inner, err := stripBraces(info)
	if err != nil {
		return nil, err
	}

	props := &Properties{}
	for i, part := range splitRespectingQuotes(inner, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i == 0 && !strings.Contains(part, "=") {
			props.Classes = append(props.Classes, part)
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			props.Attributes = append(props.Attributes, Attribute{Key: part, Value: "true"})
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if key == "label" {
			if props.ID != "" {
				return nil, NewPropertyError(info, "duplicate label "+value)
			}
			props.ID = value
			continue
		}
		props.Attributes = append(props.Attributes, Attribute{Key: key, Value: value})
	}
	return props, nil
}

// splitRespectingQuotes splits on sep outside of double-quoted regions.
func splitRespectingQuotes(s string, sep rune) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == sep && !inQuotes:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
