package entangled

import "strings"

// ParseQuartoInfo parses the quarto opener "{python}". Only the language is
// carried on the fence; the remaining options live in "#|" lines harvested
// from the block body.
func ParseQuartoInfo(info string) (*Properties, error) {
	inner, err := stripBraces(info)
	if err != nil {
		return nil, err
	}
	props := &Properties{}
	if lang := strings.TrimSpace(inner); lang != "" {
		props.Classes = append(props.Classes, lang)
	}
	return props, nil
}

// QuartoOptions are block options harvested from leading "#|" lines.
type QuartoOptions struct {
	Label string
	File  string
	Other []Attribute
	// Lines is the number of "#|" lines consumed.
	Lines int
}

// HarvestQuartoOptions pulls the leading "#| key: value" (or "key=value")
// lines out of a quarto block body. It returns the options and the body with
// those lines removed; "#|" lines after the first other line stay in the body.
func HarvestQuartoOptions(content string) (QuartoOptions, string) {
	var opts QuartoOptions
	var remaining []string

	header := true
	for _, line := range splitLines(content) {
		rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), "#|")
		if !header || !ok {
			header = false
			remaining = append(remaining, line)
			continue
		}
		opts.Lines++
		key, value, found := splitQuartoOption(strings.TrimSpace(rest))
		if !found {
			continue
		}
		switch key {
		case "label":
			opts.Label = value
		case "file":
			opts.File = value
		default:
			opts.Other = append(opts.Other, Attribute{Key: key, Value: value})
		}
	}

	if len(remaining) == 0 {
		return opts, ""
	}
	return opts, strings.Join(remaining, "\n") + "\n"
}

// splitQuartoOption accepts both the YAML form "key: value" and "key=value".
func splitQuartoOption(s string) (string, string, bool) {
	for _, sep := range []string{":", "="} {
		if key, value, found := strings.Cut(s, sep); found {
			key = strings.TrimSpace(key)
			if key != "" {
				return key, stripQuotes(strings.TrimSpace(value)), true
			}
		}
	}
	return "", "", false
}

// Properties converts harvested options plus the fence language into the
// normalized record.
func (o QuartoOptions) Properties(language string) *Properties {
	props := &Properties{}
	if language != "" {
		props.Classes = append(props.Classes, language)
	}
	props.ID = o.Label
	if o.File != "" {
		props.Attributes = append(props.Attributes, Attribute{Key: "file", Value: o.File})
	}
	props.Attributes = append(props.Attributes, o.Other...)
	return props
}
