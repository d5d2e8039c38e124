package expr

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// evalSelectorPath implements a documented XPath subset that lets
// AttributeSelector work without a full XPath 2.0 engine: a sequence of
// "/elementName" steps, optionally ending in "/@attrName" to select an
// attribute instead of element text, and optionally ending in "/text()"
// (equivalent to ending on the element itself). Predicates are not
// supported; unsupported path syntax is a syntax error.
func evalSelectorPath(xmlFragment []byte, path string, dataType string) ([]value.Value, error) {
	steps, wantAttr, err := parseSelectorPath(path)
	if err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(xmlFragment))
	var stack []string
	var matches []value.Value

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if pathMatches(stack, steps) {
				if wantAttr != "" {
					for _, a := range t.Attr {
						if a.Name.Local == wantAttr {
							v, err := value.Parse(dataType, a.Value)
							if err == nil {
								matches = append(matches, v)
							}
						}
					}
				} else {
					text, terr := elementText(dec, t.Name)
					if terr == nil {
						v, err := value.Parse(dataType, text)
						if err == nil {
							matches = append(matches, v)
						}
					}
					stack = stack[:len(stack)-1]
				}
			}
		case xml.EndElement:
			if len(stack) > 0 && stack[len(stack)-1] == t.Name.Local {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return matches, nil
}

func parseSelectorPath(path string) (steps []string, attr string, err error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, "", fmt.Errorf("empty selector path")
	}
	p = strings.TrimPrefix(p, "/")
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "" {
			return nil, "", fmt.Errorf("unsupported selector path syntax: %q", path)
		}
		if part == "text()" && i == len(parts)-1 {
			continue
		}
		if strings.HasPrefix(part, "@") {
			if i != len(parts)-1 {
				return nil, "", fmt.Errorf("unsupported selector path syntax: %q", path)
			}
			attr = part[1:]
			continue
		}
		if strings.ContainsAny(part, "[]*") {
			return nil, "", fmt.Errorf("unsupported selector path syntax (predicates not supported): %q", path)
		}
		steps = append(steps, part)
	}
	if len(steps) == 0 {
		return nil, "", fmt.Errorf("unsupported selector path syntax: %q", path)
	}
	return steps, attr, nil
}

// pathMatches reports whether the current element stack ends with the
// requested step sequence (a suffix match, so "/a/b" matches ".../a/b").
func pathMatches(stack, steps []string) bool {
	if len(stack) < len(steps) {
		return false
	}
	offset := len(stack) - len(steps)
	for i, step := range steps {
		if stack[offset+i] != step {
			return false
		}
	}
	return true
}

func elementText(dec *xml.Decoder, name xml.Name) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return strings.TrimSpace(b.String()), nil
}
