package xmlio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// categoryShorthand maps the GET /getDecision query prefix a PEP uses
// (subject./resource./action./environment.) to the category URI C7's
// Request parser expects, so query-string callers never need to spell
// out the full XACML category URIs.
var categoryShorthand = map[string]string{
	"subject":     xacmlctx.CategorySubject,
	"resource":    xacmlctx.CategoryResource,
	"action":      xacmlctx.CategoryAction,
	"environment": xacmlctx.CategoryEnvironment,
}

type queryAttr struct {
	id     string
	values []string
}

// BuildRequestXML turns the GET /getDecision query string into a
// Request XML document, which is then handed to ParseRequest exactly
// as if a PEP had posted it directly: the query-string façade is a
// convenience wrapper around the same XML request contract, not a
// second parallel code path. "action" is a required top-level
// parameter (the action-id); every other key of the form
// "<category>.<attributeId>" becomes one Attribute in that category,
// with repeated query values becoming a multi-valued bag. A value's
// dataType is inferred: an RFC3339 literal becomes xs:dateTime, a bare
// integer becomes xs:integer, anything else stays xs:string — a PEP
// needing a different dataType (boolean, anyURI, ...) must post XML
// directly instead of using the query-string shorthand.
func BuildRequestXML(query url.Values) (string, error) {
	action := strings.TrimSpace(query.Get("action"))
	if action == "" {
		return "", fmt.Errorf("xmlio: query parameter \"action\" is required")
	}

	groups := map[string][]queryAttr{}
	addQueryAttr(groups, xacmlctx.CategoryAction, "action-id", []string{action})

	for key, values := range query {
		if key == "action" {
			continue
		}
		category, attrID, ok := splitQueryKey(key)
		if !ok {
			continue
		}
		addQueryAttr(groups, category, attrID, values)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<Request xmlns="urn:oasis:names:tc:xacml:3.0:core:schema:wd-17">` + "\n")
	for _, category := range []string{
		xacmlctx.CategorySubject, xacmlctx.CategoryResource,
		xacmlctx.CategoryAction, xacmlctx.CategoryEnvironment,
	} {
		attrs := groups[category]
		if len(attrs) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  <Attributes Category=%q>\n", category)
		for _, a := range attrs {
			fmt.Fprintf(&buf, "    <Attribute AttributeId=%q IncludeInResult=\"true\">\n", a.id)
			for _, v := range a.values {
				dataType := inferDataType(v)
				buf.WriteString(`      <AttributeValue DataType="` + dataType + `">`)
				if err := xml.EscapeText(&buf, []byte(v)); err != nil {
					return "", fmt.Errorf("xmlio: failed to encode query value %q: %w", v, err)
				}
				buf.WriteString("</AttributeValue>\n")
			}
			buf.WriteString("    </Attribute>\n")
		}
		buf.WriteString("  </Attributes>\n")
	}
	buf.WriteString("</Request>")
	return buf.String(), nil
}

func addQueryAttr(groups map[string][]queryAttr, category, id string, values []string) {
	for i, a := range groups[category] {
		if a.id == id {
			groups[category][i].values = append(groups[category][i].values, values...)
			return
		}
	}
	groups[category] = append(groups[category], queryAttr{id: id, values: values})
}

func splitQueryKey(key string) (category, attrID string, ok bool) {
	shorthand, rest, found := strings.Cut(key, ".")
	if !found || rest == "" {
		return "", "", false
	}
	category, ok = categoryShorthand[shorthand]
	return category, rest, ok
}

func inferDataType(literal string) string {
	if _, err := time.Parse(time.RFC3339, literal); err == nil {
		return value.TypeDateTime
	}
	if _, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return value.TypeInteger
	}
	return value.TypeString
}
