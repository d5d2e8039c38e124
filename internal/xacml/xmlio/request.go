// Package xmlio implements the XACML 3.0 Request/Response/Policy XML
// readers and writers. Parsing is hand-rolled over encoding/xml's
// token stream rather than struct-tag unmarshaling because the Policy
// expression tree (Apply/Condition/VariableDefinition) is polymorphic in
// a way tags cannot express.
package xmlio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// ParseRequest decodes an XACML 3.0 <Request> document. A malformed
// document or a reference to an unknown dataType is returned as an
// error: the caller (the PDP's HTTP façade) is responsible for turning
// that into an Indeterminate(syntax-error) Response rather than a panic.
func ParseRequest(r io.Reader) (*xacmlctx.Request, error) {
	dec := xml.NewDecoder(r)
	req := xacmlctx.NewRequest()

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlio: malformed Request XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "Request":
			req.ReturnPolicyIdList = attrBool(start, "ReturnPolicyIdList")
			req.CombinedDecision = attrBool(start, "CombinedDecision")
		case "Attributes":
			category := attrString(start, "Category")
			if category == "" {
				return nil, fmt.Errorf("xmlio: <Attributes> missing Category")
			}
			if err := parseAttributesBody(dec, category, req); err != nil {
				return nil, err
			}
		}
	}
	return req, nil
}

func parseAttributesBody(dec *xml.Decoder, category string, req *xacmlctx.Request) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("xmlio: malformed <Attributes> body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Attribute":
				if err := parseAttribute(dec, t, category, req); err != nil {
					return err
				}
			case "Content":
				raw, err := captureInnerXML(dec, t.Name)
				if err != nil {
					return fmt.Errorf("xmlio: malformed <Content>: %w", err)
				}
				req.Content[category] = &xacmlctx.ContentFragment{Category: category, XML: raw}
			}
		case xml.EndElement:
			if t.Name.Local == "Attributes" {
				return nil
			}
		}
	}
}

func parseAttribute(dec *xml.Decoder, start xml.StartElement, category string, req *xacmlctx.Request) error {
	id := attrString(start, "AttributeId")
	issuer := attrString(start, "Issuer")
	includeInResult := attrBool(start, "IncludeInResult")
	if id == "" {
		return fmt.Errorf("xmlio: <Attribute> missing AttributeId")
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("xmlio: malformed <Attribute> body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "AttributeValue" {
				if err := skipElement(dec, t.Name); err != nil {
					return err
				}
				continue
			}
			dataType := attrString(t, "DataType")
			if dataType == "" {
				return fmt.Errorf("xmlio: <AttributeValue> missing DataType")
			}
			text, err := elementCharData(dec, t.Name)
			if err != nil {
				return fmt.Errorf("xmlio: malformed <AttributeValue>: %w", err)
			}
			v, err := value.Parse(dataType, text)
			if err != nil {
				return fmt.Errorf("xmlio: AttributeValue %q as %s: %w", text, dataType, err)
			}
			req.AddAttribute(xacmlctx.Attribute{
				Category: category, ID: id, DataType: dataType, Issuer: issuer,
				Values: value.NewBag(dataType, v), IncludeInResult: includeInResult,
			})
		case xml.EndElement:
			if t.Name.Local == "Attribute" {
				return nil
			}
		}
	}
}

// skipElement consumes start and everything up to and including its
// matching end tag, for elements the reader doesn't otherwise model
// (forward-compatibility with unknown child elements).
func skipElement(dec *xml.Decoder, name xml.Name) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func elementCharData(dec *xml.Decoder, name xml.Name) (string, error) {
	var b bytes.Buffer
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
	return b.String(), nil
}

// captureInnerXML re-serializes everything between start's open tag and
// its matching close tag, preserving it verbatim for AttributeSelector.
func captureInnerXML(dec *xml.Decoder, name xml.Name) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			depth--
			if depth > 0 {
				if err := enc.EncodeToken(t); err != nil {
					return nil, err
				}
			}
		default:
			if err := enc.EncodeToken(tok); err != nil {
				return nil, err
			}
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attrString(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func attrBool(start xml.StartElement, local string) bool {
	return attrString(start, local) == "true" || attrString(start, local) == "1"
}
