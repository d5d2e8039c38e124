package xmlio

import (
	"encoding/xml"
	"io"

	"github.com/echo-xacml/pdp/internal/xacml/pdp"
)

type responseXML struct {
	XMLName xml.Name     `xml:"urn:oasis:names:tc:xacml:3.0:core:schema:wd-17 Response"`
	Results []resultXML  `xml:"Result"`
}

type resultXML struct {
	Decision    string          `xml:"Decision"`
	Status      *statusXML      `xml:"Status,omitempty"`
	Obligations []obligationXML `xml:"Obligations>Obligation,omitempty"`
	Advice      []obligationXML `xml:"AssociatedAdvice>Advice,omitempty"`
	PolicyIdentifiers []string  `xml:"PolicyIdentifierList>PolicyIdReference,omitempty"`
}

type statusXML struct {
	Code    string `xml:"StatusCode>Value"`
	Message string `xml:"StatusMessage,omitempty"`
}

type obligationXML struct {
	ID          string             `xml:"ObligationId,attr"`
	Assignments []assignmentXML    `xml:"AttributeAssignment"`
}

type assignmentXML struct {
	AttributeID string `xml:"AttributeId,attr"`
	Category    string `xml:"Category,attr,omitempty"`
	Issuer      string `xml:"Issuer,attr,omitempty"`
	DataType    string `xml:"DataType,attr"`
	Value       string `xml:",chardata"`
}

// WriteResponse serializes a pdp.Response as an XACML 3.0 <Response> document.
func WriteResponse(w io.Writer, resp *pdp.Response) error {
	out := responseXML{}
	for _, r := range resp.Results {
		out.Results = append(out.Results, toResultXML(r))
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(out)
}

func toResultXML(r pdp.Result) resultXML {
	rx := resultXML{Decision: decisionString(r)}
	if r.Status != nil {
		rx.Status = &statusXML{Code: r.Status.Code, Message: r.Status.Message}
	}
	for _, o := range r.Obligations {
		rx.Obligations = append(rx.Obligations, toObligationXML(o.ID, o.Assignments))
	}
	for _, a := range r.Advice {
		rx.Advice = append(rx.Advice, toObligationXML(a.ID, a.Assignments))
	}
	rx.PolicyIdentifiers = r.PolicyIdentifiers
	return rx
}

func toObligationXML(id string, assignments []pdp.AttributeAssignment) obligationXML {
	ox := obligationXML{ID: id}
	for _, a := range assignments {
		ox.Assignments = append(ox.Assignments, assignmentXML{
			AttributeID: a.AttributeID, Category: a.Category, Issuer: a.Issuer,
			DataType: a.DataType, Value: a.Value.String(),
		})
	}
	return ox
}

func decisionString(r pdp.Result) string {
	switch {
	case r.NotApplicable:
		return "NotApplicable"
	case r.Indeterminate:
		switch r.Flavor.String() {
		case "D":
			return "Indeterminate{D}"
		case "P":
			return "Indeterminate{P}"
		case "DP":
			return "Indeterminate{DP}"
		default:
			return "Indeterminate"
		}
	default:
		return r.Decision.String()
	}
}
