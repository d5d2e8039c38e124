// Package pdp implements the PDP orchestrator: policy-store
// loading, concurrent top-level Target-matching fan-out, combining,
// obligation/advice collection, and Response assembly.
package pdp

import (
	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// AttributeAssignment is a realized obligation/advice attribute, with
// its expression already evaluated.
type AttributeAssignment struct {
	AttributeID string
	Category    string
	Issuer      string
	DataType    string
	Value       value.Value
}

type Obligation struct {
	ID          string
	Assignments []AttributeAssignment
}

type Advice struct {
	ID          string
	Assignments []AttributeAssignment
}

// Result is one <Result> element of a Response: a decision plus its
// status, obligations, advice, and (if requested) echoed attributes and
// the policy identifiers that contributed to it.
type Result struct {
	Decision           combine.Effect
	NotApplicable      bool
	Indeterminate      bool
	Flavor             value.Flavor
	Status             *value.Status
	Obligations        []Obligation
	Advice             []Advice
	PolicyIdentifiers  []string
	EchoedAttributes   []context.Attribute
}

// Response is the top-level PDP output: one Result per decision request
// (more than one only when the caller supplied multiple decision
// requests to combine, which this module always resolves to a single
// Result unless CombinedDecision handling requires otherwise).
type Response struct {
	Results []Result
}

// SyntaxErrorResponse builds the single-Result Response the loader (C7)
// must return in place of an Indeterminate PDP evaluation when the
// Request XML itself is malformed or names an unrecognized dataType:
// the contract is total, so a request that never reaches Evaluate still
// gets a well-formed XACML Response rather than a bare transport error.
func SyntaxErrorResponse(msg string) *Response {
	return &Response{Results: []Result{{
		Indeterminate: true,
		Flavor:        value.FlavorDP,
		Status:        &value.Status{Code: value.StatusSyntaxError, Message: msg},
	}}}
}
