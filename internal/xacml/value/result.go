package value

import "fmt"

// Status codes, per the XACML 3.0 core namespace.
const (
	StatusOK                = "urn:oasis:names:tc:xacml:1.0:status:ok"
	StatusMissingAttribute  = "urn:oasis:names:tc:xacml:1.0:status:missing-attribute"
	StatusSyntaxError       = "urn:oasis:names:tc:xacml:1.0:status:syntax-error"
	StatusProcessingError   = "urn:oasis:names:tc:xacml:1.0:status:processing-error"
)

// MissingAttributeDetail describes one attribute the evaluator needed but
// could not find.
type MissingAttributeDetail struct {
	Category  string
	AttributeID string
	DataType  string
	Issuer    string
}

// Status carries a status code plus optional message and missing-attribute
// detail, attached to Indeterminate results.
type Status struct {
	Code    string
	Message string
	Detail  []MissingAttributeDetail
}

func (s *Status) Error() string {
	if s == nil {
		return ""
	}
	if s.Message != "" {
		return fmt.Sprintf("%s: %s", s.Code, s.Message)
	}
	return s.Code
}

// Flavor records which of {Permit, Deny} a rule/policy producing an
// Indeterminate result could still have yielded, so a combining
// algorithm can tell an Indeterminate that might still resolve to Deny
// apart from one that might still resolve to Permit, or both.
type Flavor int

const (
	FlavorNone Flavor = iota
	FlavorD
	FlavorP
	FlavorDP
)

func (f Flavor) String() string {
	switch f {
	case FlavorD:
		return "D"
	case FlavorP:
		return "P"
	case FlavorDP:
		return "DP"
	default:
		return ""
	}
}

// Result is the tagged union every expression evaluates to: either a Value
// (scalar), a Bag, or an Indeterminate carrying a Status. Indeterminate is
// absorbing unless a short-circuit function or combining algorithm defines
// otherwise.
type Result struct {
	scalar        Value
	bag           *Bag
	indeterminate *Status
}

func ValueResult(v Value) Result { return Result{scalar: v} }
func BagResult(b *Bag) Result    { return Result{bag: b} }

func Indeterminate(code, message string) Result {
	return Result{indeterminate: &Status{Code: code, Message: message}}
}

func IndeterminateMissing(category, id, dataType, issuer string) Result {
	return Result{indeterminate: &Status{
		Code:    StatusMissingAttribute,
		Message: fmt.Sprintf("missing attribute %s in category %s", id, category),
		Detail: []MissingAttributeDetail{{
			Category: category, AttributeID: id, DataType: dataType, Issuer: issuer,
		}},
	}}
}

// IndeterminateFromStatus rewraps a Status already carried by another
// Result, used when a function propagates an argument's Indeterminate
// verbatim instead of minting a new one.
func IndeterminateFromStatus(s *Status) Result { return Result{indeterminate: s} }

func (r Result) IsIndeterminate() bool { return r.indeterminate != nil }
func (r Result) IsBag() bool           { return !r.IsIndeterminate() && r.bag != nil }
func (r Result) Status() *Status       { return r.indeterminate }

// Scalar returns the scalar value and true, or nil/false if this result is
// a bag or Indeterminate.
func (r Result) Scalar() (Value, bool) {
	if r.IsIndeterminate() || r.scalar == nil {
		return nil, false
	}
	return r.scalar, true
}

// Bag returns the bag and true, or nil/false if this result is a scalar or
// Indeterminate.
func (r Result) Bag() (*Bag, bool) {
	if r.IsIndeterminate() || r.bag == nil {
		return nil, false
	}
	return r.bag, true
}

// AsBoolean extracts a scalar BooleanValue, or reports ok=false.
func (r Result) AsBoolean() (bool, bool) {
	v, ok := r.Scalar()
	if !ok {
		return false, false
	}
	b, ok := v.(BooleanValue)
	return bool(b), ok
}
