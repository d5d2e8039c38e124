// Package policy implements the XACML 3.0 policy tree: Target/Match
// applicability, Rule/Policy/PolicySet, obligations and advice, and the
// lazy policy-reference resolution used to avoid cyclic ownership between
// PolicySets.
package policy

import (
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// Match compares one AttributeDesignator/Selector-derived bag against a
// literal AttributeValue using a named match function (e.g.
// string-equal, anyURI-regexp-match).
type Match struct {
	MatchFunction *expr.Function
	AttributeVal  *expr.AttributeValueNode
	Designator    expr.Node // *expr.DesignatorNode or *expr.SelectorNode
	Category      string
}

// Eval reports whether any value in the designator's bag satisfies the
// match function against the literal: a Match is true iff the function
// is true for at least one element.
func (m *Match) Eval(env *expr.Env) value.Result {
	bagResult := m.Designator.Eval(env)
	if bagResult.IsIndeterminate() {
		return bagResult
	}
	bag, ok := bagResult.Bag()
	if !ok {
		return value.Indeterminate(value.StatusProcessingError, "match designator did not evaluate to a bag")
	}
	if bag.Size() == 0 {
		return value.ValueResult(value.BooleanValue(false))
	}
	sawIndeterminate := false
	for _, v := range bag.Values {
		r := m.MatchFunction.Eval(env, []expr.Node{m.AttributeVal, &literalNode{v: v}})
		if r.IsIndeterminate() {
			sawIndeterminate = true
			continue
		}
		b, ok := r.AsBoolean()
		if ok && b {
			return value.ValueResult(value.BooleanValue(true))
		}
	}
	if sawIndeterminate {
		return value.Indeterminate(value.StatusProcessingError, "match evaluation was Indeterminate for at least one bag element")
	}
	return value.ValueResult(value.BooleanValue(false))
}

type literalNode struct{ v value.Value }

func (n *literalNode) Eval(*expr.Env) value.Result { return value.ValueResult(n.v) }
func (n *literalNode) ReturnType() string          { return n.v.Type() }
func (n *literalNode) ReturnsBag() bool            { return false }

// AllOf is a conjunction of Match elements: true iff every Match is true.
type AllOf struct {
	Matches []*Match
}

func (a *AllOf) Eval(env *expr.Env) value.Result {
	sawIndeterminate := false
	for _, m := range a.Matches {
		r := m.Eval(env)
		if r.IsIndeterminate() {
			sawIndeterminate = true
			continue
		}
		b, _ := r.AsBoolean()
		if !b {
			return value.ValueResult(value.BooleanValue(false))
		}
	}
	if sawIndeterminate {
		return value.Indeterminate(value.StatusProcessingError, "AllOf: a Match was Indeterminate and no determining false was found")
	}
	return value.ValueResult(value.BooleanValue(true))
}

// AnyOf is a disjunction of AllOf elements: true iff any AllOf is true.
type AnyOf struct {
	AllOfs []*AllOf
}

func (a *AnyOf) Eval(env *expr.Env) value.Result {
	sawIndeterminate := false
	for _, ao := range a.AllOfs {
		r := ao.Eval(env)
		if r.IsIndeterminate() {
			sawIndeterminate = true
			continue
		}
		b, _ := r.AsBoolean()
		if b {
			return value.ValueResult(value.BooleanValue(true))
		}
	}
	if sawIndeterminate {
		return value.Indeterminate(value.StatusProcessingError, "AnyOf: an AllOf was Indeterminate and no determining true was found")
	}
	return value.ValueResult(value.BooleanValue(false))
}

// Target is a conjunction of AnyOf elements. An empty Target always
// matches (the XACML "applies to everything" convention).
type Target struct {
	AnyOfs []*AnyOf
}

// Eval returns Match (true), NoMatch (false), or Indeterminate.
func (t *Target) Eval(env *expr.Env) value.Result {
	if len(t.AnyOfs) == 0 {
		return value.ValueResult(value.BooleanValue(true))
	}
	sawIndeterminate := false
	for _, ao := range t.AnyOfs {
		r := ao.Eval(env)
		if r.IsIndeterminate() {
			sawIndeterminate = true
			continue
		}
		b, _ := r.AsBoolean()
		if !b {
			return value.ValueResult(value.BooleanValue(false))
		}
	}
	if sawIndeterminate {
		return value.Indeterminate(value.StatusProcessingError, "Target: an AnyOf was Indeterminate and no determining false was found")
	}
	return value.ValueResult(value.BooleanValue(true))
}
