package expr

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func newTestEnv() *Env {
	return NewEnv(nil, nil)
}

func boolLit(b bool) Node { return &literalNode{v: value.BooleanValue(b)} }

func indeterminateLit(msg string) Node { return &indeterminateNode{msg: msg} }

// indeterminateNode evaluates to a processing-error Indeterminate, used
// to exercise the and/or/n-of short-circuit paths.
type indeterminateNode struct{ msg string }

func (n *indeterminateNode) Eval(*Env) value.Result {
	return value.Indeterminate(value.StatusProcessingError, n.msg)
}
func (n *indeterminateNode) ReturnType() string { return value.TypeBoolean }
func (n *indeterminateNode) ReturnsBag() bool   { return false }

func apply(t *testing.T, id string, args ...Node) value.Result {
	t.Helper()
	fn, ok := Lookup(id)
	if !ok {
		t.Fatalf("function not registered: %s", id)
	}
	return fn.Eval(newTestEnv(), args)
}

func TestAndShortCircuitsOnFalseBeforeIndeterminate(t *testing.T) {
	r := apply(t, FuncAnd, boolLit(false), indeterminateLit("unreachable"))
	b, ok := r.AsBoolean()
	if !ok || b {
		t.Fatalf("expected determined false, got %+v", r)
	}
}

func TestAndIsIndeterminateWhenNoFalseFound(t *testing.T) {
	r := apply(t, FuncAnd, boolLit(true), indeterminateLit("x"))
	if !r.IsIndeterminate() {
		t.Fatalf("expected Indeterminate, got %+v", r)
	}
}

func TestOrShortCircuitsOnTrueBeforeIndeterminate(t *testing.T) {
	r := apply(t, FuncOr, boolLit(true), indeterminateLit("unreachable"))
	b, ok := r.AsBoolean()
	if !ok || !b {
		t.Fatalf("expected determined true, got %+v", r)
	}
}

func TestOrIsIndeterminateWhenNoTrueFound(t *testing.T) {
	r := apply(t, FuncOr, boolLit(false), indeterminateLit("x"))
	if !r.IsIndeterminate() {
		t.Fatalf("expected Indeterminate, got %+v", r)
	}
}

func TestNOfShortCircuitsOnceCountReached(t *testing.T) {
	two := &literalNode{v: value.NewInteger(2)}
	r := apply(t, FuncNOf, two, boolLit(true), boolLit(true), indeterminateLit("unreachable"))
	b, ok := r.AsBoolean()
	if !ok || !b {
		t.Fatalf("expected true once the count is reached, got %+v", r)
	}
}

func TestNOfIndeterminateWhenCountUnreachable(t *testing.T) {
	two := &literalNode{v: value.NewInteger(2)}
	r := apply(t, FuncNOf, two, boolLit(true), indeterminateLit("x"))
	if !r.IsIndeterminate() {
		t.Fatalf("expected Indeterminate since only one true was determined, got %+v", r)
	}
}

func TestNOfZeroIsAlwaysTrue(t *testing.T) {
	zero := &literalNode{v: value.NewInteger(0)}
	r := apply(t, FuncNOf, zero)
	b, ok := r.AsBoolean()
	if !ok || !b {
		t.Fatalf("n-of with count 0 must be true, got %+v", r)
	}
}

func TestNotNegatesBoolean(t *testing.T) {
	r := apply(t, FuncNot, boolLit(true))
	b, ok := r.AsBoolean()
	if !ok || b {
		t.Fatalf("expected false, got %+v", r)
	}
}
