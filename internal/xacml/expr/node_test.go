package expr

import (
	"testing"

	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func testRequest() *xacmlctx.Request {
	req := xacmlctx.NewRequest()
	req.AddAttribute(xacmlctx.Attribute{
		Category: xacmlctx.CategorySubject,
		ID:       "role",
		DataType: value.TypeString,
		Values:   value.NewBag(value.TypeString, value.StringValue("clinician")),
	})
	return req
}

func testEnv() *Env {
	now, _ := value.ParseDateTime("2026-01-01T00:00:00Z")
	ctx := xacmlctx.New(testRequest(), now.(value.DateTimeValue))
	return NewEnv(ctx, nil)
}

func TestDesignatorEvalReturnsBag(t *testing.T) {
	n := &DesignatorNode{Category: xacmlctx.CategorySubject, AttributeID: "role", DataType: value.TypeString}
	r := n.Eval(testEnv())
	bag, ok := r.Bag()
	if !ok || bag.Size() != 1 || !bag.Contains(value.StringValue("clinician")) {
		t.Fatalf("expected a singleton bag containing \"clinician\", got %+v", r)
	}
}

func TestDesignatorMissingWithoutMustBePresentIsEmptyBag(t *testing.T) {
	n := &DesignatorNode{Category: xacmlctx.CategorySubject, AttributeID: "nonexistent", DataType: value.TypeString}
	r := n.Eval(testEnv())
	bag, ok := r.Bag()
	if !ok || bag.Size() != 0 {
		t.Fatalf("expected an empty bag, got %+v", r)
	}
}

func TestDesignatorMissingWithMustBePresentIsIndeterminate(t *testing.T) {
	n := &DesignatorNode{Category: xacmlctx.CategorySubject, AttributeID: "nonexistent", DataType: value.TypeString, MustBePresent: true}
	r := n.Eval(testEnv())
	if !r.IsIndeterminate() {
		t.Fatalf("expected a missing-attribute Indeterminate, got %+v", r)
	}
	if r.Status().Code != value.StatusMissingAttribute {
		t.Fatalf("expected StatusMissingAttribute, got %+v", r.Status())
	}
}

func TestAttributeValueNodeRejectsBadLiteralAtConstruction(t *testing.T) {
	if _, err := NewAttributeValue(value.TypeInteger, "not-an-integer"); err == nil {
		t.Fatal("expected a construction-time error for an invalid literal")
	}
}

func TestVariableRefMemoizesAcrossEvaluations(t *testing.T) {
	calls := 0
	countingNode := &countingLiteral{calls: &calls, v: value.BooleanValue(true)}
	env := NewEnv(nil, map[string]Node{"v1": countingNode})

	ref := &VariableRefNode{VariableID: "v1", DataType: value.TypeBoolean}
	ref.Eval(env)
	ref.Eval(env)

	if calls != 1 {
		t.Fatalf("expected the variable definition to be evaluated once and cached, got %d calls", calls)
	}
}

func TestVariableRefUndefinedIsIndeterminate(t *testing.T) {
	env := NewEnv(nil, map[string]Node{})
	ref := &VariableRefNode{VariableID: "missing", DataType: value.TypeBoolean}
	r := ref.Eval(env)
	if !r.IsIndeterminate() {
		t.Fatalf("expected Indeterminate for an undefined variable reference, got %+v", r)
	}
}

type countingLiteral struct {
	calls *int
	v     value.Value
}

func (n *countingLiteral) Eval(*Env) value.Result {
	*n.calls++
	return value.ValueResult(n.v)
}
func (n *countingLiteral) ReturnType() string { return n.v.Type() }
func (n *countingLiteral) ReturnsBag() bool   { return false }
