package policy

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func strValNode(t *testing.T, s string) *expr.AttributeValueNode {
	t.Helper()
	n, err := expr.NewAttributeValue(value.TypeString, s)
	if err != nil {
		t.Fatalf("NewAttributeValue: %v", err)
	}
	return n
}

func stringEqualFunc(t *testing.T) *expr.Function {
	t.Helper()
	fn, ok := expr.Lookup(expr.FuncStringEqual)
	if !ok {
		t.Fatal("string-equal not registered")
	}
	return fn
}

type bagLiteral struct{ b *value.Bag }

func (n *bagLiteral) Eval(*expr.Env) value.Result { return value.BagResult(n.b) }
func (n *bagLiteral) ReturnType() string          { return n.b.DataType }
func (n *bagLiteral) ReturnsBag() bool            { return true }

type indeterminateBagLiteral struct{}

func (n *indeterminateBagLiteral) Eval(*expr.Env) value.Result {
	return value.Indeterminate(value.StatusMissingAttribute, "missing")
}
func (n *indeterminateBagLiteral) ReturnType() string { return value.TypeString }
func (n *indeterminateBagLiteral) ReturnsBag() bool   { return true }

func matchOn(t *testing.T, designator expr.Node, literal string) *Match {
	return &Match{
		MatchFunction: stringEqualFunc(t),
		AttributeVal:  strValNode(t, literal),
		Designator:    designator,
	}
}

func TestMatchTrueIfAnyBagElementSatisfies(t *testing.T) {
	bag := &bagLiteral{b: value.NewBag(value.TypeString, value.StringValue("a"), value.StringValue("b"))}
	m := matchOn(t, bag, "b")
	r := m.Eval(nil)
	if ok, _ := r.AsBoolean(); !ok {
		t.Fatalf("expected Match true, got %+v", r)
	}
}

func TestMatchFalseOnEmptyBag(t *testing.T) {
	bag := &bagLiteral{b: value.NewBag(value.TypeString)}
	m := matchOn(t, bag, "b")
	r := m.Eval(nil)
	if ok, _ := r.AsBoolean(); ok {
		t.Fatalf("expected Match false on an empty bag, got %+v", r)
	}
}

func TestMatchPropagatesDesignatorIndeterminate(t *testing.T) {
	m := matchOn(t, &indeterminateBagLiteral{}, "b")
	r := m.Eval(nil)
	if !r.IsIndeterminate() {
		t.Fatalf("expected Indeterminate, got %+v", r)
	}
}

func TestTargetEmptyAlwaysMatches(t *testing.T) {
	target := &Target{}
	r := target.Eval(nil)
	if ok, _ := r.AsBoolean(); !ok {
		t.Fatalf("expected an empty Target to always match, got %+v", r)
	}
}

func TestTargetIsConjunctionOfAnyOfs(t *testing.T) {
	trueBag := &bagLiteral{b: value.NewBag(value.TypeString, value.StringValue("a"))}
	anyOfTrue := &AnyOf{AllOfs: []*AllOf{{Matches: []*Match{matchOn(t, trueBag, "a")}}}}
	anyOfFalse := &AnyOf{AllOfs: []*AllOf{{Matches: []*Match{matchOn(t, trueBag, "z")}}}}

	target := &Target{AnyOfs: []*AnyOf{anyOfTrue, anyOfFalse}}
	r := target.Eval(nil)
	if ok, _ := r.AsBoolean(); ok {
		t.Fatalf("expected Target to require every AnyOf, got %+v", r)
	}

	target2 := &Target{AnyOfs: []*AnyOf{anyOfTrue}}
	r = target2.Eval(nil)
	if ok, _ := r.AsBoolean(); !ok {
		t.Fatalf("expected a single matching AnyOf to make the Target match, got %+v", r)
	}
}

func TestAnyOfIsDisjunctionOfAllOfs(t *testing.T) {
	bag := &bagLiteral{b: value.NewBag(value.TypeString, value.StringValue("a"))}
	allOfFalse := &AllOf{Matches: []*Match{matchOn(t, bag, "z")}}
	allOfTrue := &AllOf{Matches: []*Match{matchOn(t, bag, "a")}}

	anyOf := &AnyOf{AllOfs: []*AllOf{allOfFalse, allOfTrue}}
	r := anyOf.Eval(nil)
	if ok, _ := r.AsBoolean(); !ok {
		t.Fatalf("expected AnyOf true when at least one AllOf matches, got %+v", r)
	}
}

func TestAllOfFalseShortCircuitsBeforeIndeterminate(t *testing.T) {
	bag := &bagLiteral{b: value.NewBag(value.TypeString, value.StringValue("a"))}
	falseMatch := matchOn(t, bag, "z")
	indeterminateMatch := matchOn(t, &indeterminateBagLiteral{}, "a")

	allOf := &AllOf{Matches: []*Match{falseMatch, indeterminateMatch}}
	r := allOf.Eval(nil)
	if ok, _ := r.AsBoolean(); ok {
		t.Fatalf("expected a determined false without surfacing the Indeterminate, got %+v", r)
	}
}
