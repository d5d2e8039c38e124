package policy

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

type boolLiteral struct{ v value.Value }

func (n *boolLiteral) Eval(*expr.Env) value.Result { return value.ValueResult(n.v) }
func (n *boolLiteral) ReturnType() string          { return value.TypeBoolean }
func (n *boolLiteral) ReturnsBag() bool            { return false }

type indeterminateCondition struct{}

func (n *indeterminateCondition) Eval(*expr.Env) value.Result {
	return value.Indeterminate(value.StatusProcessingError, "boom")
}
func (n *indeterminateCondition) ReturnType() string { return value.TypeBoolean }
func (n *indeterminateCondition) ReturnsBag() bool   { return false }

func TestRuleNotApplicableWhenTargetDoesNotMatch(t *testing.T) {
	bag := &bagLiteral{b: value.NewBag(value.TypeString, value.StringValue("a"))}
	target := &Target{AnyOfs: []*AnyOf{{AllOfs: []*AllOf{{Matches: []*Match{matchOn(t, bag, "z")}}}}}}
	r := &Rule{ID: "r1", Effect: combine.EffectPermit, Target: target}
	got := r.Eval(nil)
	if got.Applicable {
		t.Fatalf("expected NotApplicable, got %+v", got)
	}
}

func TestRuleFiresEffectWhenTargetMatchesAndNoCondition(t *testing.T) {
	r := &Rule{ID: "r1", Effect: combine.EffectDeny, Target: &Target{}}
	got := r.Eval(nil)
	if got.Effect != combine.EffectDeny || got.Indeterminate {
		t.Fatalf("expected Deny, got %+v", got)
	}
}

func TestRuleConditionFalseIsNotApplicable(t *testing.T) {
	r := &Rule{ID: "r1", Effect: combine.EffectPermit, Target: &Target{}, Condition: &boolLiteral{v: value.BooleanValue(false)}}
	got := r.Eval(nil)
	if got.Applicable {
		t.Fatalf("expected NotApplicable when Condition is false, got %+v", got)
	}
}

func TestRuleConditionIndeterminateCarriesEffectFlavor(t *testing.T) {
	permitRule := &Rule{ID: "r1", Effect: combine.EffectPermit, Target: &Target{}, Condition: &indeterminateCondition{}}
	got := permitRule.Eval(nil)
	if !got.Indeterminate || got.Flavor != value.FlavorP {
		t.Fatalf("expected IndeterminateP for a Permit rule, got %+v", got)
	}

	denyRule := &Rule{ID: "r2", Effect: combine.EffectDeny, Target: &Target{}, Condition: &indeterminateCondition{}}
	got = denyRule.Eval(nil)
	if !got.Indeterminate || got.Flavor != value.FlavorD {
		t.Fatalf("expected IndeterminateD for a Deny rule, got %+v", got)
	}
}

func TestRuleTargetIndeterminateCarriesEffectFlavor(t *testing.T) {
	target := &Target{AnyOfs: []*AnyOf{{AllOfs: []*AllOf{{Matches: []*Match{matchOn(t, &indeterminateBagLiteral{}, "a")}}}}}}
	r := &Rule{ID: "r1", Effect: combine.EffectDeny, Target: target}
	got := r.Eval(nil)
	if !got.Indeterminate || got.Flavor != value.FlavorD {
		t.Fatalf("expected IndeterminateD, got %+v", got)
	}
}
