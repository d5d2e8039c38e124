package policy

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
)

func permitRule(id string) *Rule {
	return &Rule{ID: id, Effect: combine.EffectPermit, Target: &Target{}}
}

func denyRule(id string) *Rule {
	return &Rule{ID: id, Effect: combine.EffectDeny, Target: &Target{}}
}

func TestPolicyIndeterminateWhenTargetIsIndeterminate(t *testing.T) {
	target := &Target{AnyOfs: []*AnyOf{{AllOfs: []*AllOf{{Matches: []*Match{matchOn(t, &indeterminateBagLiteral{}, "a")}}}}}}
	p := &Policy{PolicyID: "p1", Target: target, Rules: []*Rule{permitRule("r1")}, Algorithm: combine.DenyOverrides}
	got := p.Eval(nil, nil)
	if !got.Indeterminate {
		t.Fatalf("expected Indeterminate from an Indeterminate Target, got %+v", got)
	}
}

func TestPolicyCombinesRulesWithItsAlgorithm(t *testing.T) {
	p := &Policy{
		PolicyID:  "p1",
		Target:    &Target{},
		Rules:     []*Rule{permitRule("r1"), denyRule("r2")},
		Algorithm: combine.DenyOverrides,
	}
	got := p.Eval(expr.NewEnv(nil, nil), nil)
	if got.Effect != combine.EffectDeny {
		t.Fatalf("expected deny-overrides to produce Deny, got %+v", got)
	}
}

type stubFinder struct {
	nodes map[string]Node
}

func (f *stubFinder) Resolve(id string) (Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

func TestReferenceResolvesThroughFinder(t *testing.T) {
	target := &Policy{PolicyID: "p1", Target: &Target{}, Rules: []*Rule{permitRule("r1")}, Algorithm: combine.DenyOverrides}
	finder := &stubFinder{nodes: map[string]Node{"p1": target}}

	ref := &Reference{ReferencedID: "p1"}
	got := ref.Eval(expr.NewEnv(nil, nil), finder)
	if got.Effect != combine.EffectPermit {
		t.Fatalf("expected the referenced policy's Permit to surface, got %+v", got)
	}
}

func TestReferenceUnresolvedIsIndeterminateDP(t *testing.T) {
	finder := &stubFinder{nodes: map[string]Node{}}
	ref := &Reference{ReferencedID: "missing"}
	got := ref.Eval(expr.NewEnv(nil, nil), finder)
	if !got.Indeterminate {
		t.Fatalf("expected IndeterminateDP for an unresolved reference, got %+v", got)
	}
}

func TestPolicySetEvaluatesChildrenThroughTheSameFinder(t *testing.T) {
	child := &Policy{PolicyID: "p1", Target: &Target{}, Rules: []*Rule{denyRule("r1")}, Algorithm: combine.DenyOverrides}
	finder := &stubFinder{nodes: map[string]Node{"p1": child}}

	ps := &PolicySet{
		PolicySetID: "ps1",
		Target:      &Target{},
		Children:    []Node{&Reference{ReferencedID: "p1"}},
		Algorithm:   combine.DenyOverrides,
	}
	got := ps.Eval(expr.NewEnv(nil, nil), finder)
	if got.Effect != combine.EffectDeny {
		t.Fatalf("expected the nested reference's Deny to combine up, got %+v", got)
	}
}
