package pdp

import (
	"context"
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/combine"
	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/policy"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func allowAllPolicy(id string, effect combine.Effect) *policy.Policy {
	return &policy.Policy{
		PolicyID:  id,
		Target:    &policy.Target{},
		Rules:     []*policy.Rule{{ID: id + "-rule", Effect: effect, Target: &policy.Target{}}},
		Algorithm: combine.DenyOverrides,
	}
}

func TestInitRejectsDuplicatePolicyIDs(t *testing.T) {
	root1 := allowAllPolicy("dup", combine.EffectPermit)
	root2 := allowAllPolicy("dup", combine.EffectDeny)
	_, err := Init(Config{Roots: []policy.Node{root1, root2}, Algorithm: combine.DenyOverrides})
	if err == nil {
		t.Fatal("expected an error for duplicate policy identifiers")
	}
}

func TestInitRejectsUnresolvedReference(t *testing.T) {
	root := &policy.PolicySet{
		PolicySetID: "ps1",
		Target:      &policy.Target{},
		Children:    []policy.Node{&policy.Reference{ReferencedID: "nonexistent"}},
		Algorithm:   combine.DenyOverrides,
	}
	_, err := Init(Config{Roots: []policy.Node{root}, Algorithm: combine.DenyOverrides})
	if err == nil {
		t.Fatal("expected an error for an unresolved policy reference")
	}
}

func TestInitRequiresAtLeastOneRoot(t *testing.T) {
	if _, err := Init(Config{Algorithm: combine.DenyOverrides}); err == nil {
		t.Fatal("expected an error with no roots")
	}
}

func TestEvaluateReturnsPermitDecision(t *testing.T) {
	root := allowAllPolicy("p1", combine.EffectPermit)
	engine, err := Init(Config{Roots: []policy.Node{root}, Algorithm: combine.DenyOverrides})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	resp, err := engine.Evaluate(context.Background(), xacmlctx.NewRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Decision != combine.EffectPermit {
		t.Fatalf("expected a single Permit result, got %+v", resp.Results)
	}
}

func TestEvaluateNilRequestIsError(t *testing.T) {
	root := allowAllPolicy("p1", combine.EffectPermit)
	engine, err := Init(Config{Roots: []policy.Node{root}, Algorithm: combine.DenyOverrides})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := engine.Evaluate(context.Background(), nil); err == nil {
		t.Fatal("expected an error for a nil request")
	}
}

func TestEvaluateCollectsObligationsMatchingOverallEffect(t *testing.T) {
	root := &policy.Policy{
		PolicyID: "p1",
		Target:   &policy.Target{},
		Rules:    []*policy.Rule{{ID: "r1", Effect: combine.EffectPermit, Target: &policy.Target{}}},
		Algorithm: combine.DenyOverrides,
		Obligations: []policy.ObligationExpression{
			{ObligationID: "log-access", FulfillOn: combine.EffectPermit},
			{ObligationID: "alert-security", FulfillOn: combine.EffectDeny},
		},
	}
	engine, err := Init(Config{Roots: []policy.Node{root}, Algorithm: combine.DenyOverrides})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	resp, err := engine.Evaluate(context.Background(), xacmlctx.NewRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	obls := resp.Results[0].Obligations
	if len(obls) != 1 || obls[0].ID != "log-access" {
		t.Fatalf("expected only the Permit-side obligation to fire, got %+v", obls)
	}
}

func TestBloomFilterPrunesRootWithNoMatchingRequestKeys(t *testing.T) {
	target := &policy.Target{AnyOfs: []*policy.AnyOf{{AllOfs: []*policy.AllOf{{Matches: []*policy.Match{{
		MatchFunction: mustLookup(t, expr.FuncStringEqual),
		AttributeVal:  mustAttrVal(t, value.TypeString, "clinician"),
		Designator:    &expr.DesignatorNode{Category: xacmlctx.CategorySubject, AttributeID: "role", DataType: value.TypeString},
	}}}}}}}
	root := &policy.Policy{
		PolicyID:  "p1",
		Target:    target,
		Rules:     []*policy.Rule{{ID: "r1", Effect: combine.EffectPermit, Target: &policy.Target{}}},
		Algorithm: combine.DenyOverrides,
	}
	engine, err := Init(Config{Roots: []policy.Node{root}, Algorithm: combine.DenyOverrides, UseBloomFilter: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	req := xacmlctx.NewRequest()
	req.AddAttribute(xacmlctx.Attribute{
		Category: xacmlctx.CategoryResource,
		ID:       "task-id",
		DataType: value.TypeString,
		Values:   value.NewBag(value.TypeString, value.StringValue("t1")),
	})
	resp, err := engine.Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !resp.Results[0].NotApplicable {
		t.Fatalf("expected the Bloom filter to prune the root to NotApplicable, got %+v", resp.Results[0])
	}
}

func TestEvaluateEscalatesWhenObligationAssignmentIsIndeterminate(t *testing.T) {
	root := &policy.Policy{
		PolicyID: "p1",
		Target:   &policy.Target{},
		Rules:    []*policy.Rule{{ID: "r1", Effect: combine.EffectPermit, Target: &policy.Target{}}},
		Algorithm: combine.DenyOverrides,
		Obligations: []policy.ObligationExpression{{
			ObligationID: "notify",
			FulfillOn:    combine.EffectPermit,
			Assignments: []policy.AttributeAssignmentExpression{{
				AttributeID: "email",
				Expression: &expr.DesignatorNode{
					Category: xacmlctx.CategorySubject, AttributeID: "email",
					DataType: value.TypeString, MustBePresent: true,
				},
			}},
		}},
	}
	engine, err := Init(Config{Roots: []policy.Node{root}, Algorithm: combine.DenyOverrides})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	resp, err := engine.Evaluate(context.Background(), xacmlctx.NewRequest())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	r := resp.Results[0]
	if !r.Indeterminate || r.Flavor != value.FlavorP {
		t.Fatalf("expected Indeterminate{P} when an obligation assignment can't be evaluated, got %+v", r)
	}
	if len(r.Obligations) != 0 {
		t.Fatalf("expected no obligations on an escalated result, got %+v", r.Obligations)
	}
}

func mustLookup(t *testing.T, id string) *expr.Function {
	t.Helper()
	fn, ok := expr.Lookup(id)
	if !ok {
		t.Fatalf("function not registered: %s", id)
	}
	return fn
}

func mustAttrVal(t *testing.T, dataType, literal string) *expr.AttributeValueNode {
	t.Helper()
	n, err := expr.NewAttributeValue(dataType, literal)
	if err != nil {
		t.Fatalf("NewAttributeValue: %v", err)
	}
	return n
}
