package policy

import (
	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// Node is what a PolicySet's children evaluate to: a Policy, a nested
// PolicySet, or a lazily-resolved reference to either. Modeling
// references as a distinct variant (rather than resolving to a direct
// pointer at load time) avoids cyclic ownership between PolicySets that
// reference each other's siblings, and lets a PolicyFinder swap in
// updated policies without re-parsing the whole tree.
type Node interface {
	ID() string
	Eval(env *expr.Env, finder Finder) combine.Decision
	Variables() map[string]expr.Node
}

// Finder resolves a PolicyIdReference/PolicySetIdReference by ID (and
// optional version constraint, not modeled here) to a Node at
// evaluation time.
type Finder interface {
	Resolve(policyID string) (Node, bool)
}

// Policy is a set of Rules combined by one rule-combining algorithm.
type Policy struct {
	PolicyID   string
	Target     *Target
	Rules      []*Rule
	Algorithm  combine.Algorithm
	Vars       map[string]expr.Node
	Obligations []ObligationExpression
	Advice      []AdviceExpression
}

func (p *Policy) ID() string                        { return p.PolicyID }
func (p *Policy) Variables() map[string]expr.Node    { return p.Vars }

func (p *Policy) Eval(env *expr.Env, _ Finder) combine.Decision {
	targetResult := p.Target.Eval(env)
	if targetResult.IsIndeterminate() {
		return combine.IndeterminateDP(targetResult.Status())
	}
	matched, _ := targetResult.AsBoolean()
	if !matched {
		return combine.NotApplicable()
	}
	policyEnv := env
	if len(p.Vars) > 0 {
		policyEnv = env.WithVars(p.Vars)
	}
	children := make([]combine.Decision, len(p.Rules))
	for i, r := range p.Rules {
		children[i] = r.Eval(policyEnv)
	}
	return p.Algorithm(children)
}

// PolicySet combines Policies, nested PolicySets, and lazily-resolved
// references by one policy-combining algorithm.
type PolicySet struct {
	PolicySetID string
	Target      *Target
	Children    []Node
	Algorithm   combine.Algorithm
	Vars        map[string]expr.Node
	Obligations []ObligationExpression
	Advice      []AdviceExpression
}

func (ps *PolicySet) ID() string                     { return ps.PolicySetID }
func (ps *PolicySet) Variables() map[string]expr.Node { return ps.Vars }

func (ps *PolicySet) Eval(env *expr.Env, finder Finder) combine.Decision {
	targetResult := ps.Target.Eval(env)
	if targetResult.IsIndeterminate() {
		return combine.IndeterminateDP(targetResult.Status())
	}
	matched, _ := targetResult.AsBoolean()
	if !matched {
		return combine.NotApplicable()
	}
	setEnv := env
	if len(ps.Vars) > 0 {
		setEnv = env.WithVars(ps.Vars)
	}
	children := make([]combine.Decision, len(ps.Children))
	for i, c := range ps.Children {
		children[i] = c.Eval(setEnv, finder)
	}
	return ps.Algorithm(children)
}

// Reference is a PolicyIdReference or PolicySetIdReference, resolved
// against a Finder at evaluation time rather than at load time.
type Reference struct {
	ReferencedID string
}

func (r *Reference) ID() string                     { return r.ReferencedID }
func (r *Reference) Variables() map[string]expr.Node { return nil }

func (r *Reference) Eval(env *expr.Env, finder Finder) combine.Decision {
	target, ok := finder.Resolve(r.ReferencedID)
	if !ok {
		return combine.IndeterminateDP(&value.Status{
			Code:    value.StatusProcessingError,
			Message: "unresolved policy reference: " + r.ReferencedID,
		})
	}
	return target.Eval(env, finder)
}
