// Package xacmlvalidate holds a struct-of-validators over parsed XACML
// policy/request structure. The /audit endpoint's query DTO is checked
// separately by go-playground/validator in package audit.
package xacmlvalidate

import (
	"fmt"

	"github.com/echo-xacml/pdp/internal/xacml/combine"
	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/policy"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil { return &ValidationUtil{} }

// ValidatePolicy checks structural invariants ParsePolicy's error
// returns don't already enforce: non-empty PolicyId, a non-nil Target,
// and unique Rule IDs within the Policy (duplicate Rule IDs are legal in
// the XACML schema but make obligation/advice FulfillOn diagnostics
// ambiguous, so this module rejects them).
func (v *ValidationUtil) ValidatePolicy(p *policy.Policy) error {
	if p.PolicyID == "" {
		return fmt.Errorf("policy PolicyId cannot be empty")
	}
	if p.Target == nil {
		return fmt.Errorf("policy %q: Target cannot be nil", p.PolicyID)
	}
	if p.Algorithm == nil {
		return fmt.Errorf("policy %q: missing rule-combining algorithm", p.PolicyID)
	}
	seen := make(map[string]bool, len(p.Rules))
	for _, r := range p.Rules {
		if r.ID == "" {
			return fmt.Errorf("policy %q: Rule missing RuleId", p.PolicyID)
		}
		if seen[r.ID] {
			return fmt.Errorf("policy %q: duplicate RuleId %q", p.PolicyID, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

func (v *ValidationUtil) ValidatePolicySet(ps *policy.PolicySet) error {
	if ps.PolicySetID == "" {
		return fmt.Errorf("policy set PolicySetId cannot be empty")
	}
	if ps.Target == nil {
		return fmt.Errorf("policy set %q: Target cannot be nil", ps.PolicySetID)
	}
	if ps.Algorithm == nil {
		return fmt.Errorf("policy set %q: missing policy-combining algorithm", ps.PolicySetID)
	}
	if len(ps.Children) == 0 {
		return fmt.Errorf("policy set %q: must have at least one child", ps.PolicySetID)
	}
	return nil
}

// ValidateRequest checks a parsed Request carries the minimum XACML 3.0
// requires to be evaluable: at least a subject and a resource attribute
// category (action/environment may legitimately be empty for some
// deployments, but the seed-scenario fixtures this PDP ships with always
// populate all four).
func (v *ValidationUtil) ValidateRequest(req *xacmlctx.Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if len(req.Attributes[xacmlctx.CategorySubject]) == 0 {
		return fmt.Errorf("request must include at least one %s attribute", xacmlctx.CategorySubject)
	}
	if len(req.Attributes[xacmlctx.CategoryResource]) == 0 {
		return fmt.Errorf("request must include at least one %s attribute", xacmlctx.CategoryResource)
	}
	return nil
}

// ValidateEffect is a small guard used by obligation/advice realization:
// FulfillOn/AppliesTo must resolve to one of the two known effects.
func (v *ValidationUtil) ValidateEffect(e combine.Effect) error {
	if e != combine.EffectPermit && e != combine.EffectDeny {
		return fmt.Errorf("invalid effect: %v", e)
	}
	return nil
}
