package policy

import (
	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// AttributeAssignment is one obligation/advice attribute assignment
// expression, resolved at evaluation time.
type AttributeAssignmentExpression struct {
	AttributeID string
	Category    string
	Issuer      string
	Expression  expr.Node
}

type ObligationExpression struct {
	ObligationID string
	FulfillOn    combine.Effect
	Assignments  []AttributeAssignmentExpression
}

type AdviceExpression struct {
	AdviceID    string
	AppliesTo   combine.Effect
	Assignments []AttributeAssignmentExpression
}

// Rule is the atomic decision unit: Effect fires only if Target matches
// and Condition (if present) evaluates to true.
type Rule struct {
	ID         string
	Effect     combine.Effect
	Target     *Target
	Condition  expr.Node // must be boolean-typed; nil means "always true"
	Obligations []ObligationExpression
	Advice      []AdviceExpression
}

// Eval implements one Rule's contribution to a Policy's rule-combining
// algorithm: NotApplicable if Target doesn't match, Indeterminate{D,P}
// (flavor keyed to the Rule's own Effect) if Target or Condition can't
// be evaluated, else the Rule's Effect.
func (r *Rule) Eval(env *expr.Env) combine.Decision {
	targetResult := r.Target.Eval(env)
	if targetResult.IsIndeterminate() {
		return indeterminateForEffect(r.Effect, targetResult.Status())
	}
	matched, _ := targetResult.AsBoolean()
	if !matched {
		return combine.NotApplicable()
	}
	if r.Condition == nil {
		return effectDecision(r.Effect)
	}
	condResult := r.Condition.Eval(env)
	if condResult.IsIndeterminate() {
		return indeterminateForEffect(r.Effect, condResult.Status())
	}
	b, ok := condResult.AsBoolean()
	if !ok {
		return indeterminateForEffect(r.Effect, &value.Status{
			Code: value.StatusProcessingError, Message: "Condition did not evaluate to boolean",
		})
	}
	if !b {
		return combine.NotApplicable()
	}
	return effectDecision(r.Effect)
}

func effectDecision(e combine.Effect) combine.Decision {
	if e == combine.EffectPermit {
		return combine.Permit()
	}
	return combine.Deny()
}

// indeterminateForEffect reports the Indeterminate flavor a Rule that
// could not be evaluated still carries: a Deny-effect rule that fails
// to evaluate can only ever have produced Deny or NotApplicable, so its
// flavor is D, and vice versa for Permit.
func indeterminateForEffect(e combine.Effect, status *value.Status) combine.Decision {
	if e == combine.EffectPermit {
		return combine.IndeterminateP(status)
	}
	return combine.IndeterminateD(status)
}
