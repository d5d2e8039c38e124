// Package expr implements the XACML 3.0 expression library: the
// evaluable expression tree (AttributeValue, AttributeDesignator,
// AttributeSelector, Apply, VariableReference) plus the standard function
// catalog.
package expr

import (
	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// Env is the evaluation environment threaded through a Node tree: the
// request Context plus the enclosing Policy's VariableDefinitions
// and a memoization cache for them, scoped to this evaluation exactly
// like the attribute cache on Context.
type Env struct {
	Ctx      *xacmlctx.Context
	Vars     map[string]Node
	varCache map[string]value.Result
}

// NewEnv builds an evaluation environment over ctx with the given
// variable definitions (may be nil for an element with none).
func NewEnv(ctx *xacmlctx.Context, vars map[string]Node) *Env {
	return &Env{Ctx: ctx, Vars: vars, varCache: make(map[string]value.Result)}
}

// WithVars returns a child Env sharing Ctx but scoped to a different
// (possibly nested) policy's variable definitions.
func (e *Env) WithVars(vars map[string]Node) *Env {
	return &Env{Ctx: e.Ctx, Vars: vars, varCache: make(map[string]value.Result)}
}
