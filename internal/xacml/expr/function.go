package expr

import "github.com/echo-xacml/pdp/internal/xacml/value"

// EvalFunc is a function's evaluation strategy. Most functions evaluate
// all args eagerly (EvalArgs) and fail on the first Indeterminate; the
// short-circuit logical functions (and/or/n-of) implement their own
// lazy evaluation so a determining value found early need not force
// evaluation — or propagate the Indeterminate-ness — of the remaining
// args.
type EvalFunc func(env *Env, args []Node) value.Result

// Function is a resolved, callable standard function: resolved to a
// reference at policy-load time rather than dispatched by string lookup
// in the hot path.
type Function struct {
	ID         string
	Arity      int // -1 means variadic (>= first required arg count handled by impl)
	ReturnType string
	ReturnsBag bool
	Eval       EvalFunc
}

// Registry maps a function's URI to its resolved Function.
type Registry map[string]*Function

var standard = Registry{}

func registerFunction(f *Function) { standard[f.ID] = f }

// Lookup resolves a function reference by URI from the standard catalog.
func Lookup(id string) (*Function, bool) {
	f, ok := standard[id]
	return f, ok
}

// boolResult / errResult are small constructors used throughout the
// function implementations.
func boolResult(b bool) value.Result { return value.ValueResult(value.BooleanValue(b)) }

func processingError(msg string) value.Result {
	return value.Indeterminate(value.StatusProcessingError, msg)
}
