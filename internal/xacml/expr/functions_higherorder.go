package expr

import "github.com/echo-xacml/pdp/internal/xacml/value"

const (
	FuncAnyOf     = "urn:oasis:names:tc:xacml:3.0:function:any-of"
	FuncAllOf     = "urn:oasis:names:tc:xacml:3.0:function:all-of"
	FuncAnyOfAny  = "urn:oasis:names:tc:xacml:3.0:function:any-of-any"
	FuncAllOfAny  = "urn:oasis:names:tc:xacml:3.0:function:all-of-any"
	FuncAnyOfAll  = "urn:oasis:names:tc:xacml:3.0:function:any-of-all"
	FuncAllOfAll  = "urn:oasis:names:tc:xacml:3.0:function:all-of-all"
	FuncMap       = "urn:oasis:names:tc:xacml:3.0:function:map"
)

// FunctionRefNode wraps a Function as a first-class argument to a
// higher-order function.
type FunctionRefNode struct {
	Fn *Function
}

func (n *FunctionRefNode) Eval(*Env) value.Result { return value.Result{} }
func (n *FunctionRefNode) ReturnType() string     { return n.Fn.ReturnType }
func (n *FunctionRefNode) ReturnsBag() bool        { return false }

func functionRefFromFirstArg(args []Node) (*Function, []Node, *value.Result) {
	if len(args) == 0 {
		res := processingError("higher-order function requires a function reference as its first argument")
		return nil, nil, &res
	}
	ref, ok := args[0].(*FunctionRefNode)
	if !ok {
		res := processingError("first argument is not a function reference")
		return nil, nil, &res
	}
	return ref.Fn, args[1:], nil
}

func applyPredicate2(env *Env, fn *Function, a, b value.Value) (bool, *value.Status) {
	r := fn.Eval(env, []Node{&literalNode{v: a}, &literalNode{v: b}})
	if r.IsIndeterminate() {
		return false, r.Status()
	}
	bv, ok := r.AsBoolean()
	if !ok {
		return false, &value.Status{Code: value.StatusProcessingError, Message: "predicate did not return boolean"}
	}
	return bv, nil
}

// literalNode wraps an already-evaluated Value so higher-order functions
// can feed bag elements back through the ordinary Function.Eval path.
type literalNode struct{ v value.Value }

func (n *literalNode) Eval(*Env) value.Result { return value.ValueResult(n.v) }
func (n *literalNode) ReturnType() string     { return n.v.Type() }
func (n *literalNode) ReturnsBag() bool       { return false }

func init() {
	registerFunction(&Function{
		ID: FuncAnyOf, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			fn, rest, errRes := functionRefFromFirstArg(args)
			if errRes != nil {
				return *errRes
			}
			if len(rest) < 2 {
				return processingError(FuncAnyOf + ": expects a scalar and a bag")
			}
			scalarResult := rest[0].Eval(env)
			if scalarResult.IsIndeterminate() {
				return value.IndeterminateFromStatus(scalarResult.Status())
			}
			scalar, ok := scalarResult.Scalar()
			if !ok {
				return processingError(FuncAnyOf + ": first argument must be scalar")
			}
			bag, status := evalSingleBag(env, rest[1])
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			sawIndeterminate := false
			for _, elem := range bag.Values {
				ok, status := applyPredicate2(env, fn, scalar, elem)
				if status != nil {
					sawIndeterminate = true
					continue
				}
				if ok {
					return boolResult(true)
				}
			}
			if sawIndeterminate {
				return processingError(FuncAnyOf + ": an element evaluation was Indeterminate and no determining true was found")
			}
			return boolResult(false)
		},
	})

	registerFunction(&Function{
		ID: FuncAllOf, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			fn, rest, errRes := functionRefFromFirstArg(args)
			if errRes != nil {
				return *errRes
			}
			if len(rest) < 2 {
				return processingError(FuncAllOf + ": expects a scalar and a bag")
			}
			scalarResult := rest[0].Eval(env)
			if scalarResult.IsIndeterminate() {
				return value.IndeterminateFromStatus(scalarResult.Status())
			}
			scalar, ok := scalarResult.Scalar()
			if !ok {
				return processingError(FuncAllOf + ": first argument must be scalar")
			}
			bag, status := evalSingleBag(env, rest[1])
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			for _, elem := range bag.Values {
				ok, status := applyPredicate2(env, fn, scalar, elem)
				if status != nil {
					return value.IndeterminateFromStatus(status)
				}
				if !ok {
					return boolResult(false)
				}
			}
			return boolResult(true)
		},
	})

	registerFunction(&Function{
		ID: FuncAnyOfAny, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: crossBagFunc(func(anyLeft, anyRight bool) bool { return anyLeft || anyRight }, true, true),
	})
	registerFunction(&Function{
		ID: FuncAllOfAny, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: crossBagFunc(nil, true, false),
	})
	registerFunction(&Function{
		ID: FuncAnyOfAll, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: crossBagFunc(nil, false, true),
	})
	registerFunction(&Function{
		ID: FuncAllOfAll, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: crossBagFunc(nil, false, false),
	})

	registerFunction(&Function{
		ID: FuncMap, Arity: -1, ReturnType: value.TypeString, ReturnsBag: true,
		Eval: func(env *Env, args []Node) value.Result {
			fn, rest, errRes := functionRefFromFirstArg(args)
			if errRes != nil {
				return *errRes
			}
			if len(rest) != 1 {
				return processingError(FuncMap + ": expects exactly one bag argument")
			}
			bag, status := evalSingleBag(env, rest[0])
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			out := make([]value.Value, 0, len(bag.Values))
			for _, elem := range bag.Values {
				r := fn.Eval(env, []Node{&literalNode{v: elem}})
				if r.IsIndeterminate() {
					return value.IndeterminateFromStatus(r.Status())
				}
				v, ok := r.Scalar()
				if !ok {
					return processingError(FuncMap + ": mapped function must return a scalar")
				}
				out = append(out, v)
			}
			return value.BagResult(value.NewBag(fn.ReturnType, out...))
		},
	})
}

// crossBagFunc builds any-of-any/all-of-any/any-of-all/all-of-all: each
// takes a predicate and two bags. requireAllLeft/requireAllRight select
// whether the outer/inner loop must be satisfied by "all" (true) or "any"
// (false) elements of that bag; the mixed any-of-any case uses combine
// directly instead.
func crossBagFunc(combine func(anyLeft, anyRight bool) bool, requireAllLeft, requireAllRight bool) EvalFunc {
	return func(env *Env, args []Node) value.Result {
		fn, rest, errRes := functionRefFromFirstArg(args)
		if errRes != nil {
			return *errRes
		}
		if len(rest) != 2 {
			return processingError("expects exactly two bag arguments")
		}
		left, status := evalSingleBag(env, rest[0])
		if status != nil {
			return value.IndeterminateFromStatus(status)
		}
		right, status := evalSingleBag(env, rest[1])
		if status != nil {
			return value.IndeterminateFromStatus(status)
		}
		if combine != nil {
			// any-of-any: true iff some pair satisfies the predicate.
			sawIndeterminate := false
			for _, a := range left.Values {
				for _, b := range right.Values {
					ok, status := applyPredicate2(env, fn, a, b)
					if status != nil {
						sawIndeterminate = true
						continue
					}
					if ok {
						return boolResult(true)
					}
				}
			}
			if sawIndeterminate {
				return processingError("any-of-any: an evaluation was Indeterminate and no determining true was found")
			}
			return boolResult(false)
		}
		if !requireAllLeft && requireAllRight {
			// any-of-all: some element of left satisfies predicate against every element of right.
			for _, a := range left.Values {
				allMatch := true
				for _, b := range right.Values {
					ok, status := applyPredicate2(env, fn, a, b)
					if status != nil {
						return value.IndeterminateFromStatus(status)
					}
					if !ok {
						allMatch = false
						break
					}
				}
				if allMatch {
					return boolResult(true)
				}
			}
			return boolResult(false)
		}
		if requireAllLeft && !requireAllRight {
			// all-of-any: every element of left satisfies predicate against some element of right.
			for _, a := range left.Values {
				anyMatch := false
				for _, b := range right.Values {
					ok, status := applyPredicate2(env, fn, a, b)
					if status != nil {
						return value.IndeterminateFromStatus(status)
					}
					if ok {
						anyMatch = true
						break
					}
				}
				if !anyMatch {
					return boolResult(false)
				}
			}
			return boolResult(true)
		}
		// all-of-all: every pair satisfies the predicate.
		for _, a := range left.Values {
			for _, b := range right.Values {
				ok, status := applyPredicate2(env, fn, a, b)
				if status != nil {
					return value.IndeterminateFromStatus(status)
				}
				if !ok {
					return boolResult(false)
				}
			}
		}
		return boolResult(true)
	}
}
