package expr

import "github.com/echo-xacml/pdp/internal/xacml/value"

const (
	FuncNot = "urn:oasis:names:tc:xacml:1.0:function:not"
	FuncAnd = "urn:oasis:names:tc:xacml:1.0:function:and"
	FuncOr  = "urn:oasis:names:tc:xacml:1.0:function:or"
	FuncNOf = "urn:oasis:names:tc:xacml:1.0:function:n-of"
)

func init() {
	registerFunction(&Function{
		ID: FuncNot, Arity: 1, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			b, ok := results[0].AsBoolean()
			if !ok {
				return processingError("not: argument is not boolean")
			}
			return boolResult(!b)
		},
	})

	// and short-circuits on the first `false`: a false found before an
	// Indeterminate argument determines the result without ever forcing
	// (or propagating the Indeterminate-ness of) that later argument.
	registerFunction(&Function{
		ID: FuncAnd, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			sawIndeterminate := false
			for _, arg := range args {
				r := arg.Eval(env)
				if r.IsIndeterminate() {
					sawIndeterminate = true
					continue
				}
				b, ok := r.AsBoolean()
				if !ok {
					return processingError("and: argument is not boolean")
				}
				if !b {
					return boolResult(false)
				}
			}
			if sawIndeterminate {
				return processingError("and: an argument was Indeterminate and no determining false was found")
			}
			return boolResult(true)
		},
	})

	// or short-circuits on the first `true`, symmetric to and.
	registerFunction(&Function{
		ID: FuncOr, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			sawIndeterminate := false
			for _, arg := range args {
				r := arg.Eval(env)
				if r.IsIndeterminate() {
					sawIndeterminate = true
					continue
				}
				b, ok := r.AsBoolean()
				if !ok {
					return processingError("or: argument is not boolean")
				}
				if b {
					return boolResult(true)
				}
			}
			if sawIndeterminate {
				return processingError("or: an argument was Indeterminate and no determining true was found")
			}
			return boolResult(false)
		},
	})

	// n-of(n, b1..bk): true iff at least n of b1..bk are true. Short
	// circuits once n trues have been seen.
	registerFunction(&Function{
		ID: FuncNOf, Arity: -1, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			if len(args) == 0 {
				return processingError("n-of: missing count argument")
			}
			countResult := args[0].Eval(env)
			if countResult.IsIndeterminate() {
				return value.IndeterminateFromStatus(countResult.Status())
			}
			scalar, ok := countResult.Scalar()
			if !ok {
				return processingError("n-of: first argument is not an integer")
			}
			iv, ok := scalar.(value.IntegerValue)
			if !ok {
				return processingError("n-of: first argument is not an integer")
			}
			n := int(iv.Int.Int64())
			if n <= 0 {
				return boolResult(true)
			}
			trueCount := 0
			sawIndeterminate := false
			for _, arg := range args[1:] {
				r := arg.Eval(env)
				if r.IsIndeterminate() {
					sawIndeterminate = true
					continue
				}
				b, ok := r.AsBoolean()
				if !ok {
					return processingError("n-of: argument is not boolean")
				}
				if b {
					trueCount++
					if trueCount >= n {
						return boolResult(true)
					}
				}
			}
			if sawIndeterminate {
				return processingError("n-of: an argument was Indeterminate and the count could not be determined")
			}
			return boolResult(trueCount >= n)
		},
	})
}
