package expr

import (
	"strings"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

const (
	FuncStringConcatenate    = "urn:oasis:names:tc:xacml:2.0:function:string-concatenate"
	FuncStringNormalizeSpace = "urn:oasis:names:tc:xacml:1.0:function:string-normalize-space"
	FuncStringNormalizeLower = "urn:oasis:names:tc:xacml:1.0:function:string-normalize-to-lower-case"
	FuncStringStartsWith     = "urn:oasis:names:tc:xacml:2.0:function:string-starts-with"
	FuncStringEndsWith       = "urn:oasis:names:tc:xacml:2.0:function:string-ends-with"
	FuncStringContains       = "urn:oasis:names:tc:xacml:2.0:function:string-contains"
	FuncSubstring            = "urn:oasis:names:tc:xacml:2.0:function:string-substring"
)

func init() {
	registerFunction(&Function{
		ID: FuncStringConcatenate, Arity: -1, ReturnType: value.TypeString,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			var b strings.Builder
			for _, r := range results {
				s, ok := r.Scalar()
				sv, sok := s.(value.StringValue)
				if !ok || !sok {
					return processingError(FuncStringConcatenate + ": arguments must be string")
				}
				b.WriteString(string(sv))
			}
			return value.ValueResult(value.StringValue(b.String()))
		},
	})

	registerFunction(&Function{
		ID: FuncStringNormalizeSpace, Arity: 1, ReturnType: value.TypeString,
		Eval: func(env *Env, args []Node) value.Result {
			s, err := stringArg(env, args[0])
			if err != nil {
				return *err
			}
			return value.ValueResult(value.StringValue(strings.Join(strings.Fields(s), " ")))
		},
	})

	registerFunction(&Function{
		ID: FuncStringNormalizeLower, Arity: 1, ReturnType: value.TypeString,
		Eval: func(env *Env, args []Node) value.Result {
			s, err := stringArg(env, args[0])
			if err != nil {
				return *err
			}
			return value.ValueResult(value.StringValue(strings.ToLower(s)))
		},
	})

	registerFunction(&Function{
		ID: FuncStringStartsWith, Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			prefix, s, err := twoStringArgs(env, args)
			if err != nil {
				return *err
			}
			return boolResult(strings.HasPrefix(s, prefix))
		},
	})

	registerFunction(&Function{
		ID: FuncStringEndsWith, Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			suffix, s, err := twoStringArgs(env, args)
			if err != nil {
				return *err
			}
			return boolResult(strings.HasSuffix(s, suffix))
		},
	})

	registerFunction(&Function{
		ID: FuncStringContains, Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			needle, haystack, err := twoStringArgs(env, args)
			if err != nil {
				return *err
			}
			return boolResult(strings.Contains(haystack, needle))
		},
	})

	registerFunction(&Function{
		ID: FuncSubstring, Arity: 3, ReturnType: value.TypeString,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			sVal, sok := results[0].Scalar()
			sv, svok := sVal.(value.StringValue)
			beginVal, bok := results[1].Scalar()
			bv, bvok := beginVal.(value.IntegerValue)
			endVal, eok := results[2].Scalar()
			ev, evok := endVal.(value.IntegerValue)
			if !sok || !svok || !bok || !bvok || !eok || !evok {
				return processingError(FuncSubstring + ": argument types must be (string, integer, integer)")
			}
			s := string(sv)
			begin := int(bv.Int.Int64())
			end := int(ev.Int.Int64())
			if end < 0 {
				end = len(s)
			}
			if begin < 0 || begin > len(s) || end > len(s) || end < begin {
				return processingError(FuncSubstring + ": index out of range")
			}
			return value.ValueResult(value.StringValue(s[begin:end]))
		},
	})
}

func stringArg(env *Env, n Node) (string, *value.Result) {
	r := n.Eval(env)
	if r.IsIndeterminate() {
		res := value.IndeterminateFromStatus(r.Status())
		return "", &res
	}
	v, ok := r.Scalar()
	sv, sok := v.(value.StringValue)
	if !ok || !sok {
		res := processingError("argument must be string")
		return "", &res
	}
	return string(sv), nil
}

func twoStringArgs(env *Env, args []Node) (string, string, *value.Result) {
	a, err := stringArg(env, args[0])
	if err != nil {
		return "", "", err
	}
	b, err := stringArg(env, args[1])
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}
