package expr

import (
	"math/big"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

const (
	FuncIntegerAdd      = "urn:oasis:names:tc:xacml:1.0:function:integer-add"
	FuncIntegerSubtract = "urn:oasis:names:tc:xacml:1.0:function:integer-subtract"
	FuncIntegerMultiply = "urn:oasis:names:tc:xacml:1.0:function:integer-multiply"
	FuncIntegerDivide   = "urn:oasis:names:tc:xacml:1.0:function:integer-divide"
	FuncIntegerMod      = "urn:oasis:names:tc:xacml:1.0:function:integer-mod"
	FuncIntegerAbs      = "urn:oasis:names:tc:xacml:1.0:function:integer-abs"

	FuncDoubleAdd      = "urn:oasis:names:tc:xacml:1.0:function:double-add"
	FuncDoubleSubtract = "urn:oasis:names:tc:xacml:1.0:function:double-subtract"
	FuncDoubleMultiply = "urn:oasis:names:tc:xacml:1.0:function:double-multiply"
	FuncDoubleDivide   = "urn:oasis:names:tc:xacml:1.0:function:double-divide"
	FuncDoubleAbs      = "urn:oasis:names:tc:xacml:1.0:function:double-abs"
)

func integerBinary(id string, op func(a, b *big.Int) (*big.Int, error)) *Function {
	return &Function{
		ID: id, Arity: 2, ReturnType: value.TypeInteger,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			a, aok := results[0].Scalar()
			b, bok := results[1].Scalar()
			av, aiok := a.(value.IntegerValue)
			bv, biok := b.(value.IntegerValue)
			if !aok || !bok || !aiok || !biok {
				return processingError(id + ": arguments must be integer")
			}
			r, err := op(av.Int, bv.Int)
			if err != nil {
				return processingError(id + ": " + err.Error())
			}
			return value.ValueResult(value.IntegerValue{Int: r})
		},
	}
}

func doubleBinary(id string, op func(a, b float64) float64) *Function {
	return &Function{
		ID: id, Arity: 2, ReturnType: value.TypeDouble,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			a, aok := results[0].Scalar()
			b, bok := results[1].Scalar()
			av, aiok := a.(value.DoubleValue)
			bv, biok := b.(value.DoubleValue)
			if !aok || !bok || !aiok || !biok {
				return processingError(id + ": arguments must be double")
			}
			return value.ValueResult(value.DoubleValue(op(float64(av), float64(bv))))
		},
	}
}

func init() {
	registerFunction(integerBinary(FuncIntegerAdd, func(a, b *big.Int) (*big.Int, error) {
		return new(big.Int).Add(a, b), nil
	}))
	registerFunction(integerBinary(FuncIntegerSubtract, func(a, b *big.Int) (*big.Int, error) {
		return new(big.Int).Sub(a, b), nil
	}))
	registerFunction(integerBinary(FuncIntegerMultiply, func(a, b *big.Int) (*big.Int, error) {
		return new(big.Int).Mul(a, b), nil
	}))
	registerFunction(integerBinary(FuncIntegerDivide, func(a, b *big.Int) (*big.Int, error) {
		if b.Sign() == 0 {
			return nil, errDivideByZero
		}
		q, r := new(big.Int).QuoRem(a, b, new(big.Int))
		_ = r
		return q, nil
	}))
	registerFunction(integerBinary(FuncIntegerMod, func(a, b *big.Int) (*big.Int, error) {
		if b.Sign() == 0 {
			return nil, errDivideByZero
		}
		_, r := new(big.Int).QuoRem(a, b, new(big.Int))
		return r, nil
	}))

	registerFunction(&Function{
		ID: FuncIntegerAbs, Arity: 1, ReturnType: value.TypeInteger,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			a, ok := results[0].Scalar()
			iv, iok := a.(value.IntegerValue)
			if !ok || !iok {
				return processingError(FuncIntegerAbs + ": argument must be integer")
			}
			return value.ValueResult(value.IntegerValue{Int: new(big.Int).Abs(iv.Int)})
		},
	})

	registerFunction(doubleBinary(FuncDoubleAdd, func(a, b float64) float64 { return a + b }))
	registerFunction(doubleBinary(FuncDoubleSubtract, func(a, b float64) float64 { return a - b }))
	registerFunction(doubleBinary(FuncDoubleMultiply, func(a, b float64) float64 { return a * b }))
	registerFunction(doubleBinary(FuncDoubleDivide, func(a, b float64) float64 { return a / b }))

	registerFunction(&Function{
		ID: FuncDoubleAbs, Arity: 1, ReturnType: value.TypeDouble,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			a, ok := results[0].Scalar()
			dv, dok := a.(value.DoubleValue)
			if !ok || !dok {
				return processingError(FuncDoubleAbs + ": argument must be double")
			}
			f := float64(dv)
			if f < 0 {
				f = -f
			}
			return value.ValueResult(value.DoubleValue(f))
		},
	})
}

var errDivideByZero = divideByZeroError{}

type divideByZeroError struct{}

func (divideByZeroError) Error() string { return "division by zero" }
