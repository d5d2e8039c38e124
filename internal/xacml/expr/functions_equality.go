package expr

import (
	"bytes"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

const (
	FuncStringEqual     = "urn:oasis:names:tc:xacml:1.0:function:string-equal"
	FuncBooleanEqual     = "urn:oasis:names:tc:xacml:1.0:function:boolean-equal"
	FuncIntegerEqual     = "urn:oasis:names:tc:xacml:1.0:function:integer-equal"
	FuncDoubleEqual      = "urn:oasis:names:tc:xacml:1.0:function:double-equal"
	FuncDateEqual        = "urn:oasis:names:tc:xacml:1.0:function:date-equal"
	FuncTimeEqual        = "urn:oasis:names:tc:xacml:1.0:function:time-equal"
	FuncDateTimeEqual    = "urn:oasis:names:tc:xacml:1.0:function:dateTime-equal"
	FuncAnyURIEqual      = "urn:oasis:names:tc:xacml:2.0:function:anyURI-equal"
	FuncHexBinaryEqual   = "urn:oasis:names:tc:xacml:1.0:function:hexBinary-equal"
	FuncBase64BinaryEqual = "urn:oasis:names:tc:xacml:1.0:function:base64Binary-equal"
)

// equalityFunc builds a binary *-equal function whose two args must both
// evaluate to concrete T (a double-Indeterminate short circuits eagerly
// via EvalArgs), comparing with eq.
func equalityFunc(id string, dataType string, eq func(a, b value.Value) bool) *Function {
	return &Function{
		ID: id, Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			a, aok := results[0].Scalar()
			b, bok := results[1].Scalar()
			if !aok || !bok {
				return processingError(id + ": arguments must be scalar " + dataType)
			}
			return boolResult(eq(a, b))
		},
	}
}

func init() {
	registerFunction(equalityFunc(FuncStringEqual, value.TypeString, func(a, b value.Value) bool {
		av, aok := a.(value.StringValue)
		bv, bok := b.(value.StringValue)
		return aok && bok && av == bv
	}))
	registerFunction(equalityFunc(FuncBooleanEqual, value.TypeBoolean, func(a, b value.Value) bool {
		av, aok := a.(value.BooleanValue)
		bv, bok := b.(value.BooleanValue)
		return aok && bok && av == bv
	}))
	registerFunction(equalityFunc(FuncIntegerEqual, value.TypeInteger, func(a, b value.Value) bool {
		av, aok := a.(value.IntegerValue)
		bv, bok := b.(value.IntegerValue)
		return aok && bok && av.Int.Cmp(bv.Int) == 0
	}))
	// double-equal: IEEE-754 semantics, NaN != NaN.
	registerFunction(equalityFunc(FuncDoubleEqual, value.TypeDouble, func(a, b value.Value) bool {
		av, aok := a.(value.DoubleValue)
		bv, bok := b.(value.DoubleValue)
		return aok && bok && float64(av) == float64(bv)
	}))
	registerFunction(equalityFunc(FuncDateEqual, value.TypeDate, func(a, b value.Value) bool {
		av, aok := a.(value.DateValue)
		bv, bok := b.(value.DateValue)
		return aok && bok && av.Year == bv.Year && av.Month == bv.Month && av.Day == bv.Day && av.HasZone == bv.HasZone
	}))
	registerFunction(equalityFunc(FuncTimeEqual, value.TypeTime, func(a, b value.Value) bool {
		av, aok := a.(value.TimeValue)
		bv, bok := b.(value.TimeValue)
		return aok && bok && av.Hour == bv.Hour && av.Minute == bv.Minute &&
			av.Second == bv.Second && av.Nanosecond == bv.Nanosecond && av.HasZone == bv.HasZone
	}))
	// dateTime-equal: compared by absolute instant.
	registerFunction(equalityFunc(FuncDateTimeEqual, value.TypeDateTime, func(a, b value.Value) bool {
		av, aok := a.(value.DateTimeValue)
		bv, bok := b.(value.DateTimeValue)
		return aok && bok && av.Instant.Equal(bv.Instant)
	}))
	registerFunction(equalityFunc(FuncAnyURIEqual, value.TypeAnyURI, func(a, b value.Value) bool {
		av, aok := a.(value.AnyURIValue)
		bv, bok := b.(value.AnyURIValue)
		return aok && bok && av == bv
	}))
	registerFunction(equalityFunc(FuncHexBinaryEqual, value.TypeHexBinary, func(a, b value.Value) bool {
		av, aok := a.(value.HexBinaryValue)
		bv, bok := b.(value.HexBinaryValue)
		return aok && bok && bytes.Equal(av, bv)
	}))
	registerFunction(equalityFunc(FuncBase64BinaryEqual, value.TypeBase64, func(a, b value.Value) bool {
		av, aok := a.(value.Base64Value)
		bv, bok := b.(value.Base64Value)
		return aok && bok && bytes.Equal(av, bv)
	}))
}
