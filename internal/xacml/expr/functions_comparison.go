package expr

import "github.com/echo-xacml/pdp/internal/xacml/value"

const (
	FuncIntegerGreaterThan        = "urn:oasis:names:tc:xacml:1.0:function:integer-greater-than"
	FuncIntegerGreaterThanOrEqual = "urn:oasis:names:tc:xacml:1.0:function:integer-greater-than-or-equal"
	FuncIntegerLessThan           = "urn:oasis:names:tc:xacml:1.0:function:integer-less-than"
	FuncIntegerLessThanOrEqual    = "urn:oasis:names:tc:xacml:1.0:function:integer-less-than-or-equal"

	FuncDoubleGreaterThan        = "urn:oasis:names:tc:xacml:1.0:function:double-greater-than"
	FuncDoubleGreaterThanOrEqual = "urn:oasis:names:tc:xacml:1.0:function:double-greater-than-or-equal"
	FuncDoubleLessThan           = "urn:oasis:names:tc:xacml:1.0:function:double-less-than"
	FuncDoubleLessThanOrEqual    = "urn:oasis:names:tc:xacml:1.0:function:double-less-than-or-equal"

	FuncDateTimeGreaterThan        = "urn:oasis:names:tc:xacml:1.0:function:dateTime-greater-than"
	FuncDateTimeGreaterThanOrEqual = "urn:oasis:names:tc:xacml:1.0:function:dateTime-greater-than-or-equal"
	FuncDateTimeLessThan           = "urn:oasis:names:tc:xacml:1.0:function:dateTime-less-than"
	FuncDateTimeLessThanOrEqual    = "urn:oasis:names:tc:xacml:1.0:function:dateTime-less-than-or-equal"

	FuncDateGreaterThan        = "urn:oasis:names:tc:xacml:1.0:function:date-greater-than"
	FuncDateGreaterThanOrEqual = "urn:oasis:names:tc:xacml:1.0:function:date-greater-than-or-equal"
	FuncDateLessThan           = "urn:oasis:names:tc:xacml:1.0:function:date-less-than"
	FuncDateLessThanOrEqual    = "urn:oasis:names:tc:xacml:1.0:function:date-less-than-or-equal"

	FuncTimeGreaterThan        = "urn:oasis:names:tc:xacml:1.0:function:time-greater-than"
	FuncTimeGreaterThanOrEqual = "urn:oasis:names:tc:xacml:1.0:function:time-greater-than-or-equal"
	FuncTimeLessThan           = "urn:oasis:names:tc:xacml:1.0:function:time-less-than"
	FuncTimeLessThanOrEqual    = "urn:oasis:names:tc:xacml:1.0:function:time-less-than-or-equal"
)

// comparisonFunc builds a binary ordering function over any Comparable
// dataType. A NaN operand, or any type mismatch, yields a processing-error
// Indeterminate rather than a boolean.
func comparisonFunc(id string, accept func(cmp int) bool) *Function {
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
				return processingError(id + ": arguments must be scalar")
			}
			ca, ok := a.(value.Comparable)
			if !ok {
				return processingError(id + ": argument type is not ordered")
			}
			cmp, err := ca.Compare(b)
			if err != nil {
				return processingError(id + ": " + err.Error())
			}
			return boolResult(accept(cmp))
		},
	}
}

func registerOrderingGroup(gt, gte, lt, lte string) {
	registerFunction(comparisonFunc(gt, func(c int) bool { return c > 0 }))
	registerFunction(comparisonFunc(gte, func(c int) bool { return c >= 0 }))
	registerFunction(comparisonFunc(lt, func(c int) bool { return c < 0 }))
	registerFunction(comparisonFunc(lte, func(c int) bool { return c <= 0 }))
}

func init() {
	registerOrderingGroup(FuncIntegerGreaterThan, FuncIntegerGreaterThanOrEqual, FuncIntegerLessThan, FuncIntegerLessThanOrEqual)
	registerOrderingGroup(FuncDoubleGreaterThan, FuncDoubleGreaterThanOrEqual, FuncDoubleLessThan, FuncDoubleLessThanOrEqual)
	registerOrderingGroup(FuncDateTimeGreaterThan, FuncDateTimeGreaterThanOrEqual, FuncDateTimeLessThan, FuncDateTimeLessThanOrEqual)
	registerOrderingGroup(FuncDateGreaterThan, FuncDateGreaterThanOrEqual, FuncDateLessThan, FuncDateLessThanOrEqual)
	registerOrderingGroup(FuncTimeGreaterThan, FuncTimeGreaterThanOrEqual, FuncTimeLessThan, FuncTimeLessThanOrEqual)
}
