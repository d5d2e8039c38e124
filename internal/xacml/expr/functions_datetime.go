package expr

import "github.com/echo-xacml/pdp/internal/xacml/value"

const (
	FuncDateTimeAddDayTimeDuration      = "urn:oasis:names:tc:xacml:3.0:function:dateTime-add-dayTimeDuration"
	FuncDateTimeAddYearMonthDuration    = "urn:oasis:names:tc:xacml:3.0:function:dateTime-add-yearMonthDuration"
	FuncDateTimeSubtractDayTimeDuration = "urn:oasis:names:tc:xacml:3.0:function:dateTime-subtract-dayTimeDuration"
	FuncDateTimeSubtractYearMonthDur    = "urn:oasis:names:tc:xacml:3.0:function:dateTime-subtract-yearMonthDuration"
	FuncDateAddYearMonthDuration        = "urn:oasis:names:tc:xacml:3.0:function:date-add-yearMonthDuration"
	FuncDateSubtractYearMonthDuration   = "urn:oasis:names:tc:xacml:3.0:function:date-subtract-yearMonthDuration"
)

func init() {
	registerFunction(&Function{
		ID: FuncDateTimeAddDayTimeDuration, Arity: 2, ReturnType: value.TypeDateTime,
		Eval: dateTimeDayTimeShift(1),
	})
	registerFunction(&Function{
		ID: FuncDateTimeSubtractDayTimeDuration, Arity: 2, ReturnType: value.TypeDateTime,
		Eval: dateTimeDayTimeShift(-1),
	})
	registerFunction(&Function{
		ID: FuncDateTimeAddYearMonthDuration, Arity: 2, ReturnType: value.TypeDateTime,
		Eval: dateTimeYearMonthShift(1),
	})
	registerFunction(&Function{
		ID: FuncDateTimeSubtractYearMonthDur, Arity: 2, ReturnType: value.TypeDateTime,
		Eval: dateTimeYearMonthShift(-1),
	})
	registerFunction(&Function{
		ID: FuncDateAddYearMonthDuration, Arity: 2, ReturnType: value.TypeDate,
		Eval: dateYearMonthShift(1),
	})
	registerFunction(&Function{
		ID: FuncDateSubtractYearMonthDuration, Arity: 2, ReturnType: value.TypeDate,
		Eval: dateYearMonthShift(-1),
	})
}

func dateTimeDayTimeShift(sign int) EvalFunc {
	return func(env *Env, args []Node) value.Result {
		results, status := EvalArgs(env, args)
		if status != nil {
			return value.IndeterminateFromStatus(status)
		}
		dtVal, dok := results[0].Scalar()
		dv, dvok := dtVal.(value.DateTimeValue)
		durVal, durOK := results[1].Scalar()
		dur, durvok := durVal.(value.DayTimeDuration)
		if !dok || !dvok || !durOK || !durvok {
			return processingError("dateTime day-time shift: argument types must be (dateTime, dayTimeDuration)")
		}
		shift := dur.Signed()
		if sign < 0 {
			shift = -shift
		}
		return value.ValueResult(value.DateTimeValue{Instant: dv.Instant.Add(shift), HasZone: dv.HasZone})
	}
}

func dateTimeYearMonthShift(sign int) EvalFunc {
	return func(env *Env, args []Node) value.Result {
		results, status := EvalArgs(env, args)
		if status != nil {
			return value.IndeterminateFromStatus(status)
		}
		dtVal, dok := results[0].Scalar()
		dv, dvok := dtVal.(value.DateTimeValue)
		durVal, durOK := results[1].Scalar()
		dur, durvok := durVal.(value.YearMonthDuration)
		if !dok || !dvok || !durOK || !durvok {
			return processingError("dateTime year-month shift: argument types must be (dateTime, yearMonthDuration)")
		}
		months := dur.Signed()
		if sign < 0 {
			months = -months
		}
		return value.ValueResult(value.DateTimeValue{Instant: dv.Instant.AddDate(0, months, 0), HasZone: dv.HasZone})
	}
}

func dateYearMonthShift(sign int) EvalFunc {
	return func(env *Env, args []Node) value.Result {
		results, status := EvalArgs(env, args)
		if status != nil {
			return value.IndeterminateFromStatus(status)
		}
		dateVal, dok := results[0].Scalar()
		dv, dvok := dateVal.(value.DateValue)
		durVal, durOK := results[1].Scalar()
		dur, durvok := durVal.(value.YearMonthDuration)
		if !dok || !dvok || !durOK || !durvok {
			return processingError("date year-month shift: argument types must be (date, yearMonthDuration)")
		}
		months := dur.Signed()
		if sign < 0 {
			months = -months
		}
		totalMonths := (dv.Month - 1) + months
		year := dv.Year + totalMonths/12
		month := totalMonths%12 + 1
		if month <= 0 {
			month += 12
			year--
		}
		return value.ValueResult(value.DateValue{Year: year, Month: month, Day: dv.Day, HasZone: dv.HasZone, Zone: dv.Zone})
	}
}
