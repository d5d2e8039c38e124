package expr

import "github.com/echo-xacml/pdp/internal/xacml/value"

// bagFunctionSet is the family of *-bag-size/-is-in/-one-and-only/
// -intersection/-union/-subset/-set-equals functions defined once per
// dataType, since their semantics are identical modulo the element type.
type bagFunctionSet struct {
	dataType string
	prefix   string // e.g. "string" for urn:...:function:string-bag
}

func (s bagFunctionSet) id(suffix string) string {
	return "urn:oasis:names:tc:xacml:1.0:function:" + s.prefix + "-" + suffix
}

func (s bagFunctionSet) register() {
	registerFunction(&Function{
		ID: s.id("bag-size"), Arity: 1, ReturnType: value.TypeInteger,
		Eval: func(env *Env, args []Node) value.Result {
			b, status := evalSingleBag(env, args[0])
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			return value.ValueResult(value.NewInteger(int64(b.Size())))
		},
	})

	registerFunction(&Function{
		ID: s.id("is-in"), Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			elemResult := args[0].Eval(env)
			if elemResult.IsIndeterminate() {
				return value.IndeterminateFromStatus(elemResult.Status())
			}
			elem, ok := elemResult.Scalar()
			if !ok {
				return processingError(s.id("is-in") + ": first argument must be scalar")
			}
			b, status := evalSingleBag(env, args[1])
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			return boolResult(b.Contains(elem))
		},
	})

	registerFunction(&Function{
		ID: s.id("one-and-only"), Arity: 1, ReturnType: s.dataType,
		Eval: func(env *Env, args []Node) value.Result {
			b, status := evalSingleBag(env, args[0])
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			v, err := b.OneAndOnly()
			if err != nil {
				return processingError(s.id("one-and-only") + ": " + err.Error())
			}
			return value.ValueResult(v)
		},
	})

	registerFunction(&Function{
		ID: s.id("bag"), Arity: -1, ReturnType: s.dataType, ReturnsBag: true,
		Eval: func(env *Env, args []Node) value.Result {
			values := make([]value.Value, 0, len(args))
			for _, a := range args {
				r := a.Eval(env)
				if r.IsIndeterminate() {
					return value.IndeterminateFromStatus(r.Status())
				}
				v, ok := r.Scalar()
				if !ok {
					return processingError(s.id("bag") + ": argument must be scalar")
				}
				values = append(values, v)
			}
			return value.BagResult(value.NewBag(s.dataType, values...))
		},
	})

	registerFunction(&Function{
		ID: s.id("intersection"), Arity: 2, ReturnType: s.dataType, ReturnsBag: true,
		Eval: func(env *Env, args []Node) value.Result {
			a, b, status := evalTwoBags(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			return value.BagResult(value.Intersection(a, b))
		},
	})

	registerFunction(&Function{
		ID: s.id("union"), Arity: -1, ReturnType: s.dataType, ReturnsBag: true,
		Eval: func(env *Env, args []Node) value.Result {
			result := value.NewBag(s.dataType)
			for _, a := range args {
				b, status := evalSingleBag(env, a)
				if status != nil {
					return value.IndeterminateFromStatus(status)
				}
				result = value.Union(result, b)
			}
			return value.BagResult(result)
		},
	})

	registerFunction(&Function{
		ID: s.id("subset"), Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			a, b, status := evalTwoBags(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			return boolResult(value.Subset(a, b))
		},
	})

	registerFunction(&Function{
		ID: s.id("set-equals"), Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			a, b, status := evalTwoBags(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			return boolResult(value.SetEquals(a, b))
		},
	})
}

func evalSingleBag(env *Env, n Node) (*value.Bag, *value.Status) {
	r := n.Eval(env)
	if r.IsIndeterminate() {
		return nil, r.Status()
	}
	b, ok := r.Bag()
	if !ok {
		return nil, &value.Status{Code: value.StatusProcessingError, Message: "expected a bag"}
	}
	return b, nil
}

func evalTwoBags(env *Env, args []Node) (*value.Bag, *value.Bag, *value.Status) {
	a, status := evalSingleBag(env, args[0])
	if status != nil {
		return nil, nil, status
	}
	b, status := evalSingleBag(env, args[1])
	if status != nil {
		return nil, nil, status
	}
	return a, b, nil
}

func init() {
	for _, s := range []bagFunctionSet{
		{dataType: value.TypeString, prefix: "string"},
		{dataType: value.TypeBoolean, prefix: "boolean"},
		{dataType: value.TypeInteger, prefix: "integer"},
		{dataType: value.TypeDouble, prefix: "double"},
		{dataType: value.TypeDate, prefix: "date"},
		{dataType: value.TypeTime, prefix: "time"},
		{dataType: value.TypeDateTime, prefix: "dateTime"},
		{dataType: value.TypeAnyURI, prefix: "anyURI"},
		{dataType: value.TypeHexBinary, prefix: "hexBinary"},
		{dataType: value.TypeBase64, prefix: "base64Binary"},
	} {
		s.register()
	}
}
