package expr

import (
	"sync"

	"github.com/dlclark/regexp2"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

const (
	FuncStringRegexpMatch = "urn:oasis:names:tc:xacml:1.0:function:string-regexp-match"
	FuncAnyURIRegexpMatch = "urn:oasis:names:tc:xacml:2.0:function:anyURI-regexp-match"
)

// regexpCache memoizes compiled patterns across evaluations: policies
// reuse the same match expressions across many requests, and regexp2's
// compile step is comparatively expensive.
var regexpCache = struct {
	mu    sync.Mutex
	cache map[string]*regexp2.Regexp
}{cache: make(map[string]*regexp2.Regexp)}

func compileRegexp(pattern string) (*regexp2.Regexp, error) {
	regexpCache.mu.Lock()
	defer regexpCache.mu.Unlock()
	if re, ok := regexpCache.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	regexpCache.cache[pattern] = re
	return re, nil
}

func regexpMatchFunc(id string, extract func(value.Value) (string, bool)) *Function {
	return &Function{
		ID: id, Arity: 2, ReturnType: value.TypeBoolean,
		Eval: func(env *Env, args []Node) value.Result {
			results, status := EvalArgs(env, args)
			if status != nil {
				return value.IndeterminateFromStatus(status)
			}
			patternVal, pok := results[0].Scalar()
			pattern, psok := patternVal.(value.StringValue)
			if !pok || !psok {
				return processingError(id + ": pattern must be string")
			}
			subjectVal, sok := results[1].Scalar()
			if !sok {
				return processingError(id + ": subject must be scalar")
			}
			subject, ok := extract(subjectVal)
			if !ok {
				return processingError(id + ": subject type mismatch")
			}
			re, err := compileRegexp(string(pattern))
			if err != nil {
				return processingError(id + ": invalid regular expression: " + err.Error())
			}
			matched, err := re.MatchString(subject)
			if err != nil {
				return processingError(id + ": " + err.Error())
			}
			return boolResult(matched)
		},
	}
}

func init() {
	registerFunction(regexpMatchFunc(FuncStringRegexpMatch, func(v value.Value) (string, bool) {
		s, ok := v.(value.StringValue)
		return string(s), ok
	}))
	registerFunction(regexpMatchFunc(FuncAnyURIRegexpMatch, func(v value.Value) (string, bool) {
		s, ok := v.(value.AnyURIValue)
		return string(s), ok
	}))
}
