package pdp

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/echo-xacml/pdp/internal/xacml/bloom"
	"github.com/echo-xacml/pdp/internal/xacml/combine"
	xacmlctx "github.com/echo-xacml/pdp/internal/xacml/context"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	"github.com/echo-xacml/pdp/internal/xacml/policy"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// Config configures a PDP at construction time: its top-level policy
// set, the combining algorithm across top-level policies, and any
// additional attribute sources (custom PIPs) to append after the
// request's own attributes and the environment source in the finder
// chain.
type Config struct {
	Roots     []policy.Node
	Algorithm combine.Algorithm
	// Library holds policy/policy-set documents that are loaded and
	// indexed for PolicyIdReference/PolicySetIdReference resolution but
	// are not themselves evaluated as top-level roots.
	Library          []policy.Node
	AttributeSources []xacmlctx.AttributeSource
	// UseBloomFilter enables a per-root Bloom pre-filter over the
	// (category, AttributeId) pairs a root's Target designators
	// reference. It only ever prunes a root to NotApplicable when the
	// request's own declared attributes share none of those keys — it
	// never admits a false Applicable. Leave this off if required
	// attributes are commonly backfilled by a PIP rather than present
	// in the request body, since the filter only inspects the request.
	UseBloomFilter bool
}

// PDP is immutable after Init: policy documents are loaded once, and
// concurrent Evaluate calls share the same tree without locking it.
type PDP struct {
	roots     []policy.Node
	algorithm combine.Algorithm
	sources   []xacmlctx.AttributeSource
	byID      map[string]policy.Node
	filters   []*bloom.Filter // parallel to roots; nil entry means "no filter, always evaluate"
}

// Init validates and constructs a PDP from cfg: every Policy/PolicySet ID
// in the tree must be unique (duplicate IDs are a load-time error, not a
// runtime Indeterminate; Rule IDs are not checked here), and every
// PolicyIdReference/PolicySetIdReference must resolve against the loaded
// set.
func Init(cfg Config) (*PDP, error) {
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("pdp: at least one top-level policy is required")
	}
	if cfg.Algorithm == nil {
		return nil, fmt.Errorf("pdp: a top-level combining algorithm is required")
	}
	byID := make(map[string]policy.Node)
	for _, root := range cfg.Roots {
		if err := indexNode(root, byID); err != nil {
			return nil, err
		}
	}
	for _, lib := range cfg.Library {
		if err := indexNode(lib, byID); err != nil {
			return nil, err
		}
	}
	for id, n := range byID {
		if err := checkReferences(n, byID); err != nil {
			return nil, fmt.Errorf("pdp: policy %q: %w", id, err)
		}
	}
	var filters []*bloom.Filter
	if cfg.UseBloomFilter {
		filters = make([]*bloom.Filter, len(cfg.Roots))
		for i, root := range cfg.Roots {
			keys := designatorKeys(targetOf(root))
			if len(keys) == 0 {
				continue
			}
			f := bloom.New(len(keys))
			for _, k := range keys {
				f.Add(k)
			}
			filters[i] = f
		}
	}

	return &PDP{
		roots:     cfg.Roots,
		algorithm: cfg.Algorithm,
		sources:   cfg.AttributeSources,
		byID:      byID,
		filters:   filters,
	}, nil
}

// targetOf returns n's Target, or nil for a Reference (whose target is
// only known after resolution, so it never gets a pre-filter).
func targetOf(n policy.Node) *policy.Target {
	switch t := n.(type) {
	case *policy.Policy:
		return t.Target
	case *policy.PolicySet:
		return t.Target
	default:
		return nil
	}
}

// designatorKeys walks t's AnyOf/AllOf/Match tree and returns the
// "category|attributeId" keys of every plain AttributeDesignator match.
// If any Match is backed by something other than an AttributeDesignator
// (e.g. an AttributeSelector), it returns nil for the whole Target, so
// Init builds no filter for that root and the root is always evaluated.
func designatorKeys(t *policy.Target) []string {
	if t == nil {
		return nil
	}
	var keys []string
	for _, ao := range t.AnyOfs {
		for _, all := range ao.AllOfs {
			for _, m := range all.Matches {
				d, ok := m.Designator.(*expr.DesignatorNode)
				if !ok {
					return nil
				}
				keys = append(keys, d.Category+"|"+d.AttributeID)
			}
		}
	}
	return keys
}

// requestKeys lists the "category|attributeId" keys the request itself
// declares values for.
func requestKeys(req *xacmlctx.Request) []string {
	var keys []string
	for category, attrs := range req.Attributes {
		for _, a := range attrs {
			keys = append(keys, category+"|"+a.ID)
		}
	}
	return keys
}

func indexNode(n policy.Node, byID map[string]policy.Node) error {
	if _, isRef := n.(*policy.Reference); isRef {
		return nil
	}
	if n.ID() != "" {
		if _, dup := byID[n.ID()]; dup {
			return fmt.Errorf("pdp: duplicate policy identifier %q", n.ID())
		}
		byID[n.ID()] = n
	}
	if ps, ok := n.(*policy.PolicySet); ok {
		for _, child := range ps.Children {
			if err := indexNode(child, byID); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkReferences(n policy.Node, byID map[string]policy.Node) error {
	if ps, ok := n.(*policy.PolicySet); ok {
		for _, child := range ps.Children {
			if err := checkReferences(child, byID); err != nil {
				return err
			}
		}
		return nil
	}
	ref, ok := n.(*policy.Reference)
	if !ok {
		return nil
	}
	if _, ok := byID[ref.ReferencedID]; !ok {
		return fmt.Errorf("unresolved reference to %q", ref.ReferencedID)
	}
	return nil
}

func (p *PDP) Resolve(id string) (policy.Node, bool) {
	n, ok := p.byID[id]
	return n, ok
}

// Evaluate runs req through the loaded policy tree: top-level roots are
// Target-matched and evaluated concurrently (fan-out via errgroup),
// then reduced by the top-level combining algorithm, with obligations
// and advice collected from exactly the contributing nodes whose effect
// matches the overall decision. Runtime evaluation
// failures never surface as a Go error here — only Indeterminate
// Results — so the only error return is for a nil/malformed request.
func (p *PDP) Evaluate(ctx context.Context, req *xacmlctx.Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("pdp: nil request")
	}
	now := value.DateTimeValue{Instant: timeNow(), HasZone: true}
	sources := append([]xacmlctx.AttributeSource{xacmlctx.NewEnvironmentSource(now)}, p.sources...)
	rctx := xacmlctx.New(req, now, sources...)
	env := expr.NewEnv(rctx, nil)

	var reqKeys []string
	if p.filters != nil {
		reqKeys = requestKeys(req)
	}

	decisions := make([]combine.Decision, len(p.roots))
	g, _ := errgroup.WithContext(ctx)
	for i, root := range p.roots {
		i, root := i, root
		if p.filters != nil && p.filters[i] != nil && !p.filters[i].Intersects(reqKeys) {
			decisions[i] = combine.NotApplicable()
			continue
		}
		g.Go(func() error {
			decisions[i] = root.Eval(env, p)
			return nil
		})
	}
	_ = g.Wait() // root.Eval never returns a Go error; this only awaits completion

	overall := p.algorithm(decisions)
	result := buildResult(overall, p.roots, decisions, env, req.ReturnPolicyIdList)
	return &Response{Results: []Result{result}}, nil
}

// timeNow is a seam so tests can supply a fixed clock; production calls
// go through this indirection rather than calling time.Now() throughout
// the evaluator.
var timeNow = func() time.Time { return time.Now().UTC() }

func buildResult(overall combine.Decision, roots []policy.Node, decisions []combine.Decision, env *expr.Env, returnPolicyIdList bool) Result {
	r := Result{}
	switch {
	case !overall.Applicable:
		r.NotApplicable = true
		return r
	case overall.Indeterminate:
		r.Indeterminate = true
		r.Flavor = overall.Flavor
		r.Status = overall.Status
		return r
	}
	r.Decision = overall.Effect
	r.Status = overall.Status

	var failed bool
	for i, d := range decisions {
		if !d.Applicable || d.Indeterminate || d.Effect != overall.Effect {
			continue
		}
		identifiers, obligations, advice, ok := collect(roots[i], env, overall.Effect)
		if !ok {
			failed = true
			continue
		}
		if returnPolicyIdList {
			r.PolicyIdentifiers = append(r.PolicyIdentifiers, identifiers...)
		}
		r.Obligations = append(r.Obligations, obligations...)
		r.Advice = append(r.Advice, advice...)
	}
	if failed {
		// An ObligationExpression/AdviceExpression's AttributeAssignment
		// evaluated to Indeterminate. Fail closed: escalate rather than
		// emit a Response the PEP would enforce with a silently dropped
		// obligation.
		r.Decision = 0
		r.Obligations = nil
		r.Advice = nil
		r.PolicyIdentifiers = nil
		r.Indeterminate = true
		if overall.Effect == combine.EffectDeny {
			r.Flavor = value.FlavorD
		} else {
			r.Flavor = value.FlavorP
		}
		r.Status = &value.Status{Code: value.StatusProcessingError, Message: "obligation or advice expression evaluated to Indeterminate"}
	}
	return r
}

// collect walks a contributing root to gather the policy identifiers,
// obligations, and advice rooted there whose FulfillOn/AppliesTo effect
// matches the overall decision effect. ok is false if any matching
// obligation/advice expression evaluated to Indeterminate, in which case
// the caller must escalate rather than trust ids/obligations/advice.
func collect(n policy.Node, env *expr.Env, effect combine.Effect) (ids []string, obligations []Obligation, advice []Advice, ok bool) {
	switch t := n.(type) {
	case *policy.Policy:
		ids = append(ids, t.PolicyID)
		obl, oblOK := realizeObligations(t.Obligations, env, effect)
		adv, advOK := realizeAdvice(t.Advice, env, effect)
		obligations = append(obligations, obl...)
		advice = append(advice, adv...)
		ok = oblOK && advOK
	case *policy.PolicySet:
		ids = append(ids, t.PolicySetID)
		obl, oblOK := realizeObligations(t.Obligations, env, effect)
		adv, advOK := realizeAdvice(t.Advice, env, effect)
		obligations = append(obligations, obl...)
		advice = append(advice, adv...)
		ok = oblOK && advOK
		for _, c := range t.Children {
			childIDs, childObl, childAdv, childOK := collect(c, env, effect)
			ids = append(ids, childIDs...)
			obligations = append(obligations, childObl...)
			advice = append(advice, childAdv...)
			ok = ok && childOK
		}
	default:
		ok = true
	}
	return ids, obligations, advice, ok
}

func realizeObligations(defs []policy.ObligationExpression, env *expr.Env, effect combine.Effect) (out []Obligation, ok bool) {
	ok = true
	for _, def := range defs {
		if def.FulfillOn != effect {
			continue
		}
		assignments, assignOK := realizeAssignments(def.Assignments, env)
		if !assignOK {
			ok = false
			continue
		}
		out = append(out, Obligation{ID: def.ObligationID, Assignments: assignments})
	}
	return out, ok
}

func realizeAdvice(defs []policy.AdviceExpression, env *expr.Env, effect combine.Effect) (out []Advice, ok bool) {
	ok = true
	for _, def := range defs {
		if def.AppliesTo != effect {
			continue
		}
		assignments, assignOK := realizeAssignments(def.Assignments, env)
		if !assignOK {
			ok = false
			continue
		}
		out = append(out, Advice{ID: def.AdviceID, Assignments: assignments})
	}
	return out, ok
}

// realizeAssignments evaluates every AttributeAssignmentExpression. ok
// is false if any expression evaluated to Indeterminate, per the
// fail-closed contract: an obligation/advice with an unevaluable
// assignment must never be silently dropped nor silently truncated.
func realizeAssignments(defs []policy.AttributeAssignmentExpression, env *expr.Env) (out []AttributeAssignment, ok bool) {
	out = make([]AttributeAssignment, 0, len(defs))
	for _, def := range defs {
		r := def.Expression.Eval(env)
		if r.IsIndeterminate() {
			return nil, false
		}
		if v, ok := r.Scalar(); ok {
			out = append(out, AttributeAssignment{
				AttributeID: def.AttributeID, Category: def.Category, Issuer: def.Issuer,
				DataType: v.Type(), Value: v,
			})
			continue
		}
		if b, ok := r.Bag(); ok {
			for _, v := range b.Values {
				out = append(out, AttributeAssignment{
					AttributeID: def.AttributeID, Category: def.Category, Issuer: def.Issuer,
					DataType: v.Type(), Value: v,
				})
			}
		}
	}
	return out, true
}
