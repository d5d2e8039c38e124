package expr

import (
	"fmt"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// Node is the single dispatch point every expression tree element
// implements.
type Node interface {
	Eval(env *Env) value.Result
	ReturnType() string
	ReturnsBag() bool
}

// AttributeValueNode is a literal, eagerly parsed at policy-load time;
// a parse failure there is a policy-load error, never a runtime
// Indeterminate.
type AttributeValueNode struct {
	DataType string
	Val      value.Value
}

// NewAttributeValue parses literal as dataType at construction time,
// returning an error the loader should treat as a load-time refusal.
func NewAttributeValue(dataType, literal string) (*AttributeValueNode, error) {
	v, err := value.Parse(dataType, literal)
	if err != nil {
		return nil, fmt.Errorf("AttributeValue literal %q as %s: %w", literal, dataType, err)
	}
	return &AttributeValueNode{DataType: dataType, Val: v}, nil
}

func (n *AttributeValueNode) Eval(*Env) value.Result { return value.ValueResult(n.Val) }
func (n *AttributeValueNode) ReturnType() string     { return n.DataType }
func (n *AttributeValueNode) ReturnsBag() bool        { return false }

// DesignatorNode is an AttributeDesignator.
type DesignatorNode struct {
	Category      string
	AttributeID   string
	DataType      string
	Issuer        string
	MustBePresent bool
}

func (n *DesignatorNode) Eval(env *Env) value.Result {
	bag := env.Ctx.GetAttribute(n.Category, n.AttributeID, n.DataType, n.Issuer)
	if bag.Size() == 0 {
		if !n.MustBePresent {
			return value.BagResult(value.NewBag(n.DataType))
		}
		return value.IndeterminateMissing(n.Category, n.AttributeID, n.DataType, n.Issuer)
	}
	return value.BagResult(bag)
}
func (n *DesignatorNode) ReturnType() string { return n.DataType }
func (n *DesignatorNode) ReturnsBag() bool   { return true }

// SelectorNode is an AttributeSelector: it applies a (documented subset
// of) XPath over the category's preserved <Content> fragment. See
// selector.go for the path-evaluation subset.
type SelectorNode struct {
	Category      string
	Path          string
	DataType      string
	MustBePresent bool
}

func (n *SelectorNode) Eval(env *Env) value.Result {
	content, ok := env.Ctx.GetContent(n.Category)
	if !ok {
		if !n.MustBePresent {
			return value.BagResult(value.NewBag(n.DataType))
		}
		return value.Indeterminate(value.StatusMissingAttribute, "no Content for category "+n.Category)
	}
	values, err := evalSelectorPath(content.XML, n.Path, n.DataType)
	if err != nil {
		return value.Indeterminate(value.StatusSyntaxError, err.Error())
	}
	if len(values) == 0 {
		if !n.MustBePresent {
			return value.BagResult(value.NewBag(n.DataType))
		}
		return value.Indeterminate(value.StatusMissingAttribute, "selector path matched nothing: "+n.Path)
	}
	return value.BagResult(value.NewBag(n.DataType, values...))
}
func (n *SelectorNode) ReturnType() string { return n.DataType }
func (n *SelectorNode) ReturnsBag() bool   { return true }

// VariableRefNode resolves to a VariableDefinition in the enclosing
// Policy, memoized per evaluation.
type VariableRefNode struct {
	VariableID string
	DataType   string
	ReturnsBagFlag bool
}

func (n *VariableRefNode) Eval(env *Env) value.Result {
	if cached, ok := env.varCache[n.VariableID]; ok {
		return cached
	}
	def, ok := env.Vars[n.VariableID]
	if !ok {
		return value.Indeterminate(value.StatusProcessingError, "undefined variable: "+n.VariableID)
	}
	result := def.Eval(env)
	env.varCache[n.VariableID] = result
	return result
}
func (n *VariableRefNode) ReturnType() string { return n.DataType }
func (n *VariableRefNode) ReturnsBag() bool   { return n.ReturnsBagFlag }

// ApplyNode invokes a Function over evaluated (or, for short-circuit
// functions, lazily evaluated) argument nodes.
type ApplyNode struct {
	Function *Function
	Args     []Node
}

func (n *ApplyNode) Eval(env *Env) value.Result {
	return n.Function.Eval(env, n.Args)
}
func (n *ApplyNode) ReturnType() string { return n.Function.ReturnType }
func (n *ApplyNode) ReturnsBag() bool   { return n.Function.ReturnsBag }

// EvalArgs evaluates every arg and returns the results, or the first
// Indeterminate encountered: for non-short-circuit functions, any
// Indeterminate arg makes the whole application Indeterminate.
func EvalArgs(env *Env, args []Node) ([]value.Result, *value.Status) {
	results := make([]value.Result, len(args))
	for i, a := range args {
		r := a.Eval(env)
		if r.IsIndeterminate() {
			return nil, r.Status()
		}
		results[i] = r
	}
	return results, nil
}
