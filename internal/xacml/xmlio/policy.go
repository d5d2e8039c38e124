package xmlio

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/expr"
	xpolicy "github.com/echo-xacml/pdp/internal/xacml/policy"
)

// ParsePolicySet decodes a top-level <Policy> or <PolicySet> document
// into a policy.Node. Combining-algorithm URIs are validated against the
// combine registry at load time: an unknown URI is a load error rather
// than a runtime Indeterminate.
func ParsePolicySet(r io.Reader) (xpolicy.Node, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("xmlio: empty policy document")
		}
		if err != nil {
			return nil, fmt.Errorf("xmlio: malformed policy XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "Policy":
			return parsePolicy(dec, start)
		case "PolicySet":
			return parsePolicySet(dec, start)
		default:
			return nil, fmt.Errorf("xmlio: unexpected root element %q", start.Name.Local)
		}
	}
}

func parsePolicy(dec *xml.Decoder, start xml.StartElement) (*xpolicy.Policy, error) {
	p := &xpolicy.Policy{
		PolicyID: attrString(start, "PolicyId"),
		Vars:     map[string]expr.Node{},
	}
	algURI := attrString(start, "RuleCombiningAlgId")
	alg, ok := combine.Lookup(algURI)
	if !ok {
		return nil, fmt.Errorf("xmlio: unknown RuleCombiningAlgId %q", algURI)
	}
	p.Algorithm = alg

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlio: malformed <Policy> body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Target":
				target, err := parseTarget(dec)
				if err != nil {
					return nil, err
				}
				p.Target = target
			case "Rule":
				rule, err := parseRule(dec, t, p.Vars)
				if err != nil {
					return nil, err
				}
				p.Rules = append(p.Rules, rule)
			case "VariableDefinition":
				id, node, err := parseVariableDefinition(dec, t, p.Vars)
				if err != nil {
					return nil, err
				}
				p.Vars[id] = node
			case "ObligationExpressions":
				obl, err := parseObligationExpressions(dec, p.Vars)
				if err != nil {
					return nil, err
				}
				p.Obligations = obl
			case "AdviceExpressions":
				adv, err := parseAdviceExpressions(dec, p.Vars)
				if err != nil {
					return nil, err
				}
				p.Advice = adv
			default:
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Policy" {
				if p.Target == nil {
					p.Target = &xpolicy.Target{}
				}
				return p, nil
			}
		}
	}
}

func parsePolicySet(dec *xml.Decoder, start xml.StartElement) (*xpolicy.PolicySet, error) {
	ps := &xpolicy.PolicySet{
		PolicySetID: attrString(start, "PolicySetId"),
		Vars:        map[string]expr.Node{},
	}
	algURI := attrString(start, "PolicyCombiningAlgId")
	alg, ok := combine.Lookup(algURI)
	if !ok {
		return nil, fmt.Errorf("xmlio: unknown PolicyCombiningAlgId %q", algURI)
	}
	ps.Algorithm = alg

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlio: malformed <PolicySet> body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Target":
				target, err := parseTarget(dec)
				if err != nil {
					return nil, err
				}
				ps.Target = target
			case "Policy":
				child, err := parsePolicy(dec, t)
				if err != nil {
					return nil, err
				}
				ps.Children = append(ps.Children, child)
			case "PolicySet":
				child, err := parsePolicySet(dec, t)
				if err != nil {
					return nil, err
				}
				ps.Children = append(ps.Children, child)
			case "PolicyIdReference", "PolicySetIdReference":
				text, err := elementCharData(dec, t.Name)
				if err != nil {
					return nil, err
				}
				ps.Children = append(ps.Children, &xpolicy.Reference{ReferencedID: text})
			default:
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "PolicySet" {
				if ps.Target == nil {
					ps.Target = &xpolicy.Target{}
				}
				return ps, nil
			}
		}
	}
}

func parseRule(dec *xml.Decoder, start xml.StartElement, vars map[string]expr.Node) (*xpolicy.Rule, error) {
	rule := &xpolicy.Rule{ID: attrString(start, "RuleId")}
	switch attrString(start, "Effect") {
	case "Permit":
		rule.Effect = combine.EffectPermit
	case "Deny":
		rule.Effect = combine.EffectDeny
	default:
		return nil, fmt.Errorf("xmlio: Rule %q has invalid Effect", rule.ID)
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("xmlio: malformed <Rule> body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Target":
				target, err := parseTarget(dec)
				if err != nil {
					return nil, err
				}
				rule.Target = target
			case "Condition":
				cond, err := parseConditionOrExpressionChild(dec, t.Name)
				if err != nil {
					return nil, err
				}
				rule.Condition = cond
			case "ObligationExpressions":
				obl, err := parseObligationExpressions(dec, vars)
				if err != nil {
					return nil, err
				}
				rule.Obligations = obl
			case "AdviceExpressions":
				adv, err := parseAdviceExpressions(dec, vars)
				if err != nil {
					return nil, err
				}
				rule.Advice = adv
			default:
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Rule" {
				if rule.Target == nil {
					rule.Target = &xpolicy.Target{}
				}
				return rule, nil
			}
		}
	}
}

// parseConditionOrExpressionChild reads a <Condition> (or any other
// element wrapping exactly one expression child) and returns that one
// child parsed as an expr.Node.
func parseConditionOrExpressionChild(dec *xml.Decoder, wrapper xml.Name) (expr.Node, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node, err := parseExpression(dec, t)
			if err != nil {
				return nil, err
			}
			if err := consumeUntilEnd(dec, wrapper); err != nil {
				return nil, err
			}
			return node, nil
		case xml.EndElement:
			if t.Name == wrapper {
				return nil, fmt.Errorf("xmlio: %s has no expression child", wrapper.Local)
			}
		}
	}
}

func consumeUntilEnd(dec *xml.Decoder, name xml.Name) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name == name {
			return nil
		}
	}
}

// parseExpression is the polymorphic expression-tree decoder: dispatch
// on the element's local name rather than struct tags, since Apply's
// children are themselves arbitrary expressions.
func parseExpression(dec *xml.Decoder, start xml.StartElement) (expr.Node, error) {
	switch start.Name.Local {
	case "AttributeValue":
		dataType := attrString(start, "DataType")
		text, err := elementCharData(dec, start.Name)
		if err != nil {
			return nil, err
		}
		return expr.NewAttributeValue(dataType, text)
	case "AttributeDesignator":
		node := &expr.DesignatorNode{
			Category:      attrString(start, "Category"),
			AttributeID:   attrString(start, "AttributeId"),
			DataType:      attrString(start, "DataType"),
			Issuer:        attrString(start, "Issuer"),
			MustBePresent: attrBool(start, "MustBePresent"),
		}
		if err := skipElement(dec, start.Name); err != nil {
			return nil, err
		}
		return node, nil
	case "AttributeSelector":
		node := &expr.SelectorNode{
			Category:      attrString(start, "Category"),
			Path:          attrString(start, "Path"),
			DataType:      attrString(start, "DataType"),
			MustBePresent: attrBool(start, "MustBePresent"),
		}
		if err := skipElement(dec, start.Name); err != nil {
			return nil, err
		}
		return node, nil
	case "VariableReference":
		return &expr.VariableRefNode{VariableID: attrString(start, "VariableId")}, nil
	case "Apply":
		return parseApply(dec, start)
	case "Function":
		id := attrString(start, "FunctionId")
		fn, ok := expr.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("xmlio: unknown FunctionId %q", id)
		}
		if err := skipElement(dec, start.Name); err != nil {
			return nil, err
		}
		return &expr.FunctionRefNode{Fn: fn}, nil
	default:
		return nil, fmt.Errorf("xmlio: unsupported expression element %q", start.Name.Local)
	}
}

func parseApply(dec *xml.Decoder, start xml.StartElement) (expr.Node, error) {
	id := attrString(start, "FunctionId")
	fn, ok := expr.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("xmlio: unknown FunctionId %q", id)
	}
	var args []expr.Node
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			arg, err := parseExpression(dec, t)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		case xml.EndElement:
			if t.Name.Local == "Apply" {
				return &expr.ApplyNode{Function: fn, Args: args}, nil
			}
		}
	}
}

func parseVariableDefinition(dec *xml.Decoder, start xml.StartElement, vars map[string]expr.Node) (string, expr.Node, error) {
	id := attrString(start, "VariableId")
	node, err := parseConditionOrExpressionChild(dec, start.Name)
	if err != nil {
		return "", nil, err
	}
	return id, node, nil
}

func parseTarget(dec *xml.Decoder) (*xpolicy.Target, error) {
	target := &xpolicy.Target{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "AnyOf" {
				anyOf, err := parseAnyOf(dec)
				if err != nil {
					return nil, err
				}
				target.AnyOfs = append(target.AnyOfs, anyOf)
			} else {
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Target" {
				return target, nil
			}
		}
	}
}

func parseAnyOf(dec *xml.Decoder) (*xpolicy.AnyOf, error) {
	anyOf := &xpolicy.AnyOf{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "AllOf" {
				allOf, err := parseAllOf(dec)
				if err != nil {
					return nil, err
				}
				anyOf.AllOfs = append(anyOf.AllOfs, allOf)
			} else {
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "AnyOf" {
				return anyOf, nil
			}
		}
	}
}

func parseAllOf(dec *xml.Decoder) (*xpolicy.AllOf, error) {
	allOf := &xpolicy.AllOf{}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Match" {
				match, err := parseMatch(dec, t)
				if err != nil {
					return nil, err
				}
				allOf.Matches = append(allOf.Matches, match)
			} else {
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "AllOf" {
				return allOf, nil
			}
		}
	}
}

func parseMatch(dec *xml.Decoder, start xml.StartElement) (*xpolicy.Match, error) {
	id := attrString(start, "MatchId")
	fn, ok := expr.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("xmlio: unknown MatchId %q", id)
	}
	match := &xpolicy.Match{MatchFunction: fn}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "AttributeValue":
				dataType := attrString(t, "DataType")
				text, err := elementCharData(dec, t.Name)
				if err != nil {
					return nil, err
				}
				node, err := expr.NewAttributeValue(dataType, text)
				if err != nil {
					return nil, err
				}
				match.AttributeVal = node
			case "AttributeDesignator":
				match.Category = attrString(t, "Category")
				node := &expr.DesignatorNode{
					Category:      attrString(t, "Category"),
					AttributeID:   attrString(t, "AttributeId"),
					DataType:      attrString(t, "DataType"),
					Issuer:        attrString(t, "Issuer"),
					MustBePresent: attrBool(t, "MustBePresent"),
				}
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
				match.Designator = node
			case "AttributeSelector":
				match.Category = attrString(t, "Category")
				node := &expr.SelectorNode{
					Category:      attrString(t, "Category"),
					Path:          attrString(t, "Path"),
					DataType:      attrString(t, "DataType"),
					MustBePresent: attrBool(t, "MustBePresent"),
				}
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
				match.Designator = node
			default:
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Match" {
				return match, nil
			}
		}
	}
}

func parseObligationExpressions(dec *xml.Decoder, vars map[string]expr.Node) ([]xpolicy.ObligationExpression, error) {
	var out []xpolicy.ObligationExpression
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "ObligationExpression" {
				obl, err := parseOneObligation(dec, t)
				if err != nil {
					return nil, err
				}
				out = append(out, obl)
			} else {
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "ObligationExpressions" {
				return out, nil
			}
		}
	}
}

func parseOneObligation(dec *xml.Decoder, start xml.StartElement) (xpolicy.ObligationExpression, error) {
	obl := xpolicy.ObligationExpression{ObligationID: attrString(start, "ObligationId")}
	switch attrString(start, "FulfillOn") {
	case "Permit":
		obl.FulfillOn = combine.EffectPermit
	case "Deny":
		obl.FulfillOn = combine.EffectDeny
	default:
		return obl, fmt.Errorf("xmlio: ObligationExpression %q has invalid FulfillOn", obl.ObligationID)
	}
	assignments, err := parseAttributeAssignmentExpressions(dec, start.Name)
	if err != nil {
		return obl, err
	}
	obl.Assignments = assignments
	return obl, nil
}

func parseAdviceExpressions(dec *xml.Decoder, vars map[string]expr.Node) ([]xpolicy.AdviceExpression, error) {
	var out []xpolicy.AdviceExpression
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "AdviceExpression" {
				adv, err := parseOneAdvice(dec, t)
				if err != nil {
					return nil, err
				}
				out = append(out, adv)
			} else {
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "AdviceExpressions" {
				return out, nil
			}
		}
	}
}

func parseOneAdvice(dec *xml.Decoder, start xml.StartElement) (xpolicy.AdviceExpression, error) {
	adv := xpolicy.AdviceExpression{AdviceID: attrString(start, "AdviceId")}
	switch attrString(start, "AppliesTo") {
	case "Permit":
		adv.AppliesTo = combine.EffectPermit
	case "Deny":
		adv.AppliesTo = combine.EffectDeny
	default:
		return adv, fmt.Errorf("xmlio: AdviceExpression %q has invalid AppliesTo", adv.AdviceID)
	}
	assignments, err := parseAttributeAssignmentExpressions(dec, start.Name)
	if err != nil {
		return adv, err
	}
	adv.Assignments = assignments
	return adv, nil
}

func parseAttributeAssignmentExpressions(dec *xml.Decoder, wrapper xml.Name) ([]xpolicy.AttributeAssignmentExpression, error) {
	var out []xpolicy.AttributeAssignmentExpression
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "AttributeAssignmentExpression" {
				a := xpolicy.AttributeAssignmentExpression{
					AttributeID: attrString(t, "AttributeId"),
					Category:    attrString(t, "Category"),
					Issuer:      attrString(t, "Issuer"),
				}
				for {
					innerTok, err := dec.Token()
					if err != nil {
						return nil, err
					}
					if innerStart, ok := innerTok.(xml.StartElement); ok {
						node, err := parseExpression(dec, innerStart)
						if err != nil {
							return nil, err
						}
						a.Expression = node
						if err := consumeUntilEnd(dec, t.Name); err != nil {
							return nil, err
						}
						break
					}
					if end, ok := innerTok.(xml.EndElement); ok && end.Name == t.Name {
						break
					}
				}
				out = append(out, a)
			} else {
				if err := skipElement(dec, t.Name); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name == wrapper {
				return out, nil
			}
		}
	}
}
