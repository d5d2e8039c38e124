// Package combine implements the XACML 3.0 rule- and policy-combining
// algorithms: deny-overrides, permit-overrides, first-applicable,
// only-one-applicable, deny-unless-permit, permit-unless-deny, and their
// ordered-* URI aliases.
package combine

import "github.com/echo-xacml/pdp/internal/xacml/value"

// Effect is a Rule's or decision's Permit/Deny outcome.
type Effect int

const (
	EffectDeny Effect = iota
	EffectPermit
)

func (e Effect) String() string {
	if e == EffectPermit {
		return "Permit"
	}
	return "Deny"
}

// Decision is one child's evaluated outcome fed into a combining
// algorithm: either a determined Effect, or NotApplicable, or
// Indeterminate carrying the flavor of effect(s) it could still have
// produced.
type Decision struct {
	Applicable    bool
	Effect        Effect
	Indeterminate bool
	Flavor        value.Flavor
	Status        *value.Status
	Obligations   []int // indices into the caller's obligation/advice slices, kept opaque here
}

func NotApplicable() Decision { return Decision{Applicable: false} }

func Permit() Decision { return Decision{Applicable: true, Effect: EffectPermit} }

func Deny() Decision { return Decision{Applicable: true, Effect: EffectDeny} }

func IndeterminateD(status *value.Status) Decision {
	return Decision{Applicable: true, Indeterminate: true, Flavor: value.FlavorD, Status: status}
}

func IndeterminateP(status *value.Status) Decision {
	return Decision{Applicable: true, Indeterminate: true, Flavor: value.FlavorP, Status: status}
}

func IndeterminateDP(status *value.Status) Decision {
	return Decision{Applicable: true, Indeterminate: true, Flavor: value.FlavorDP, Status: status}
}

// Algorithm combines a slice of child Decisions into one overall Decision.
type Algorithm func(children []Decision) Decision

// URIs for the standard combining algorithms, both unordered and
// ordered variants (the ordered variants combine in document order,
// which callers already guarantee since children is a plain slice).
const (
	URIDenyOverrides        = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:deny-overrides"
	URIOrderedDenyOverrides = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:ordered-deny-overrides"
	URIPermitOverrides        = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:permit-overrides"
	URIOrderedPermitOverrides = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:ordered-permit-overrides"
	URIFirstApplicable   = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:first-applicable"
	URIOnlyOneApplicable = "urn:oasis:names:tc:xacml:1.0:policy-combining-algorithm:only-one-applicable"
	URIDenyUnlessPermit  = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:deny-unless-permit"
	URIPermitUnlessDeny  = "urn:oasis:names:tc:xacml:3.0:policy-combining-algorithm:permit-unless-deny"

	URIRuleDenyOverrides        = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:deny-overrides"
	URIRuleOrderedDenyOverrides = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:ordered-deny-overrides"
	URIRulePermitOverrides        = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:permit-overrides"
	URIRuleOrderedPermitOverrides = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:ordered-permit-overrides"
	URIRuleFirstApplicable = "urn:oasis:names:tc:xacml:1.0:rule-combining-algorithm:first-applicable"
	URIRuleDenyUnlessPermit = "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:deny-unless-permit"
	URIRulePermitUnlessDeny = "urn:oasis:names:tc:xacml:3.0:rule-combining-algorithm:permit-unless-deny"
)

var registry = map[string]Algorithm{
	URIDenyOverrides:        DenyOverrides,
	URIOrderedDenyOverrides: DenyOverrides,
	URIRuleDenyOverrides:        DenyOverrides,
	URIRuleOrderedDenyOverrides: DenyOverrides,

	URIPermitOverrides:        PermitOverrides,
	URIOrderedPermitOverrides: PermitOverrides,
	URIRulePermitOverrides:        PermitOverrides,
	URIRuleOrderedPermitOverrides: PermitOverrides,

	URIFirstApplicable:     FirstApplicable,
	URIRuleFirstApplicable: FirstApplicable,

	URIOnlyOneApplicable: OnlyOneApplicable,

	URIDenyUnlessPermit:     DenyUnlessPermit,
	URIRuleDenyUnlessPermit: DenyUnlessPermit,

	URIPermitUnlessDeny:     PermitUnlessDeny,
	URIRulePermitUnlessDeny: PermitUnlessDeny,
}

// Lookup resolves a combining-algorithm URI. Policy/PolicySet loading
// must reject an unknown URI at load time.
func Lookup(uri string) (Algorithm, bool) {
	a, ok := registry[uri]
	return a, ok
}
