package combine

import "github.com/echo-xacml/pdp/internal/xacml/value"

// DenyOverrides: Deny wins if any child is Deny or could still be Deny
// (IndeterminateD/DP). Otherwise Permit wins if any child is Permit or
// could still be Permit but none of the remaining children could have
// been Deny. This is the XACML 3.0 "deny-overrides" reduction table,
// and it is monotone in a determined Deny: no later child result can
// turn an already-final Deny into anything else.
func DenyOverrides(children []Decision) Decision {
	sawPermit := false
	sawIndeterminateD := false
	sawIndeterminateP := false
	sawIndeterminateDP := false
	for _, c := range children {
		if !c.Applicable {
			continue
		}
		if c.Indeterminate {
			switch c.Flavor {
			case value.FlavorD:
				sawIndeterminateD = true
			case value.FlavorP:
				sawIndeterminateP = true
			case value.FlavorDP:
				sawIndeterminateDP = true
			}
			continue
		}
		if c.Effect == EffectDeny {
			return c
		}
		sawPermit = true
	}
	if sawIndeterminateDP || (sawIndeterminateD && sawIndeterminateP) || (sawIndeterminateD && sawPermit) {
		return IndeterminateDP(processingStatus("an Indeterminate child could still resolve to the overriding effect"))
	}
	if sawIndeterminateD {
		return IndeterminateD(processingStatus("an Indeterminate child could still resolve to the overriding effect"))
	}
	if sawPermit {
		return Permit()
	}
	if sawIndeterminateP {
		return IndeterminateP(processingStatus("an Indeterminate child could still resolve to the non-overriding effect"))
	}
	return NotApplicable()
}

// PermitOverrides is DenyOverrides with Permit/Deny swapped.
func PermitOverrides(children []Decision) Decision {
	swapped := make([]Decision, len(children))
	for i, c := range children {
		swapped[i] = swapEffect(c)
	}
	result := DenyOverrides(swapped)
	return swapEffect(result)
}

func swapEffect(d Decision) Decision {
	if !d.Applicable {
		return d
	}
	if d.Indeterminate {
		switch d.Flavor {
		case value.FlavorD:
			d.Flavor = value.FlavorP
		case value.FlavorP:
			d.Flavor = value.FlavorD
		}
		return d
	}
	if d.Effect == EffectDeny {
		d.Effect = EffectPermit
	} else {
		d.Effect = EffectDeny
	}
	return d
}

// FirstApplicable returns the first child whose decision is not
// NotApplicable, evaluated in document order.
func FirstApplicable(children []Decision) Decision {
	for _, c := range children {
		if c.Applicable {
			return c
		}
	}
	return NotApplicable()
}

// OnlyOneApplicable requires exactly one child to be applicable (i.e.
// its Target matches); it is an error — Indeterminate — if more than one
// applies, per the XACML 3.0 normative definition.
func OnlyOneApplicable(children []Decision) Decision {
	var applicable []Decision
	for _, c := range children {
		if c.Applicable {
			applicable = append(applicable, c)
		}
	}
	switch len(applicable) {
	case 0:
		return NotApplicable()
	case 1:
		return applicable[0]
	default:
		return IndeterminateDP(processingStatus("only-one-applicable: more than one child policy was applicable"))
	}
}

// DenyUnlessPermit: Permit if any child is Permit, Deny otherwise —
// Indeterminate is treated as Deny, never propagated as its own
// Decision. The Deny fallback still carries the first Indeterminate
// child's Status, so a caller that asked for a missing attribute still
// sees which one even though the overall Decision came out definite.
func DenyUnlessPermit(children []Decision) Decision {
	var absorbedStatus *value.Status
	for _, c := range children {
		if !c.Applicable {
			continue
		}
		if c.Indeterminate {
			if absorbedStatus == nil {
				absorbedStatus = c.Status
			}
			continue
		}
		if c.Effect == EffectPermit {
			return Permit()
		}
	}
	d := Deny()
	d.Status = absorbedStatus
	return d
}

// PermitUnlessDeny is the Permit/Deny-swapped dual of DenyUnlessPermit.
func PermitUnlessDeny(children []Decision) Decision {
	var absorbedStatus *value.Status
	for _, c := range children {
		if !c.Applicable {
			continue
		}
		if c.Indeterminate {
			if absorbedStatus == nil {
				absorbedStatus = c.Status
			}
			continue
		}
		if c.Effect == EffectDeny {
			return Deny()
		}
	}
	p := Permit()
	p.Status = absorbedStatus
	return p
}

func processingStatus(msg string) *value.Status {
	return &value.Status{Code: value.StatusProcessingError, Message: msg}
}
