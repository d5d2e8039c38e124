package combine

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func status(msg string) *value.Status {
	return &value.Status{Code: value.StatusProcessingError, Message: msg}
}

func TestDenyOverridesDenyWins(t *testing.T) {
	children := []Decision{Permit(), Deny(), NotApplicable()}
	got := DenyOverrides(children)
	if !got.Applicable || got.Indeterminate || got.Effect != EffectDeny {
		t.Fatalf("expected Deny, got %+v", got)
	}
}

func TestDenyOverridesIsMonotoneInDeny(t *testing.T) {
	// Once a Deny is present, no additional Indeterminate/Permit child
	// can turn the overall result into anything but Deny.
	base := []Decision{Deny()}
	extra := []Decision{IndeterminateD(status("x")), IndeterminateP(status("y")), Permit(), NotApplicable()}
	for _, e := range extra {
		got := DenyOverrides(append(base, e))
		if got.Effect != EffectDeny || got.Indeterminate {
			t.Fatalf("appending %+v broke Deny monotonicity: got %+v", e, got)
		}
	}
}

func TestDenyOverridesAllNotApplicable(t *testing.T) {
	got := DenyOverrides([]Decision{NotApplicable(), NotApplicable()})
	if got.Applicable {
		t.Fatalf("expected NotApplicable, got %+v", got)
	}
}

func TestDenyOverridesIndeterminateDPWhenBothEffectsStillPossible(t *testing.T) {
	got := DenyOverrides([]Decision{IndeterminateD(status("d")), IndeterminateP(status("p"))})
	if !got.Indeterminate || got.Flavor != value.FlavorDP {
		t.Fatalf("expected IndeterminateDP, got %+v", got)
	}
}

func TestPermitOverridesPermitWins(t *testing.T) {
	got := PermitOverrides([]Decision{Deny(), Permit()})
	if !got.Applicable || got.Indeterminate || got.Effect != EffectPermit {
		t.Fatalf("expected Permit, got %+v", got)
	}
}

func TestFirstApplicableSkipsNotApplicable(t *testing.T) {
	got := FirstApplicable([]Decision{NotApplicable(), Deny(), Permit()})
	if got.Effect != EffectDeny {
		t.Fatalf("expected first applicable Deny, got %+v", got)
	}
}

func TestFirstApplicableAllNotApplicable(t *testing.T) {
	got := FirstApplicable([]Decision{NotApplicable(), NotApplicable()})
	if got.Applicable {
		t.Fatalf("expected NotApplicable, got %+v", got)
	}
}

func TestOnlyOneApplicableRejectsMoreThanOne(t *testing.T) {
	got := OnlyOneApplicable([]Decision{Permit(), Deny()})
	if !got.Indeterminate || got.Flavor != value.FlavorDP {
		t.Fatalf("expected IndeterminateDP for two applicable children, got %+v", got)
	}
}

func TestOnlyOneApplicableSingleChild(t *testing.T) {
	got := OnlyOneApplicable([]Decision{NotApplicable(), Deny(), NotApplicable()})
	if got.Effect != EffectDeny || got.Indeterminate {
		t.Fatalf("expected the sole applicable Deny, got %+v", got)
	}
}

func TestDenyUnlessPermitNeverIndeterminateOrNotApplicable(t *testing.T) {
	cases := [][]Decision{
		{},
		{NotApplicable()},
		{IndeterminateD(status("x"))},
		{IndeterminateP(status("x"))},
		{IndeterminateD(status("x")), IndeterminateP(status("y"))},
		{Permit()},
		{Deny()},
	}
	for _, c := range cases {
		got := DenyUnlessPermit(c)
		if got.Indeterminate || !got.Applicable {
			t.Fatalf("DenyUnlessPermit(%+v) = %+v, want a determined Permit/Deny", c, got)
		}
	}
}

func TestDenyUnlessPermitPermitOnlyIfSomeChildIsPermit(t *testing.T) {
	if got := DenyUnlessPermit([]Decision{Permit(), Deny()}); got.Effect != EffectPermit {
		t.Fatalf("expected Permit, got %+v", got)
	}
	if got := DenyUnlessPermit([]Decision{IndeterminateP(status("x")), Deny()}); got.Effect != EffectDeny {
		t.Fatalf("Indeterminate should not count as Permit, got %+v", got)
	}
}

func TestPermitUnlessDenyIsDual(t *testing.T) {
	got := PermitUnlessDeny([]Decision{IndeterminateD(status("x"))})
	if got.Indeterminate || got.Effect != EffectPermit {
		t.Fatalf("Indeterminate should not count as Deny, got %+v", got)
	}
}

func TestDenyUnlessPermitFallbackCarriesAbsorbedStatus(t *testing.T) {
	missing := status("missing task_expires")
	got := DenyUnlessPermit([]Decision{IndeterminateP(missing)})
	if got.Effect != EffectDeny || got.Status != missing {
		t.Fatalf("expected the fallback Deny to carry the absorbed child Status, got %+v", got)
	}
}

func TestPermitUnlessDenyFallbackCarriesAbsorbedStatus(t *testing.T) {
	missing := status("missing task_expires")
	got := PermitUnlessDeny([]Decision{IndeterminateD(missing)})
	if got.Effect != EffectPermit || got.Status != missing {
		t.Fatalf("expected the fallback Permit to carry the absorbed child Status, got %+v", got)
	}
}
