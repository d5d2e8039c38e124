package xmlio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/combine"
	"github.com/echo-xacml/pdp/internal/xacml/pdp"
	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func TestWriteResponsePermit(t *testing.T) {
	resp := &pdp.Response{Results: []pdp.Result{{Decision: combine.EffectPermit}}}
	var buf bytes.Buffer
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	if !strings.Contains(buf.String(), "<Decision>Permit</Decision>") {
		t.Fatalf("expected a Permit decision element, got %s", buf.String())
	}
}

func TestWriteResponseIndeterminateFlavor(t *testing.T) {
	resp := &pdp.Response{Results: []pdp.Result{{
		Indeterminate: true,
		Flavor:        value.FlavorDP,
		Status:        &value.Status{Code: value.StatusProcessingError, Message: "boom"},
	}}}
	var buf bytes.Buffer
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Indeterminate{DP}") {
		t.Fatalf("expected Indeterminate{DP}, got %s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Fatalf("expected the status message to be serialized, got %s", out)
	}
}

func TestWriteResponseObligationAssignments(t *testing.T) {
	resp := &pdp.Response{Results: []pdp.Result{{
		Decision: combine.EffectDeny,
		Obligations: []pdp.Obligation{{
			ID: "alert-security",
			Assignments: []pdp.AttributeAssignment{
				{AttributeID: "reason", DataType: value.TypeString, Value: value.StringValue("expired-task")},
			},
		}},
	}}}
	var buf bytes.Buffer
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatalf("WriteResponse: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `ObligationId="alert-security"`) || !strings.Contains(out, "expired-task") {
		t.Fatalf("expected the obligation and its assignment to be serialized, got %s", out)
	}
}
