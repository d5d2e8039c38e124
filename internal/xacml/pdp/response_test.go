package pdp

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func TestSyntaxErrorResponseIsIndeterminate(t *testing.T) {
	resp := SyntaxErrorResponse("unknown dataType")
	if len(resp.Results) != 1 {
		t.Fatalf("expected exactly one Result, got %d", len(resp.Results))
	}
	r := resp.Results[0]
	if !r.Indeterminate || r.Status == nil || r.Status.Code != value.StatusSyntaxError {
		t.Fatalf("expected an Indeterminate syntax-error Result, got %+v", r)
	}
}
