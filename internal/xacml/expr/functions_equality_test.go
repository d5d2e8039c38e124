package expr

import (
	"testing"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

func TestStringEqualIsCaseSensitive(t *testing.T) {
	r := apply(t, FuncStringEqual, strLit("Task"), strLit("task"))
	if ok, _ := r.AsBoolean(); ok {
		t.Fatalf("expected string-equal to be case-sensitive, got %+v", r)
	}
}

func TestIntegerGreaterThan(t *testing.T) {
	r := apply(t, FuncIntegerGreaterThan, intLit(5), intLit(3))
	if ok, _ := r.AsBoolean(); !ok {
		t.Fatalf("expected 5 > 3, got %+v", r)
	}
}

func TestDoubleComparisonOnNaNIsIndeterminate(t *testing.T) {
	nanNode := &literalNode{v: DoubleNaN()}
	r := apply(t, FuncDoubleGreaterThan, nanNode, &literalNode{v: value.DoubleValue(1)})
	if !r.IsIndeterminate() {
		t.Fatalf("expected Indeterminate when comparing NaN, got %+v", r)
	}
}

// DoubleNaN builds a NaN DoubleValue the same way the value package's own
// tests do, without depending on math.NaN.
func DoubleNaN() value.DoubleValue {
	var zero float64
	return value.DoubleValue(zero / zero)
}
