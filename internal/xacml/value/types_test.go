package value

import "testing"

func TestDoubleNaNNotEqual(t *testing.T) {
	nan := DoubleValue(nan())
	if nan.Equal(nan) {
		t.Fatal("NaN must not equal itself")
	}
}

func TestDoubleNaNCompareIsError(t *testing.T) {
	nan := DoubleValue(nan())
	one := DoubleValue(1.0)
	if _, err := nan.Compare(one); err == nil {
		t.Fatal("ordering a NaN must be an error")
	}
	if _, err := one.Compare(nan); err == nil {
		t.Fatal("ordering against a NaN must be an error regardless of side")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestIntegerEqualityIsArbitraryWidth(t *testing.T) {
	huge := "123456789012345678901234567890"
	a, err := Parse(TypeInteger, huge)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := Parse(TypeInteger, huge)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal arbitrary-width integers")
	}
}

func TestDateTimeRequiresTimezone(t *testing.T) {
	if _, err := ParseDateTime("2024-01-01T00:00:00"); err == nil {
		t.Fatal("dateTime literal without a timezone designator must be a syntax error")
	}
	if _, err := ParseDateTime("2024-01-01T00:00:00Z"); err != nil {
		t.Fatalf("valid dateTime literal should parse: %v", err)
	}
	if _, err := ParseDateTime("2024-01-01T00:00:00+05:00"); err != nil {
		t.Fatalf("valid dateTime literal with offset should parse: %v", err)
	}
}

func TestHexBinaryEqualityByDecodedBytes(t *testing.T) {
	a, err := Parse(TypeHexBinary, "0F")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := Parse(TypeHexBinary, "0f")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatal("hexBinary equality should be case-insensitive since it compares decoded bytes")
	}
}

func TestAnyURICanonicalizesPercentEscapeCasing(t *testing.T) {
	a, err := Parse(TypeAnyURI, "http://example.com/%2f")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := Parse(TypeAnyURI, "http://example.com/%2F")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !a.Equal(b) {
		t.Fatal("anyURI equality should canonicalize percent-escape casing")
	}
}
