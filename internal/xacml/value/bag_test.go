package value

import "testing"

func TestSetEqualsIgnoresDuplicatesAndOrder(t *testing.T) {
	a := NewBag(TypeString, StringValue("a"), StringValue("b"), StringValue("a"))
	b := NewBag(TypeString, StringValue("b"), StringValue("a"))
	if !SetEquals(a, b) {
		t.Fatalf("expected set-equal bags despite duplicates/order: %+v vs %+v", a, b)
	}
}

func TestSetEqualsDetectsDifference(t *testing.T) {
	a := NewBag(TypeString, StringValue("a"), StringValue("b"))
	b := NewBag(TypeString, StringValue("a"), StringValue("c"))
	if SetEquals(a, b) {
		t.Fatalf("did not expect %+v to set-equal %+v", a, b)
	}
}

func TestIntersectionRespectsMultiplicity(t *testing.T) {
	a := NewBag(TypeString, StringValue("x"), StringValue("x"), StringValue("y"))
	b := NewBag(TypeString, StringValue("x"))
	inter := Intersection(a, b)
	if inter.Size() != 1 {
		t.Fatalf("expected intersection to consume the single matching element from b once, got size %d", inter.Size())
	}
}

func TestOneAndOnlyOnEmptyBagIsError(t *testing.T) {
	empty := NewBag(TypeString)
	if _, err := empty.OneAndOnly(); err == nil {
		t.Fatal("expected processing error for an empty bag")
	}
}

func TestBagContainsUsesValueEquality(t *testing.T) {
	b := NewBag(TypeHexBinary, HexBinaryValue([]byte{0x0f}))
	if !b.Contains(HexBinaryValue([]byte{0x0f})) {
		t.Fatal("expected Contains to match by decoded byte equality, not identity")
	}
}
