package value

import "fmt"

// Bag is an unordered multiset of values of one dataType. Bags are never
// nested and the empty bag is a legal, distinct value.
type Bag struct {
	DataType string
	Values   []Value
}

// NewBag constructs a Bag, inferring the dataType from the first value if
// dataType is empty and values is non-empty.
func NewBag(dataType string, values ...Value) *Bag {
	if dataType == "" && len(values) > 0 {
		dataType = values[0].Type()
	}
	return &Bag{DataType: dataType, Values: values}
}

// Size returns the number of values in the bag (may contain duplicates).
func (b *Bag) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Values)
}

// Contains reports whether v (by Equal) is present in the bag.
func (b *Bag) Contains(v Value) bool {
	if b == nil {
		return false
	}
	for _, existing := range b.Values {
		if existing.Equal(v) {
			return true
		}
	}
	return false
}

// OneAndOnly returns the single element of a singleton bag, or a
// processing error if the bag's size is not exactly one.
func (b *Bag) OneAndOnly() (Value, error) {
	if b == nil || len(b.Values) != 1 {
		return nil, fmt.Errorf("bag does not contain exactly one value (size=%d)", b.Size())
	}
	return b.Values[0], nil
}

// Union returns the multiset union of a and b.
func Union(a, b *Bag) *Bag {
	dt := a.DataType
	if dt == "" {
		dt = b.DataType
	}
	out := make([]Value, 0, a.Size()+b.Size())
	out = append(out, a.Values...)
	out = append(out, b.Values...)
	return &Bag{DataType: dt, Values: out}
}

// Intersection returns the multiset intersection of a and b: for each value
// in a, it is included if b still "has" an unmatched equal element.
func Intersection(a, b *Bag) *Bag {
	dt := a.DataType
	if dt == "" {
		dt = b.DataType
	}
	remaining := append([]Value(nil), b.Values...)
	var out []Value
	for _, v := range a.Values {
		for i, r := range remaining {
			if r.Equal(v) {
				out = append(out, v)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return &Bag{DataType: dt, Values: out}
}

// Subset reports whether every distinct value in a also occurs in b
// (XACML *-subset semantics operate on sets, duplicates collapse).
func Subset(a, b *Bag) bool {
	for _, v := range dedupe(a.Values) {
		if !b.Contains(v) {
			return false
		}
	}
	return true
}

// SetEquals reports whether a and b contain the same distinct values.
func SetEquals(a, b *Bag) bool {
	return Subset(a, b) && Subset(b, a)
}

func dedupe(values []Value) []Value {
	var out []Value
	for _, v := range values {
		found := false
		for _, o := range out {
			if o.Equal(v) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
