package bloom

import "testing"

func TestAddThenMayContain(t *testing.T) {
	f := New(4)
	f.Add("subject|role")
	f.Add("resource|task-id")
	if !f.MayContain("subject|role") || !f.MayContain("resource|task-id") {
		t.Fatal("expected both added keys to test as present")
	}
}

func TestIntersectsEmptyKeysIsAlwaysTrue(t *testing.T) {
	f := New(4)
	f.Add("subject|role")
	if !f.Intersects(nil) {
		t.Fatal("an empty request key set must never be pruned: Intersects(nil) should be true")
	}
}

func TestIntersectsTrueWhenOneKeyOverlaps(t *testing.T) {
	f := New(4)
	f.Add("subject|role")
	if !f.Intersects([]string{"resource|task-id", "subject|role"}) {
		t.Fatal("expected Intersects to be true when one key overlaps")
	}
}

func TestIntersectsFalseWhenNoKeyOverlaps(t *testing.T) {
	f := New(4)
	f.Add("subject|role")
	f.Add("action|id")
	if f.Intersects([]string{"resource|task-id", "environment|zone"}) {
		t.Fatal("expected Intersects to be false when no key was ever added")
	}
}

func TestNeverFalseNegativeForAddedKeys(t *testing.T) {
	f := New(32)
	keys := []string{
		"subject|role", "subject|department", "resource|task-id", "resource|owner",
		"action|id", "environment|zone", "subject|clearance", "resource|status",
	}
	for _, k := range keys {
		f.Add(k)
	}
	for _, k := range keys {
		if !f.MayContain(k) {
			t.Fatalf("false negative for added key %q: a Bloom filter must never report an added key as absent", k)
		}
	}
}
