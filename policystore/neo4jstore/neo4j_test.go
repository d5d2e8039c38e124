package neo4jstore

import (
	"context"
	"testing"
)

// neo4j.NewDriverWithContext only validates the URI scheme and builds a
// connection pool lazily; it never dials the server until a session
// actually runs a query, so construction can be exercised without a
// live Neo4j instance.

func TestNewAcceptsWellFormedBoltURI(t *testing.T) {
	s, err := New("bolt://localhost:7687", "neo4j", "password")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close(context.Background())
	if s.driver == nil {
		t.Fatal("expected a non-nil driver")
	}
}

func TestNewRejectsUnknownURIScheme(t *testing.T) {
	if _, err := New("not-a-scheme://localhost", "neo4j", "password"); err == nil {
		t.Fatal("expected an error for an unrecognized URI scheme")
	}
}
