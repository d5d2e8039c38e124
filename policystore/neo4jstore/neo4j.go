// Package neo4jstore loads Policy/PolicySet XML documents from Neo4j at
// PDP construction time. Each document is stored as one
// (:PolicyDocument) node whose properties hold its PolicyId, Version,
// top-level flag, and the raw XML body in a single property — so policy authoring and versioning stay in Neo4j's graph model
// (matching how this codebase keeps its other domain entities) while
// evaluation itself works over the in-memory policy.Node tree built
// once at startup. Nothing here is consulted per-request: a policy
// change takes effect on the next PDP rebuild, never mid-evaluation.
package neo4jstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/echo-xacml/pdp/internal/xacml/policy"
	"github.com/echo-xacml/pdp/internal/xacml/xmlio"
	"github.com/echo-xacml/pdp/internal/xacmlvalidate"
)

// Document is one stored policy/policy-set XML document.
type Document struct {
	PolicyID string
	Version  string
	XML      string
	// TopLevel marks a document as a root to hand to pdp.Config.Roots;
	// documents referenced only via PolicyIdReference/PolicySetIdReference
	// are loaded but not listed as roots.
	TopLevel bool
}

type Store struct {
	driver neo4j.DriverWithContext
}

func New(uri, username, password string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4jstore: failed to create driver: %w", err)
	}
	return &Store{driver: driver}, nil
}

func (s *Store) Close(ctx context.Context) error { return s.driver.Close(ctx) }

// PutDocument upserts one policy document, keyed by (PolicyId, Version).
func (s *Store) PutDocument(ctx context.Context, doc Document) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, `
			MERGE (d:PolicyDocument {policyId: $policyId, version: $version})
			SET d.xml = $xml, d.topLevel = $topLevel
		`, map[string]any{
			"policyId": doc.PolicyID,
			"version":  doc.Version,
			"xml":      doc.XML,
			"topLevel": doc.TopLevel,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("neo4jstore: failed to store policy document %q: %w", doc.PolicyID, err)
	}
	return nil
}

// LoadAll reads every stored document and parses it into a policy.Node,
// returning the top-level ones separately so callers can build
// pdp.Config.Roots without re-walking the whole set.
func (s *Store) LoadAll(ctx context.Context) (roots []policy.Node, all []policy.Node, err error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `MATCH (d:PolicyDocument) RETURN d.xml AS xml, d.topLevel AS topLevel`, nil)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("neo4jstore: failed to load policy documents: %w", err)
	}

	validator := xacmlvalidate.NewValidationUtil()
	for _, rec := range records.([]*neo4j.Record) {
		xmlBody, _ := rec.Get("xml")
		isTopLevel, _ := rec.Get("topLevel")

		node, err := xmlio.ParsePolicySet(strings.NewReader(xmlBody.(string)))
		if err != nil {
			return nil, nil, fmt.Errorf("neo4jstore: failed to parse stored policy document: %w", err)
		}
		if err := validateNode(validator, node); err != nil {
			return nil, nil, fmt.Errorf("neo4jstore: stored policy document failed validation: %w", err)
		}
		all = append(all, node)
		if b, ok := isTopLevel.(bool); ok && b {
			roots = append(roots, node)
		}
	}
	if len(roots) == 0 {
		return nil, nil, fmt.Errorf("neo4jstore: no top-level policy documents found")
	}
	return roots, all, nil
}

// validateNode applies the structural checks xacmlvalidate enforces on
// top of what xmlio's parse already guarantees, recursing into a
// PolicySet's children so a malformed nested Policy fails the whole
// document rather than surfacing only once evaluated.
func validateNode(v *xacmlvalidate.ValidationUtil, n policy.Node) error {
	switch t := n.(type) {
	case *policy.Policy:
		return v.ValidatePolicy(t)
	case *policy.PolicySet:
		if err := v.ValidatePolicySet(t); err != nil {
			return err
		}
		for _, child := range t.Children {
			if err := validateNode(v, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
