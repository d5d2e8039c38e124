// Package filestore loads Policy/PolicySet XML documents listed in a
// YAML manifest under config.PDPConfiguration.PolicyDir. It exists for
// the same reason neo4jstore exists for the live deployment: integration
// tests and local bootstraps need a PDP built from a known, versioned
// set of documents without standing up Neo4j. A manifest entry is just
// a pointer to a sibling XML file plus whether it's a top-level root,
// mirroring neo4jstore.Document's TopLevel field.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/echo-xacml/pdp/internal/xacml/policy"
	"github.com/echo-xacml/pdp/internal/xacml/xmlio"
	"github.com/echo-xacml/pdp/internal/xacmlvalidate"
)

// ManifestEntry names one policy/policy-set document relative to the
// manifest's own directory.
type ManifestEntry struct {
	File     string `yaml:"file"`
	TopLevel bool   `yaml:"topLevel"`
}

// Manifest is the root of manifest.yaml: the ordered list of documents
// a directory of fixture policies contributes to a PDP build.
type Manifest struct {
	Documents []ManifestEntry `yaml:"documents"`
}

// LoadAll reads manifest.yaml from dir, parses every listed XML
// document, and returns the top-level roots separately, exactly like
// neo4jstore.Store.LoadAll's return shape so callers can swap backends
// without touching pdp.Config construction.
func LoadAll(dir string) (roots []policy.Node, all []policy.Node, err error) {
	manifestPath := filepath.Join(dir, "manifest.yaml")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("filestore: failed to read %s: %w", manifestPath, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, nil, fmt.Errorf("filestore: failed to parse %s: %w", manifestPath, err)
	}
	if len(m.Documents) == 0 {
		return nil, nil, fmt.Errorf("filestore: %s lists no documents", manifestPath)
	}

	validator := xacmlvalidate.NewValidationUtil()
	for _, entry := range m.Documents {
		docPath := filepath.Join(dir, entry.File)
		body, err := os.ReadFile(docPath)
		if err != nil {
			return nil, nil, fmt.Errorf("filestore: failed to read %s: %w", docPath, err)
		}
		node, err := xmlio.ParsePolicySet(strings.NewReader(string(body)))
		if err != nil {
			return nil, nil, fmt.Errorf("filestore: failed to parse %s: %w", docPath, err)
		}
		if err := validateNode(validator, node); err != nil {
			return nil, nil, fmt.Errorf("filestore: %s failed validation: %w", docPath, err)
		}
		all = append(all, node)
		if entry.TopLevel {
			roots = append(roots, node)
		}
	}
	if len(roots) == 0 {
		return nil, nil, fmt.Errorf("filestore: %s lists no top-level document", manifestPath)
	}
	return roots, all, nil
}

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
