// Package context implements the XACML request context and attribute
// finder: parsed-Request-backed attribute lookup with a pluggable
// finder chain and a per-evaluation cache.
package context

import "github.com/echo-xacml/pdp/internal/xacml/value"

// Category URIs, per the XACML 3.0 core schema.
const (
	CategorySubject     = "urn:oasis:names:tc:xacml:1.0:subject-category:access-subject"
	CategoryResource    = "urn:oasis:names:tc:xacml:3.0:attribute-category:resource"
	CategoryAction      = "urn:oasis:names:tc:xacml:3.0:attribute-category:action"
	CategoryEnvironment = "urn:oasis:names:tc:xacml:3.0:attribute-category:environment"
)

// Attribute is one Request <Attribute>: a bag of values sharing a
// (category, id, dataType, issuer) identity.
type Attribute struct {
	Category        string
	ID              string
	DataType        string
	Issuer          string
	Values          *value.Bag
	IncludeInResult bool
}

// ContentFragment is an opaque, preserved XML fragment from a Request
// <Attributes>'s <Content> child, exposed to AttributeSelector: the PDP
// must not discard it even though full XPath 2.0 support is out of
// scope.
type ContentFragment struct {
	Category string
	XML      []byte
}

// Request is the parsed form of an XACML 3.0 Request.
type Request struct {
	// Attributes groups parsed <Attribute>s by category.
	Attributes map[string][]Attribute
	// Content holds the raw <Content> fragment per category, if present.
	Content map[string]*ContentFragment

	ReturnPolicyIdList bool
	CombinedDecision   bool
}

// NewRequest returns an empty Request ready to accept merged Attributes
// groups (duplicate category groups are unioned by the loader).
func NewRequest() *Request {
	return &Request{
		Attributes: make(map[string][]Attribute),
		Content:    make(map[string]*ContentFragment),
	}
}

// AddAttribute appends attr to its category group, merging with any
// existing attribute sharing (category, id, dataType, issuer) by unioning
// bags, so that duplicate declarations become one multi-valued bag.
func (r *Request) AddAttribute(attr Attribute) {
	group := r.Attributes[attr.Category]
	for i := range group {
		a := &group[i]
		if a.ID == attr.ID && a.DataType == attr.DataType && a.Issuer == attr.Issuer {
			a.Values = value.Union(a.Values, attr.Values)
			a.IncludeInResult = a.IncludeInResult || attr.IncludeInResult
			r.Attributes[attr.Category] = group
			return
		}
	}
	r.Attributes[attr.Category] = append(group, attr)
}
