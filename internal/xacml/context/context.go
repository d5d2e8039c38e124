package context

import (
	"sync"

	"github.com/echo-xacml/pdp/internal/xacml/value"
)

// cacheKey is the full (category, id, dataType, issuer) tuple the cache
// must key on. Keying a cache only on (subject, resource, action) in a
// process-wide map would let two different attribute lookups for the
// same request — or the same lookup across two different requests —
// collide. The fix here is structural: the cache lives on Context,
// which is itself created fresh per evaluation and discarded with it,
// so there is no identity to leak across requests in the first place.
type cacheKey struct {
	category, id, dataType, issuer string
}

// Context is the per-evaluation Request Context: it owns the parsed
// Request, the attribute-finder chain, and a lookup cache scoped strictly
// to this evaluation's lifetime.
type Context struct {
	request *Request
	sources []AttributeSource
	now     value.DateTimeValue

	mu    sync.Mutex
	cache map[cacheKey]value.Result
}

// New builds a Context for one evaluation. sources is the ordered
// attribute-finder chain consulted after the Request's own attributes;
// now is the fixed current_date_time() for this evaluation.
func New(req *Request, now value.DateTimeValue, sources ...AttributeSource) *Context {
	return &Context{
		request: req,
		sources: sources,
		now:     now,
		cache:   make(map[cacheKey]value.Result),
	}
}

// CurrentDateTime returns the instant fixed for this evaluation.
func (c *Context) CurrentDateTime() value.DateTimeValue { return c.now }

// GetContent returns the opaque <Content> fragment for category, if any.
func (c *Context) GetContent(category string) (*ContentFragment, bool) {
	cf, ok := c.request.Content[category]
	return cf, ok
}

// GetAttribute implements the attribute-lookup operation: it returns the
// bag of values whose (category, id, dataType) match the Request's own
// attributes and whose issuer matches if supplied, falling back to the
// finder chain on a miss. An unresolved lookup yields an empty bag — it
// is the caller's (AttributeDesignator's) responsibility to interpret
// emptiness via mustBePresent.
func (c *Context) GetAttribute(category, id, dataType, issuer string) *value.Bag {
	key := cacheKey{category, id, dataType, issuer}

	c.mu.Lock()
	if cached, ok := c.cache[key]; ok {
		c.mu.Unlock()
		if bag, ok := cached.Bag(); ok {
			return bag
		}
		return value.NewBag(dataType)
	}
	c.mu.Unlock()

	bag := c.lookupRequestAttributes(category, id, dataType, issuer)
	if bag.Size() == 0 {
		for _, source := range c.sources {
			if found, ok := source.GetAttribute(category, id, dataType, issuer); ok && found.Size() > 0 {
				bag = found
				break
			}
		}
	}

	c.mu.Lock()
	c.cache[key] = value.BagResult(bag)
	c.mu.Unlock()

	return bag
}

func (c *Context) lookupRequestAttributes(category, id, dataType, issuer string) *value.Bag {
	var values []value.Value
	for _, attr := range c.request.Attributes[category] {
		if attr.ID != id || attr.DataType != dataType {
			continue
		}
		if issuer != "" && attr.Issuer != issuer {
			continue
		}
		values = append(values, attr.Values.Values...)
	}
	return value.NewBag(dataType, values...)
}
