package context

import "github.com/echo-xacml/pdp/internal/xacml/value"

// AttributeSource is a pluggable attribute-finder module (environment,
// selector-backed, or a custom PIP). The finder chain is consulted in
// order when the Request's own attributes don't satisfy a lookup; the
// first module to yield a non-empty bag wins.
type AttributeSource interface {
	GetAttribute(category, id, dataType, issuer string) (*value.Bag, bool)
}

// AttributeSourceFunc adapts a function to AttributeSource.
type AttributeSourceFunc func(category, id, dataType, issuer string) (*value.Bag, bool)

func (f AttributeSourceFunc) GetAttribute(category, id, dataType, issuer string) (*value.Bag, bool) {
	return f(category, id, dataType, issuer)
}

// Environment attribute IDs answered by NewEnvironmentSource when the
// Request's environment category omits them: the value is fixed once
// per evaluation from the host clock at arrival. Values the Request
// itself declares take precedence, since the finder chain is only
// consulted when the Request's own attributes don't satisfy a lookup.
const (
	AttrCurrentDateTime = "urn:oasis:names:tc:xacml:1.0:environment:current-dateTime"
	AttrCurrentDate     = "urn:oasis:names:tc:xacml:1.0:environment:current-date"
	AttrCurrentTime     = "urn:oasis:names:tc:xacml:1.0:environment:current-time"
)

// NewEnvironmentSource returns an AttributeSource that answers the three
// current-* environment attributes from a value fixed at construction
// time (the evaluation's current_date_time()).
func NewEnvironmentSource(now value.DateTimeValue) AttributeSource {
	return AttributeSourceFunc(func(category, id, dataType, issuer string) (*value.Bag, bool) {
		if category != CategoryEnvironment || issuer != "" {
			return nil, false
		}
		switch id {
		case AttrCurrentDateTime:
			if dataType != value.TypeDateTime {
				return nil, false
			}
			return value.NewBag(value.TypeDateTime, now), true
		case AttrCurrentDate:
			if dataType != value.TypeDate {
				return nil, false
			}
			d := value.DateValue{Year: now.Instant.Year(), Month: int(now.Instant.Month()), Day: now.Instant.Day(), HasZone: true, Zone: now.Instant.Location()}
			return value.NewBag(value.TypeDate, d), true
		case AttrCurrentTime:
			if dataType != value.TypeTime {
				return nil, false
			}
			tm := now.Instant
			tv := value.TimeValue{Hour: tm.Hour(), Minute: tm.Minute(), Second: tm.Second(), Nanosecond: tm.Nanosecond(), HasZone: true, Zone: tm.Location()}
			return value.NewBag(value.TypeTime, tv), true
		default:
			return nil, false
		}
	})
}
