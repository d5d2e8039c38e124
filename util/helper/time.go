// Package helper_util holds small parsing helpers shared by the HTTP
// façade, mainly for the audit-query endpoint's from/to query
// parameters.
package helper_util

import (
	"fmt"
	"time"
)

// ParseTime parses an RFC3339 timestamp, e.g. a from/to query parameter.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err
}

func ParseNullableTime(value interface{}) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case time.Time:
		return &v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, err
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("unsupported type for time parsing: %T", value)
	}
}
