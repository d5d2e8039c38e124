package value

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// TypeInfo bundles the lexical parser and whether values are ordered for
// one dataType URI (equality itself lives on each Value's Equal). Populated once at package init so the function
// catalog and the policy/request XML loaders share a single source of
// truth instead of duplicating type switches.
type TypeInfo struct {
	URI     string
	Parse   func(literal string) (Value, error)
	Ordered bool
}

var registry = map[string]TypeInfo{}

func register(t TypeInfo) { registry[t.URI] = t }

// Lookup returns the TypeInfo for a dataType URI.
func Lookup(dataType string) (TypeInfo, bool) {
	t, ok := registry[dataType]
	return t, ok
}

// Parse parses literal as dataType, using the registered parser. Parse
// failures are the caller's responsibility to surface as load-time errors
// (AttributeValue literals) or syntax-error Indeterminates (request
// attribute values).
func Parse(dataType, literal string) (Value, error) {
	t, ok := registry[dataType]
	if !ok {
		return nil, fmt.Errorf("unsupported dataType: %s", dataType)
	}
	return t.Parse(literal)
}

func init() {
	register(TypeInfo{URI: TypeString, Parse: func(s string) (Value, error) { return StringValue(s), nil }})

	register(TypeInfo{URI: TypeBoolean, Parse: func(s string) (Value, error) {
		switch strings.TrimSpace(s) {
		case "true", "1":
			return BooleanValue(true), nil
		case "false", "0":
			return BooleanValue(false), nil
		default:
			return nil, fmt.Errorf("invalid boolean lexical form: %q", s)
		}
	}})

	register(TypeInfo{URI: TypeInteger, Ordered: true, Parse: func(s string) (Value, error) {
		i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
		if !ok {
			return nil, fmt.Errorf("invalid integer lexical form: %q", s)
		}
		return IntegerValue{Int: i}, nil
	}})

	register(TypeInfo{URI: TypeDouble, Ordered: true, Parse: func(s string) (Value, error) {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid double lexical form: %q", s)
		}
		return DoubleValue(f), nil
	}})

	register(TypeInfo{URI: TypeDateTime, Ordered: true, Parse: ParseDateTime})
	register(TypeInfo{URI: TypeDate, Ordered: true, Parse: ParseDate})
	register(TypeInfo{URI: TypeTime, Ordered: true, Parse: ParseTime})

	register(TypeInfo{URI: TypeAnyURI, Parse: func(s string) (Value, error) {
		return AnyURIValue(canonicalizeAnyURI(strings.TrimSpace(s))), nil
	}})

	register(TypeInfo{URI: TypeHexBinary, Parse: func(s string) (Value, error) {
		b, err := hex.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid hexBinary lexical form: %w", err)
		}
		return HexBinaryValue(b), nil
	}})

	register(TypeInfo{URI: TypeBase64, Parse: func(s string) (Value, error) {
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid base64Binary lexical form: %w", err)
		}
		return Base64Value(b), nil
	}})

	register(TypeInfo{URI: TypeDayTimeDur, Parse: ParseDayTimeDuration})
	register(TypeInfo{URI: TypeYearMonthDur, Parse: ParseYearMonthDuration})

	register(TypeInfo{URI: TypeRFC822Name, Parse: func(s string) (Value, error) {
		return StringValue(strings.ToLower(strings.TrimSpace(s))), nil
	}})
	register(TypeInfo{URI: TypeX500Name, Parse: func(s string) (Value, error) {
		return StringValue(strings.TrimSpace(s)), nil
	}})
}

// ParseDateTime requires an explicit timezone designator ("Z" or "±HH:MM");
// a lexical form without one is a syntax error.
func ParseDateTime(literal string) (Value, error) {
	s := strings.TrimSpace(literal)
	if !hasTimezoneSuffix(s) {
		return nil, fmt.Errorf("dateTime %q is missing a timezone designator", literal)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// RFC3339Nano requires seconds; fall back to RFC3339.
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid dateTime lexical form: %q", literal)
		}
	}
	return DateTimeValue{Instant: t, HasZone: true}, nil
}

func hasTimezoneSuffix(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	// Look for a +HH:MM or -HH:MM after the time portion (skip the date's
	// leading '-' separators by searching from index 10, after YYYY-MM-DD).
	if len(s) < 11 {
		return false
	}
	tail := s[10:]
	return strings.ContainsAny(tail, "+-")
}

// ParseDate parses an xs:date lexical form, optionally zoned.
func ParseDate(literal string) (Value, error) {
	s := strings.TrimSpace(literal)
	zonePart := ""
	datePart := s
	if strings.HasSuffix(s, "Z") {
		zonePart = "Z"
		datePart = s[:len(s)-1]
	} else if idx := strings.IndexAny(s[min(len(s), 10):], "+-"); idx >= 0 {
		cut := min(len(s), 10) + idx
		zonePart = s[cut:]
		datePart = s[:cut]
	}
	parts := strings.SplitN(datePart, "-", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid date lexical form: %q", literal)
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("invalid date lexical form: %q", literal)
	}
	dv := DateValue{Year: y, Month: m, Day: d}
	if zonePart != "" {
		loc, err := parseZone(zonePart)
		if err != nil {
			return nil, err
		}
		dv.HasZone = true
		dv.Zone = loc
	}
	return dv, nil
}

// ParseTime parses an xs:time lexical form, optionally zoned.
func ParseTime(literal string) (Value, error) {
	s := strings.TrimSpace(literal)
	zonePart := ""
	timePart := s
	if strings.HasSuffix(s, "Z") {
		zonePart = "Z"
		timePart = s[:len(s)-1]
	} else if idx := strings.IndexAny(s[min(len(s), 8):], "+-"); idx >= 0 {
		cut := min(len(s), 8) + idx
		zonePart = s[cut:]
		timePart = s[:cut]
	}
	var h, m, sec, nsec int
	secPart := ""
	hm := strings.SplitN(timePart, ":", 3)
	if len(hm) != 3 {
		return nil, fmt.Errorf("invalid time lexical form: %q", literal)
	}
	secPart = hm[2]
	var err error
	if h, err = strconv.Atoi(hm[0]); err != nil {
		return nil, fmt.Errorf("invalid time lexical form: %q", literal)
	}
	if m, err = strconv.Atoi(hm[1]); err != nil {
		return nil, fmt.Errorf("invalid time lexical form: %q", literal)
	}
	if dot := strings.IndexByte(secPart, '.'); dot >= 0 {
		if sec, err = strconv.Atoi(secPart[:dot]); err != nil {
			return nil, fmt.Errorf("invalid time lexical form: %q", literal)
		}
		frac := secPart[dot+1:]
		for len(frac) < 9 {
			frac += "0"
		}
		nsec, _ = strconv.Atoi(frac[:9])
	} else if sec, err = strconv.Atoi(secPart); err != nil {
		return nil, fmt.Errorf("invalid time lexical form: %q", literal)
	}
	tv := TimeValue{Hour: h, Minute: m, Second: sec, Nanosecond: nsec}
	if zonePart != "" {
		loc, err := parseZone(zonePart)
		if err != nil {
			return nil, err
		}
		tv.HasZone = true
		tv.Zone = loc
	}
	return tv, nil
}

func parseZone(z string) (*time.Location, error) {
	if z == "Z" {
		return time.UTC, nil
	}
	sign := 1
	if z[0] == '-' {
		sign = -1
	}
	parts := strings.SplitN(z[1:], ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid timezone designator: %q", z)
	}
	hh, err1 := strconv.Atoi(parts[0])
	mm, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("invalid timezone designator: %q", z)
	}
	offset := sign * (hh*3600 + mm*60)
	return time.FixedZone(z, offset), nil
}

// ParseDayTimeDuration parses forms like "P1DT2H3M4S" / "-P1D".
func ParseDayTimeDuration(literal string) (Value, error) {
	s := strings.TrimSpace(literal)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return nil, fmt.Errorf("invalid dayTimeDuration lexical form: %q", literal)
	}
	s = s[1:]
	var days, hours, minutes int
	var seconds float64
	datePart, timePart := s, ""
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		datePart, timePart = s[:idx], s[idx+1:]
	}
	if datePart != "" {
		if !strings.HasSuffix(datePart, "D") {
			return nil, fmt.Errorf("invalid dayTimeDuration lexical form: %q", literal)
		}
		var err error
		days, err = strconv.Atoi(strings.TrimSuffix(datePart, "D"))
		if err != nil {
			return nil, fmt.Errorf("invalid dayTimeDuration lexical form: %q", literal)
		}
	}
	if timePart != "" {
		rest := timePart
		if idx := strings.IndexByte(rest, 'H'); idx >= 0 {
			hours, _ = strconv.Atoi(rest[:idx])
			rest = rest[idx+1:]
		}
		if idx := strings.IndexByte(rest, 'M'); idx >= 0 {
			minutes, _ = strconv.Atoi(rest[:idx])
			rest = rest[idx+1:]
		}
		if idx := strings.IndexByte(rest, 'S'); idx >= 0 {
			seconds, _ = strconv.ParseFloat(rest[:idx], 64)
		}
	}
	dur := time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute + time.Duration(seconds*float64(time.Second))
	return DayTimeDuration{Negative: neg, Duration: dur}, nil
}

// ParseYearMonthDuration parses forms like "P1Y2M" / "-P3Y".
func ParseYearMonthDuration(literal string) (Value, error) {
	s := strings.TrimSpace(literal)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return nil, fmt.Errorf("invalid yearMonthDuration lexical form: %q", literal)
	}
	s = s[1:]
	var years, months int
	if idx := strings.IndexByte(s, 'Y'); idx >= 0 {
		years, _ = strconv.Atoi(s[:idx])
		s = s[idx+1:]
	}
	if idx := strings.IndexByte(s, 'M'); idx >= 0 {
		months, _ = strconv.Atoi(s[:idx])
	}
	return YearMonthDuration{Negative: neg, Months: years*12 + months}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
