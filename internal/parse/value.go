package parse

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// epoch values above this are taken to be milliseconds
const millisecondThreshold = 100_000_000_000

// floats in [-int64Limit, int64Limit) convert to int64 exactly
const int64Limit = 0x1p63

// ID extracts a record identifier from a JSON value. Only positive whole
// numbers (or strings holding one) qualify.
func ID(v any) (int64, bool) {
	n, err := Int(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// CanonicalUUID lower-cases and normalises s when it parses as a UUID, and
// otherwise returns it trimmed.
func CanonicalUUID(s string) string {
	s = strings.TrimSpace(s)
	if u, err := uuid.Parse(s); err == nil {
		return u.String()
	}
	return s
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// Int converts JSON numbers, numeric strings and bools into an int64.
func Int(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("%v is not a whole number", x)
		}
		if x >= int64Limit || x < -int64Limit {
			return 0, fmt.Errorf("%v is out of range", x)
		}
		return int64(x), nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case json.Number:
		return x.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %T to an integer", v)
}

// Float converts JSON numbers and numeric strings into a float64.
func Float(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to a number", v)
}

// Bool accepts JSON booleans as well as 0/1 numbers and common string spellings.
func Bool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return true, nil
		case "false", "no", "n", "0", "":
			return false, nil
		}
	}
	return false, fmt.Errorf("cannot convert %v to a bool", v)
}

// String renders scalars as text. Whole numbers are written without a decimal point.
func String(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case json.Number:
		return x.String(), nil
	}
	return "", fmt.Errorf("cannot convert %T to a string", v)
}

// Time parses a timestamp. Strings without a zone are read in loc; numbers
// are unix epoch seconds, or milliseconds when large enough.
func Time(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", x)
	case float64, int, int64, json.Number:
		f, err := Float(x)
		if err != nil {
			return time.Time{}, err
		}
		if math.IsNaN(f) || math.Abs(f) >= int64Limit {
			return time.Time{}, fmt.Errorf("timestamp %v is out of range", f)
		}
		if math.Abs(f) >= millisecondThreshold {
			return time.UnixMilli(int64(f)).UTC(), nil
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to a timestamp", v)
}
