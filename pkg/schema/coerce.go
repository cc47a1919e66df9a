package schema

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006",
}

func coerceBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func coerceNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// DateOf truncates t to its calendar date at UTC midnight, keeping the
// year/month/day as observed in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts the date encodings the forms receive (ISO dates, RFC 3339
// timestamps, dd/mm/yyyy) and returns the calendar date.
func ParseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return DateOf(parsed), true
		}
	}
	return time.Time{}, false
}

func coerceDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return DateOf(v), true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return DateOf(*v), true
	case string:
		return ParseDate(v)
	default:
		return time.Time{}, false
	}
}

func isBlank(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case time.Time:
		return v.IsZero()
	case *time.Time:
		return v == nil || v.IsZero()
	default:
		return false
	}
}

func coerceList(raw any) ([]Record, bool) {
	switch v := raw.(type) {
	case []Record:
		return v, true
	case []map[string]any:
		out := make([]Record, len(v))
		for i, item := range v {
			out[i] = Record(item)
		}
		return out, true
	case []any:
		out := make([]Record, len(v))
		for i, item := range v {
			switch typed := item.(type) {
			case Record:
				out[i] = typed
			case map[string]any:
				out[i] = Record(typed)
			case nil:
				out[i] = nil
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}
