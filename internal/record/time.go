package record

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time reads a required timestamp.
func (r *Reader) Time(field string) time.Time {
	v, ok := r.lookup(field)
	if !ok {
		r.fail(field, "is missing")
		return time.Time{}
	}
	t, err := NormalizeTime(v)
	if err != nil {
		r.fail(field, err.Error())
		return time.Time{}
	}
	return t
}

// OptTime returns nil when the field is absent.
func (r *Reader) OptTime(field string) *time.Time {
	if !r.Has(field) {
		return nil
	}
	t := r.Time(field)
	if r.err != nil {
		return nil
	}
	return &t
}

// NormalizeTime accepts the shapes a stored timestamp can take: a native
// time value, an ISO-8601 string, or a {seconds, nanoseconds} map as written
// by document databases. The result is always UTC.
func NormalizeTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("is nil")
		}
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("is %q, want ISO-8601 timestamp", t)
	case map[string]any:
		return fromSecondsMap(t)
	default:
		return time.Time{}, fmt.Errorf("is %T, want timestamp", v)
	}
}

func fromSecondsMap(m map[string]any) (time.Time, error) {
	secRaw, ok := firstOf(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp map has no seconds")
	}
	sec, err := toInt64(secRaw)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp seconds %s", err.Error())
	}
	var nsec int64
	if nsRaw, ok := firstOf(m, "nanoseconds", "_nanoseconds", "nanos"); ok {
		nsec, err = toInt64(nsRaw)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp nanoseconds %s", err.Error())
		}
	}
	return time.Unix(sec, nsec).UTC(), nil
}

func firstOf(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toInt64(v any) (int64, error) {
	if n, ok := v.(json.Number); ok {
		return n.Int64()
	}
	i, err := toInt(v)
	return int64(i), err
}
