// Package record converts schemaless documents into typed values. Every
// getter records the first problem it meets so callers can read all fields
// and check Err once.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformed is matched by every error produced while reading a record.
var ErrMalformed = errors.New("malformed record")

// MalformedError names the offending collection, document and field.
type MalformedError struct {
	Collection string
	ID         string
	Field      string
	Reason     string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed record %s/%s: field %q %s", e.Collection, e.ID, e.Field, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

// Reader walks a single document.
type Reader struct {
	collection string
	id         string
	data       map[string]any
	err        error
}

func NewReader(collection, id string, data map[string]any) *Reader {
	return &Reader{collection: collection, id: id, data: data}
}

// Err returns the first malformed field encountered, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(field, reason string) {
	if r.err != nil {
		return
	}
	r.err = &MalformedError{Collection: r.collection, ID: r.id, Field: field, Reason: reason}
}

func (r *Reader) lookup(field string) (any, bool) {
	v, ok := r.data[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether field is present and non-null.
func (r *Reader) Has(field string) bool {
	_, ok := r.lookup(field)
	return ok
}

// String reads a required string field.
func (r *Reader) String(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		r.fail(field, "is missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, fmt.Sprintf("is %T, want string", v))
		return ""
	}
	return s
}

// OptString reads a string field, returning "" when absent.
func (r *Reader) OptString(field string) string {
	if !r.Has(field) {
		return ""
	}
	return r.String(field)
}

// Bool reads a boolean; absence means false.
func (r *Reader) Bool(field string) bool {
	v, ok := r.lookup(field)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			r.fail(field, "is not a boolean")
		}
		return parsed
	default:
		r.fail(field, fmt.Sprintf("is %T, want bool", v))
		return false
	}
}

// Int reads a required integral number.
func (r *Reader) Int(field string) int {
	v, ok := r.lookup(field)
	if !ok {
		r.fail(field, "is missing")
		return 0
	}
	n, err := toInt(v)
	if err != nil {
		r.fail(field, err.Error())
		return 0
	}
	return n
}

// OptInt reads an integral number, returning 0 when absent.
func (r *Reader) OptInt(field string) int {
	if !r.Has(field) {
		return 0
	}
	return r.Int(field)
}

// Decimal reads a required monetary or percentage value.
func (r *Reader) Decimal(field string) decimal.Decimal {
	v, ok := r.lookup(field)
	if !ok {
		r.fail(field, "is missing")
		return decimal.Zero
	}
	d, err := toDecimal(v)
	if err != nil {
		r.fail(field, err.Error())
		return decimal.Zero
	}
	return d
}

// OptDecimal returns nil when the field is absent.
func (r *Reader) OptDecimal(field string) *decimal.Decimal {
	if !r.Has(field) {
		return nil
	}
	d := r.Decimal(field)
	if r.err != nil {
		return nil
	}
	return &d
}

// Strings reads an optional list of strings.
func (r *Reader) Strings(field string) []string {
	v, ok := r.lookup(field)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				r.fail(field, fmt.Sprintf("contains %T, want string", item))
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		r.fail(field, fmt.Sprintf("is %T, want list", v))
		return nil
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("is %v, want integer", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("is %q, want integer", n.String())
		}
		return int(i), nil
	case decimal.Decimal:
		if !n.Equal(n.Truncate(0)) {
			return 0, fmt.Errorf("is %s, want integer", n.String())
		}
		return int(n.IntPart()), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("is %q, want integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("is %T, want number", v)
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, errors.New("is nil")
		}
		return *n, nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("is %q, want decimal", n.String())
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, fmt.Errorf("is %q, want decimal", n)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("is %T, want number", v)
	}
}
