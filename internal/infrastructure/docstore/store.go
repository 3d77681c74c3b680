// Package docstore is the document store behind every feature repository:
// named collections of schemaless JSON documents addressed by id, queried by
// field equality.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Collection names shared by the feature packages.
const (
	Cart            = "cart"
	Orders          = "orders"
	Addresses       = "addresses"
	Users           = "users"
	FoodItems       = "foodItems"
	Restaurants     = "restaurants"
	Reconciliations = "reconciliations"
	Favorites       = "favorites"
)

var ErrNotFound = errors.New("document not found")

// Document is a stored record. Data is untyped and must go through the
// record package before use.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
}

// Filter matches documents whose field equals Value.
type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Store is the capability set the service needs from a document database.
// Find and List return documents in insertion order.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	GetMany(ctx context.Context, collection string, ids []string) ([]Document, error)
	Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Insert(ctx context.Context, collection string, data map[string]any) (Document, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
}

// textOf renders a value the way Postgres' ->> operator renders the same
// value after a JSON round trip, so both backends compare filters alike.
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
