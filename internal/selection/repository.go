package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/cache"
)

// Repository keeps one Store per shopper in the session cache.
type Repository struct {
	cache cache.Store
	ttl   time.Duration
}

func NewRepository(c cache.Store, ttl time.Duration) *Repository {
	return &Repository{cache: c, ttl: ttl}
}

// Load returns the shopper's selection; a missing or expired entry is an
// empty store.
func (r *Repository) Load(ctx context.Context, userID string) (*Store, error) {
	raw, err := r.cache.Get(ctx, cache.SelectionKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		return &Store{}, nil
	}
	if err != nil {
		return nil, err
	}
	s := &Store{}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return nil, fmt.Errorf("decode selection for %s: %w", userID, err)
	}
	return s, nil
}

func (r *Repository) Save(ctx context.Context, userID string, s *Store) error {
	if s.IsEmpty() {
		return r.Clear(ctx, userID)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, cache.SelectionKey(userID), payload, r.ttl)
}

func (r *Repository) Clear(ctx context.Context, userID string) error {
	return r.cache.Del(ctx, cache.SelectionKey(userID))
}
