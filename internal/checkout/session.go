package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/food-order-backend/internal/address"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/cache"
	"github.com/wichananm65/food-order-backend/internal/order"
)

// Redirect targets handed to the client with checkout results.
const (
	RedirectCart   = "/cart"
	RedirectOrders = "/orders"
)

// PaymentIntent is what the client needs to open the payment widget.
type PaymentIntent struct {
	ID          string    `json:"intentId"`
	AmountMinor int64     `json:"amountMinor"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Session is one shopper's checkout attempt.
type Session struct {
	ID            string           `json:"checkoutId"`
	UserID        string           `json:"userId"`
	State         State            `json:"state"`
	Summary       *Summary         `json:"summary,omitempty"`
	Address       *address.Address `json:"address"`
	Intent        *PaymentIntent   `json:"paymentIntent,omitempty"`
	PaymentRef    string           `json:"paymentReference,omitempty"`
	Orders        []order.Order    `json:"orders,omitempty"`
	Report        *Report          `json:"report,omitempty"`
	Redirect      string           `json:"redirect,omitempty"`
	RedirectAfter int64            `json:"redirectAfterMs,omitempty"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

var errNoSession = errors.New("no checkout session")

// SessionRepository keeps the current session per shopper in the session cache.
type SessionRepository struct {
	cache cache.Store
	ttl   time.Duration
}

func NewSessionRepository(c cache.Store, ttl time.Duration) *SessionRepository {
	return &SessionRepository{cache: c, ttl: ttl}
}

func (r *SessionRepository) Load(ctx context.Context, userID string) (*Session, error) {
	raw, err := r.cache.Get(ctx, cache.CheckoutKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode checkout session for %s: %w", userID, err)
	}
	return &s, nil
}

func (r *SessionRepository) Save(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.cache.Set(ctx, cache.CheckoutKey(s.UserID), payload, r.ttl)
}
