// Package payment charges the shopper once the checkout total is settled.
package payment

import (
	"context"
	"errors"
	"strings"
)

// ErrDeclined marks a charge the shopper can retry: card refused, widget
// dismissed, or no reference returned.
var ErrDeclined = errors.New("payment declined")

// ChargeRequest describes one checkout payment. SourceToken is what the
// client-side widget handed back: a card nonce for Square, or the widget's
// own payment reference in passthrough mode. ShopperRef is this service's
// user id, never a provider customer id.
type ChargeRequest struct {
	IntentID    string
	AmountMinor int64
	Currency    string
	Description string
	SourceToken string
	ShopperRef  string
}

// Charge is a settled payment.
type Charge struct {
	Reference string
	Status    string
	Provider  string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Charge, error)
}

// Passthrough trusts the hosted widget: the payment already happened in the
// browser and the token it returned is the payment reference.
type Passthrough struct{}

func NewPassthrough() Passthrough {
	return Passthrough{}
}

func (Passthrough) Charge(_ context.Context, req ChargeRequest) (Charge, error) {
	ref := strings.TrimSpace(req.SourceToken)
	if ref == "" {
		return Charge{}, ErrDeclined
	}
	return Charge{Reference: ref, Status: "COMPLETED", Provider: "widget"}, nil
}
