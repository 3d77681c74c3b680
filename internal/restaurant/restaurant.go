package restaurant

import (
	"time"

	"github.com/shopspring/decimal"
)

// Restaurant is a seller. DeliveryFee is what a shopper pays to have an
// order from this seller delivered.
type Restaurant struct {
	ID          string          `json:"restaurantId"`
	OwnerID     string          `json:"ownerId"`
	Name        string          `json:"name"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Actor is the caller of an owner-scoped operation.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) canManage(r Restaurant) bool {
	return a.Admin || (a.UserID != "" && a.UserID == r.OwnerID)
}
