package order

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusPlaced = "placed"

// Order is written once per purchased cart line and never recomputed.
// Subtotal and DiscountAmount belong to the line; DeliveryFee, PlatformFee,
// Tax and Total are the checkout-wide charges shared by every order carrying
// the same CheckoutID.
type Order struct {
	ID               string          `json:"orderId"`
	CheckoutID       string          `json:"checkoutId"`
	UserID           string          `json:"userId"`
	FoodItemID       string          `json:"foodItemId"`
	RestaurantID     string          `json:"restaurantId"`
	Name             string          `json:"name"`
	HotelName        string          `json:"hotelName"`
	Image            string          `json:"image,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	DeliveryFee      decimal.Decimal `json:"deliveryFee"`
	PlatformFee      decimal.Decimal `json:"platformFee"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	Currency         string          `json:"currency"`
	PaymentReference string          `json:"paymentReference"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
}
