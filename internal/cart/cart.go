package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one entry of a shopper's cart. Name, HotelName, Price, Image,
// DeliveryTime and Discount are copied from the catalog when the line is
// first created. Discount is a percentage.
type Line struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	FoodItemID   string           `json:"foodItemId"`
	Name         string           `json:"name"`
	HotelName    string           `json:"hotelName"`
	Price        decimal.Decimal  `json:"price"`
	Image        string           `json:"image,omitempty"`
	DeliveryTime int              `json:"deliveryTime"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`
	Quantity     int              `json:"quantity"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
