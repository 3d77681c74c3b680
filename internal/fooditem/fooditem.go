package fooditem

import (
	"time"

	"github.com/shopspring/decimal"
)

// FoodItem is a dish on a restaurant's menu. Discount is a percentage in
// [0, 100]; nil means the item sells at full price.
type FoodItem struct {
	ID           string           `json:"foodItemId"`
	RestaurantID string           `json:"restaurantId"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`
	Image        string           `json:"image,omitempty"`
	DeliveryTime int              `json:"deliveryTime"`
	Description  string           `json:"description,omitempty"`
	Category     string           `json:"category,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	RestaurantID string
	Category     string
}
