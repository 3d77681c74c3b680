package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/cart"
)

// FeePolicy decides how the delivery fees of several restaurants in one
// selection combine into the single fee charged.
type FeePolicy string

const (
	FeePolicyMax   FeePolicy = "max"
	FeePolicySum   FeePolicy = "sum"
	FeePolicyFirst FeePolicy = "first"
)

func ParseFeePolicy(v string) (FeePolicy, error) {
	switch p := FeePolicy(strings.ToLower(strings.TrimSpace(v))); p {
	case "":
		return FeePolicyMax, nil
	case FeePolicyMax, FeePolicySum, FeePolicyFirst:
		return p, nil
	default:
		return "", fmt.Errorf("unknown delivery fee policy %q", v)
	}
}

// Combine folds per-restaurant fees, in selection order. No fees is zero.
func (p FeePolicy) Combine(fees []decimal.Decimal) decimal.Decimal {
	if len(fees) == 0 {
		return decimal.Zero
	}
	switch p {
	case FeePolicySum:
		return decimal.Sum(fees[0], fees[1:]...)
	case FeePolicyFirst:
		return fees[0]
	default:
		return decimal.Max(fees[0], fees[1:]...)
	}
}

// FoodItemLookup resolves which restaurant sells a food item.
type FoodItemLookup interface {
	RestaurantOf(ctx context.Context, foodItemID string) (string, error)
}

// DeliveryFeeLookup reads a restaurant's delivery fee.
type DeliveryFeeLookup interface {
	DeliveryFee(ctx context.Context, restaurantID string) (decimal.Decimal, error)
}

type feeResolver struct {
	items  FoodItemLookup
	fees   DeliveryFeeLookup
	policy FeePolicy
}

// resolve looks up the restaurant of each distinct food item and then the
// fee of each distinct restaurant, one call at a time in selection order.
// The first failed lookup aborts resolution and is returned.
func (r feeResolver) resolve(ctx context.Context, lines []cart.Line) (decimal.Decimal, error) {
	seenItems := make(map[string]bool, len(lines))
	seenRestaurants := make(map[string]bool)
	restaurants := make([]string, 0, len(lines))
	for _, l := range lines {
		if seenItems[l.FoodItemID] {
			continue
		}
		seenItems[l.FoodItemID] = true
		rid, err := r.items.RestaurantOf(ctx, l.FoodItemID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("restaurant of %s: %w", l.FoodItemID, err)
		}
		if !seenRestaurants[rid] {
			seenRestaurants[rid] = true
			restaurants = append(restaurants, rid)
		}
	}

	fees := make([]decimal.Decimal, 0, len(restaurants))
	for _, rid := range restaurants {
		fee, err := r.fees.DeliveryFee(ctx, rid)
		if err != nil {
			return decimal.Zero, fmt.Errorf("delivery fee of %s: %w", rid, err)
		}
		fees = append(fees, fee)
	}
	return r.policy.Combine(fees), nil
}
