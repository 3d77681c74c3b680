package fooditem

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/food-order-backend/internal/restaurant"
)

// RestaurantGuard answers whether a caller may change a restaurant's menu.
type RestaurantGuard interface {
	CanManage(ctx context.Context, actor restaurant.Actor, restaurantID string) error
}

type Service struct {
	repo  Repository
	guard RestaurantGuard
	now   func() time.Time
}

func NewService(repo Repository, guard RestaurantGuard) *Service {
	return &Service{repo: repo, guard: guard, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter) ([]FoodItem, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id string) (FoodItem, error) {
	if id == "" {
		return FoodItem{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// RestaurantOf returns the id of the restaurant selling the item.
func (s *Service) RestaurantOf(ctx context.Context, id string) (string, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return item.RestaurantID, nil
}

func (s *Service) Create(ctx context.Context, actor restaurant.Actor, item FoodItem) (FoodItem, error) {
	if err := checkPricing(item.Price, item.Discount); err != nil {
		return FoodItem{}, err
	}
	if err := s.guard.CanManage(ctx, actor, item.RestaurantID); err != nil {
		return FoodItem{}, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	item.CreatedAt = now
	item.UpdatedAt = now
	return s.repo.Create(ctx, item)
}

// Patch holds optional changes to an item. ClearDiscount removes any discount.
type Patch struct {
	Name          *string
	Price         *decimal.Decimal
	Discount      *decimal.Decimal
	ClearDiscount bool
	Image         *string
	DeliveryTime  *int
	Description   *string
	Category      *string
}

func (s *Service) Update(ctx context.Context, actor restaurant.Actor, id string, p Patch) (FoodItem, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return FoodItem{}, err
	}
	if err := s.guard.CanManage(ctx, actor, existing.RestaurantID); err != nil {
		return FoodItem{}, err
	}

	price := existing.Price
	if p.Price != nil {
		price = *p.Price
	}
	discount := existing.Discount
	if p.ClearDiscount {
		discount = nil
	} else if p.Discount != nil {
		discount = p.Discount
	}
	if err := checkPricing(price, discount); err != nil {
		return FoodItem{}, err
	}

	fields := map[string]any{"updatedAt": s.now().UTC().Truncate(time.Millisecond)}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Price != nil {
		fields["price"] = p.Price.String()
	}
	if p.ClearDiscount {
		fields["discount"] = nil
	} else if p.Discount != nil {
		fields["discount"] = p.Discount.String()
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.DeliveryTime != nil {
		fields["deliveryTime"] = *p.DeliveryTime
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	return s.repo.Update(ctx, id, fields)
}

func (s *Service) Delete(ctx context.Context, actor restaurant.Actor, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.CanManage(ctx, actor, existing.RestaurantID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

var hundred = decimal.NewFromInt(100)

func checkPricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	if discount != nil && (discount.IsNegative() || discount.GreaterThan(hundred)) {
		return ErrInvalidDiscount
	}
	return nil
}
