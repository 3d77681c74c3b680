package cart

import (
	"context"
	"time"

	"github.com/wichananm65/food-order-backend/internal/fooditem"
	"github.com/wichananm65/food-order-backend/internal/restaurant"
)

type Catalog interface {
	GetByID(ctx context.Context, id string) (fooditem.FoodItem, error)
}

type Restaurants interface {
	GetByID(ctx context.Context, id string) (restaurant.Restaurant, error)
}

// Service orchestrates cart operations.
type Service struct {
	repo        Repository
	catalog     Catalog
	restaurants Restaurants
	now         func() time.Time
}

func NewService(repo Repository, catalog Catalog, restaurants Restaurants) *Service {
	return &Service{repo: repo, catalog: catalog, restaurants: restaurants, now: time.Now}
}

// GetCart lists the shopper's lines. Lines at quantity zero are hidden.
func (s *Service) GetCart(ctx context.Context, userID string) ([]Line, error) {
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(all))
	for _, l := range all {
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

// AddToCart changes the quantity of foodItemID by delta. A line that drops to
// zero or below is deleted rather than stored at zero.
func (s *Service) AddToCart(ctx context.Context, userID, foodItemID string, delta int) ([]Line, error) {
	if delta == 0 {
		return s.GetCart(ctx, userID)
	}
	existing, err := s.repo.FindByUserAndItem(ctx, userID, foodItemID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Millisecond)

	if len(existing) == 0 {
		if delta < 0 {
			return s.GetCart(ctx, userID)
		}
		line, err := s.snapshot(ctx, foodItemID)
		if err != nil {
			return nil, err
		}
		line.UserID = userID
		line.Quantity = delta
		line.UpdatedAt = now
		if _, err := s.repo.Create(ctx, line); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	line := existing[0]
	qty := line.Quantity + delta
	if qty <= 0 {
		if err := s.repo.Delete(ctx, line.ID); err != nil {
			return nil, err
		}
	} else if _, err := s.repo.UpdateQuantity(ctx, line.ID, qty, now); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *Service) snapshot(ctx context.Context, foodItemID string) (Line, error) {
	item, err := s.catalog.GetByID(ctx, foodItemID)
	if err != nil {
		return Line{}, err
	}
	line := Line{
		FoodItemID:   item.ID,
		Name:         item.Name,
		Price:        item.Price,
		Image:        item.Image,
		DeliveryTime: item.DeliveryTime,
		Discount:     item.Discount,
	}
	if rest, err := s.restaurants.GetByID(ctx, item.RestaurantID); err == nil {
		line.HotelName = rest.Name
	}
	return line, nil
}

// Lines returns the shopper's lines with the given ids, in the order asked,
// repeats included. Zero-quantity lines are skipped.
func (s *Service) Lines(ctx context.Context, userID string, ids []string) ([]Line, error) {
	out := make([]Line, 0, len(ids))
	for _, id := range ids {
		line, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if line.UserID != userID {
			return nil, ErrNotFound
		}
		if line.Quantity > 0 {
			out = append(out, line)
		}
	}
	return out, nil
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID string) error {
	line, err := s.repo.Get(ctx, lineID)
	if err != nil {
		return err
	}
	if line.UserID != userID {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, lineID)
}

// RemoveFoodItem deletes every line the shopper holds for foodItemID and
// reports how many were removed.
func (s *Service) RemoveFoodItem(ctx context.Context, userID, foodItemID string) (int, error) {
	lines, err := s.repo.FindByUserAndItem(ctx, userID, foodItemID)
	if err != nil {
		return 0, err
	}
	for i, l := range lines {
		if err := s.repo.Delete(ctx, l.ID); err != nil {
			return i, err
		}
	}
	return len(lines), nil
}

// ClearCart empties a user's cart and returns an error if something goes wrong.
func (s *Service) ClearCart(ctx context.Context, userID string) error {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := s.repo.Delete(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}
