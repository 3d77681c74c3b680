package order

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/wichananm65/food-order-backend/internal/restaurant"
	"github.com/wichananm65/food-order-backend/internal/user"
)

var ErrInvalidOrder = errors.New("order must reference a user, a food item and a positive quantity")

type OwnedRestaurants interface {
	ListByOwner(ctx context.Context, ownerID string) ([]restaurant.Restaurant, error)
}

// Viewer is whoever is asking for order history.
type Viewer struct {
	UserID string
	Role   user.Role
}

// Service provides business logic for orders.
type Service struct {
	repo        Repository
	restaurants OwnedRestaurants
	now         func() time.Time
}

func NewService(r Repository, restaurants OwnedRestaurants) *Service {
	return &Service{repo: r, restaurants: restaurants, now: time.Now}
}

// Create persists o as given. Monetary fields are taken verbatim.
func (s *Service) Create(ctx context.Context, o Order) (Order, error) {
	if o.UserID == "" || o.FoodItemID == "" || o.Quantity <= 0 {
		return Order{}, ErrInvalidOrder
	}
	if o.Status == "" {
		o.Status = StatusPlaced
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	}
	return s.repo.Create(ctx, o)
}

// ListForViewer returns the orders v may see, newest first: a customer sees
// their own, a restaurant owner sees those of the restaurants they own, an
// admin sees all.
func (s *Service) ListForViewer(ctx context.Context, v Viewer) ([]Order, error) {
	var (
		out []Order
		err error
	)
	switch v.Role {
	case user.RoleAdmin:
		out, err = s.repo.ListAll(ctx)
	case user.RoleRestaurantOwner:
		out, err = s.ownerOrders(ctx, v.UserID)
	default:
		out, err = s.repo.ListByUser(ctx, v.UserID)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Service) ownerOrders(ctx context.Context, ownerID string) ([]Order, error) {
	owned, err := s.restaurants.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0)
	for _, r := range owned {
		orders, err := s.repo.ListByRestaurant(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, orders...)
	}
	return out, nil
}

// Get returns one order if v is allowed to see it.
func (s *Service) Get(ctx context.Context, v Viewer, id string) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	switch v.Role {
	case user.RoleAdmin:
		return o, nil
	case user.RoleRestaurantOwner:
		owned, err := s.restaurants.ListByOwner(ctx, v.UserID)
		if err != nil {
			return Order{}, err
		}
		for _, r := range owned {
			if r.ID == o.RestaurantID {
				return o, nil
			}
		}
	}
	if o.UserID == v.UserID {
		return o, nil
	}
	return Order{}, ErrNotFound
}
