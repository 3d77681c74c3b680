package category

import (
	"context"
	"sort"
	"strings"

	"github.com/wichananm65/food-order-backend/internal/fooditem"
)

type Catalog interface {
	List(ctx context.Context, f fooditem.Filter) ([]fooditem.FoodItem, error)
}

// Service provides business logic for categories.
type Service struct {
	catalog Catalog
}

func NewService(c Catalog) *Service {
	return &Service{catalog: c}
}

// List returns up to limit categories, most populated first. Items without a
// category are not counted. The image is the first item image seen.
func (s *Service) List(ctx context.Context, restaurantID string, limit int) ([]Category, error) {
	items, err := s.catalog.List(ctx, fooditem.Filter{RestaurantID: restaurantID})
	if err != nil {
		return nil, err
	}

	index := map[string]int{}
	out := make([]Category, 0)
	for _, it := range items {
		name := strings.TrimSpace(it.Category)
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Category{Name: name})
		}
		out[i].ItemCount++
		if out[i].Image == "" {
			out[i].Image = it.Image
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].ItemCount > out[b].ItemCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
