package favorite

import (
	"context"
	"errors"

	"github.com/wichananm65/food-order-backend/internal/fooditem"
)

type Catalog interface {
	GetByID(ctx context.Context, id string) (fooditem.FoodItem, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// AddFavorite returns the shopper's favorite food item ids after adding one.
func (s *Service) AddFavorite(ctx context.Context, userID, foodItemID string) ([]string, error) {
	if _, err := s.catalog.GetByID(ctx, foodItemID); err != nil {
		return nil, err
	}
	existing, err := s.repo.Find(ctx, userID, foodItemID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadyFavorite
	}
	if _, err := s.repo.Create(ctx, userID, foodItemID); err != nil {
		return nil, err
	}
	return s.ids(ctx, userID)
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, foodItemID string) ([]string, error) {
	existing, err := s.repo.Find(ctx, userID, foodItemID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, ErrNotFavorite
	}
	for _, f := range existing {
		if err := s.repo.Delete(ctx, f.ID); err != nil {
			return nil, err
		}
	}
	return s.ids(ctx, userID)
}

// GetFavorites returns the favorite food items. Items since removed from the
// catalog are skipped.
func (s *Service) GetFavorites(ctx context.Context, userID string) ([]fooditem.FoodItem, error) {
	favs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]fooditem.FoodItem, 0, len(favs))
	for _, f := range favs {
		item, err := s.catalog.GetByID(ctx, f.FoodItemID)
		if errors.Is(err, fooditem.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *Service) ids(ctx context.Context, userID string) ([]string, error) {
	favs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(favs))
	for _, f := range favs {
		out = append(out, f.FoodItemID)
	}
	return out, nil
}
