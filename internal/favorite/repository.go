package favorite

import (
	"context"
	"errors"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var (
	ErrAlreadyFavorite = errors.New("food item already in favorites")
	ErrNotFavorite     = errors.New("food item not in favorites")
)

// Favorite marks a food item a shopper wants to find again.
type Favorite struct {
	ID         string `json:"favoriteId"`
	UserID     string `json:"userId"`
	FoodItemID string `json:"foodItemId"`
}

// Repository provides access to favorite operations.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
	Find(ctx context.Context, userID, foodItemID string) ([]Favorite, error)
	Create(ctx context.Context, userID, foodItemID string) (Favorite, error)
	Delete(ctx context.Context, id string) error
}

type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	return r.find(ctx, docstore.Eq("userId", userID))
}

func (r *DocstoreRepository) Find(ctx context.Context, userID, foodItemID string) ([]Favorite, error) {
	return r.find(ctx, docstore.Eq("userId", userID), docstore.Eq("foodItemId", foodItemID))
}

func (r *DocstoreRepository) find(ctx context.Context, filters ...docstore.Filter) ([]Favorite, error) {
	docs, err := r.store.Find(ctx, docstore.Favorites, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]Favorite, 0, len(docs))
	for _, doc := range docs {
		f, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *DocstoreRepository) Create(ctx context.Context, userID, foodItemID string) (Favorite, error) {
	doc, err := r.store.Insert(ctx, docstore.Favorites, map[string]any{
		"userId":     userID,
		"foodItemId": foodItemID,
	})
	if err != nil {
		return Favorite{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, docstore.Favorites, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFavorite
	}
	return err
}

func fromDocument(doc docstore.Document) (Favorite, error) {
	rd := record.NewReader(docstore.Favorites, doc.ID, doc.Data)
	f := Favorite{
		ID:         doc.ID,
		UserID:     rd.String("userId"),
		FoodItemID: rd.String("foodItemId"),
	}
	if err := rd.Err(); err != nil {
		return Favorite{}, err
	}
	return f, nil
}
