package cart

import (
	"context"
	"errors"
	"time"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var (
	ErrNotFound = errors.New("cart line not found")
)

// Repository provides access to persisted cart lines. ListByUser returns
// every stored line, zero quantities included.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Line, error)
	FindByUserAndItem(ctx context.Context, userID, foodItemID string) ([]Line, error)
	Get(ctx context.Context, id string) (Line, error)
	Create(ctx context.Context, line Line) (Line, error)
	UpdateQuantity(ctx context.Context, id string, qty int, at time.Time) (Line, error)
	Delete(ctx context.Context, id string) error
}

type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) ListByUser(ctx context.Context, userID string) ([]Line, error) {
	return r.find(ctx, docstore.Eq("userId", userID))
}

func (r *DocstoreRepository) FindByUserAndItem(ctx context.Context, userID, foodItemID string) ([]Line, error) {
	return r.find(ctx, docstore.Eq("userId", userID), docstore.Eq("foodItemId", foodItemID))
}

func (r *DocstoreRepository) find(ctx context.Context, filters ...docstore.Filter) ([]Line, error) {
	docs, err := r.store.Find(ctx, docstore.Cart, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(docs))
	for _, doc := range docs {
		line, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func (r *DocstoreRepository) Get(ctx context.Context, id string) (Line, error) {
	doc, err := r.store.Get(ctx, docstore.Cart, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Line{}, ErrNotFound
		}
		return Line{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Create(ctx context.Context, line Line) (Line, error) {
	data := map[string]any{
		"userId":       line.UserID,
		"foodItemId":   line.FoodItemID,
		"name":         line.Name,
		"hotelName":    line.HotelName,
		"price":        line.Price.String(),
		"image":        line.Image,
		"deliveryTime": line.DeliveryTime,
		"discount":     nil,
		"quantity":     line.Quantity,
		"updatedAt":    line.UpdatedAt,
	}
	if line.Discount != nil {
		data["discount"] = line.Discount.String()
	}
	doc, err := r.store.Insert(ctx, docstore.Cart, data)
	if err != nil {
		return Line{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) UpdateQuantity(ctx context.Context, id string, qty int, at time.Time) (Line, error) {
	doc, err := r.store.Update(ctx, docstore.Cart, id, map[string]any{"quantity": qty, "updatedAt": at})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Line{}, ErrNotFound
		}
		return Line{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.Cart, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func fromDocument(doc docstore.Document) (Line, error) {
	rd := record.NewReader(docstore.Cart, doc.ID, doc.Data)
	line := Line{
		ID:           doc.ID,
		UserID:       rd.String("userId"),
		FoodItemID:   rd.String("foodItemId"),
		Name:         rd.OptString("name"),
		HotelName:    rd.OptString("hotelName"),
		Price:        rd.Decimal("price"),
		Image:        rd.OptString("image"),
		DeliveryTime: rd.OptInt("deliveryTime"),
		Discount:     rd.OptDecimal("discount"),
		Quantity:     rd.Int("quantity"),
		UpdatedAt:    doc.CreatedAt,
	}
	if t := rd.OptTime("updatedAt"); t != nil {
		line.UpdatedAt = *t
	}
	if err := rd.Err(); err != nil {
		return Line{}, err
	}
	return line, nil
}
