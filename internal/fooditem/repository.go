package fooditem

import (
	"context"
	"errors"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var (
	ErrNotFound        = errors.New("food item not found")
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]FoodItem, error)
	GetByID(ctx context.Context, id string) (FoodItem, error)
	Create(ctx context.Context, item FoodItem) (FoodItem, error)
	Update(ctx context.Context, id string, fields map[string]any) (FoodItem, error)
	Delete(ctx context.Context, id string) error
}

type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) List(ctx context.Context, f Filter) ([]FoodItem, error) {
	var filters []docstore.Filter
	if f.RestaurantID != "" {
		filters = append(filters, docstore.Eq("restaurantId", f.RestaurantID))
	}
	if f.Category != "" {
		filters = append(filters, docstore.Eq("category", f.Category))
	}
	docs, err := r.store.Find(ctx, docstore.FoodItems, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]FoodItem, 0, len(docs))
	for _, doc := range docs {
		item, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *DocstoreRepository) GetByID(ctx context.Context, id string) (FoodItem, error) {
	doc, err := r.store.Get(ctx, docstore.FoodItems, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return FoodItem{}, ErrNotFound
		}
		return FoodItem{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Create(ctx context.Context, item FoodItem) (FoodItem, error) {
	doc, err := r.store.Insert(ctx, docstore.FoodItems, toData(item))
	if err != nil {
		return FoodItem{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Update(ctx context.Context, id string, fields map[string]any) (FoodItem, error) {
	doc, err := r.store.Update(ctx, docstore.FoodItems, id, fields)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return FoodItem{}, ErrNotFound
		}
		return FoodItem{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.FoodItems, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func toData(item FoodItem) map[string]any {
	data := map[string]any{
		"restaurantId": item.RestaurantID,
		"name":         item.Name,
		"price":        item.Price.String(),
		"discount":     nil,
		"image":        item.Image,
		"deliveryTime": item.DeliveryTime,
		"description":  item.Description,
		"category":     item.Category,
		"createdAt":    item.CreatedAt,
		"updatedAt":    item.UpdatedAt,
	}
	if item.Discount != nil {
		data["discount"] = item.Discount.String()
	}
	return data
}

func fromDocument(doc docstore.Document) (FoodItem, error) {
	rd := record.NewReader(docstore.FoodItems, doc.ID, doc.Data)
	item := FoodItem{
		ID:           doc.ID,
		RestaurantID: rd.String("restaurantId"),
		Name:         rd.String("name"),
		Price:        rd.Decimal("price"),
		Discount:     rd.OptDecimal("discount"),
		Image:        rd.OptString("image"),
		DeliveryTime: rd.OptInt("deliveryTime"),
		Description:  rd.OptString("description"),
		Category:     rd.OptString("category"),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.CreatedAt,
	}
	if t := rd.OptTime("updatedAt"); t != nil {
		item.UpdatedAt = *t
	}
	if err := rd.Err(); err != nil {
		return FoodItem{}, err
	}
	return item, nil
}
