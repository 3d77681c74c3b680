package restaurant

import (
	"context"
	"errors"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var (
	ErrNotFound   = errors.New("restaurant not found")
	ErrForbidden  = errors.New("not the owner of this restaurant")
	ErrInvalidFee = errors.New("delivery fee must not be negative")
)

type Repository interface {
	List(ctx context.Context) ([]Restaurant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Restaurant, error)
	GetByID(ctx context.Context, id string) (Restaurant, error)
	Create(ctx context.Context, r Restaurant) (Restaurant, error)
	Update(ctx context.Context, id string, fields map[string]any) (Restaurant, error)
}

type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) List(ctx context.Context) ([]Restaurant, error) {
	return r.find(ctx)
}

func (r *DocstoreRepository) ListByOwner(ctx context.Context, ownerID string) ([]Restaurant, error) {
	return r.find(ctx, docstore.Eq("ownerId", ownerID))
}

func (r *DocstoreRepository) find(ctx context.Context, filters ...docstore.Filter) ([]Restaurant, error) {
	docs, err := r.store.Find(ctx, docstore.Restaurants, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]Restaurant, 0, len(docs))
	for _, doc := range docs {
		rest, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	return out, nil
}

func (r *DocstoreRepository) GetByID(ctx context.Context, id string) (Restaurant, error) {
	doc, err := r.store.Get(ctx, docstore.Restaurants, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Restaurant{}, ErrNotFound
		}
		return Restaurant{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Create(ctx context.Context, rest Restaurant) (Restaurant, error) {
	doc, err := r.store.Insert(ctx, docstore.Restaurants, map[string]any{
		"ownerId":     rest.OwnerID,
		"name":        rest.Name,
		"deliveryFee": rest.DeliveryFee.String(),
		"image":       rest.Image,
		"createdAt":   rest.CreatedAt,
		"updatedAt":   rest.UpdatedAt,
	})
	if err != nil {
		return Restaurant{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Update(ctx context.Context, id string, fields map[string]any) (Restaurant, error) {
	doc, err := r.store.Update(ctx, docstore.Restaurants, id, fields)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Restaurant{}, ErrNotFound
		}
		return Restaurant{}, err
	}
	return fromDocument(doc)
}

func fromDocument(doc docstore.Document) (Restaurant, error) {
	rd := record.NewReader(docstore.Restaurants, doc.ID, doc.Data)
	rest := Restaurant{
		ID:        doc.ID,
		OwnerID:   rd.OptString("ownerId"),
		Name:      rd.String("name"),
		Image:     rd.OptString("image"),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.CreatedAt,
	}
	if fee := rd.OptDecimal("deliveryFee"); fee != nil {
		rest.DeliveryFee = *fee
	}
	if t := rd.OptTime("updatedAt"); t != nil {
		rest.UpdatedAt = *t
	}
	if err := rd.Err(); err != nil {
		return Restaurant{}, err
	}
	return rest, nil
}
