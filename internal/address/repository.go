package address

import (
	"context"
	"errors"
	"time"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var (
	ErrNotFound = errors.New("address not found")
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Get(ctx context.Context, id string) (Address, error)
	Create(ctx context.Context, addr Address) (Address, error)
	Update(ctx context.Context, id string, fields map[string]any) (Address, error)
	Delete(ctx context.Context, id string) error
}

// DocstoreRepository stores addresses in the addresses collection, one
// document per address with a userId field.
type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) ListByUser(ctx context.Context, userID string) ([]Address, error) {
	docs, err := r.store.Find(ctx, docstore.Addresses, docstore.Eq("userId", userID))
	if err != nil {
		return nil, err
	}
	out := make([]Address, 0, len(docs))
	for _, doc := range docs {
		a, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *DocstoreRepository) Get(ctx context.Context, id string) (Address, error) {
	doc, err := r.store.Get(ctx, docstore.Addresses, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Create(ctx context.Context, addr Address) (Address, error) {
	doc, err := r.store.Insert(ctx, docstore.Addresses, map[string]any{
		"userId":    addr.UserID,
		"address":   addr.Address,
		"type":      string(addr.Type),
		"isDefault": addr.IsDefault,
		"createdAt": addr.CreatedAt,
		"updatedAt": addr.UpdatedAt,
	})
	if err != nil {
		return Address{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Update(ctx context.Context, id string, fields map[string]any) (Address, error) {
	doc, err := r.store.Update(ctx, docstore.Addresses, id, fields)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Address{}, ErrNotFound
		}
		return Address{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.Addresses, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func fromDocument(doc docstore.Document) (Address, error) {
	rd := record.NewReader(docstore.Addresses, doc.ID, doc.Data)
	a := Address{
		ID:        doc.ID,
		UserID:    rd.String("userId"),
		Address:   rd.OptString("address"),
		Type:      Type(rd.OptString("type")),
		IsDefault: rd.Bool("isDefault"),
		CreatedAt: doc.CreatedAt,
	}
	if t := rd.OptTime("updatedAt"); t != nil {
		a.UpdatedAt = *t
	} else {
		a.UpdatedAt = doc.CreatedAt
	}
	if err := rd.Err(); err != nil {
		return Address{}, err
	}
	if a.Type == "" {
		a.Type = TypeOther
	}
	return a, nil
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
