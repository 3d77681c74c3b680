package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/record"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidWindow      = errors.New("premium window must end after it starts")
)

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id string, user User) (User, error)
}

// DocstoreRepository keeps users in the users collection.
type DocstoreRepository struct {
	store docstore.Store
}

func NewDocstoreRepository(store docstore.Store) *DocstoreRepository {
	return &DocstoreRepository{store: store}
}

func (r *DocstoreRepository) List(ctx context.Context) ([]User, error) {
	docs, err := r.store.Find(ctx, docstore.Users)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		u, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *DocstoreRepository) GetByID(ctx context.Context, id string) (User, error) {
	doc, err := r.store.Get(ctx, docstore.Users, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	docs, err := r.store.Find(ctx, docstore.Users, docstore.Eq("email", normalizeEmail(email)))
	if err != nil {
		return User{}, err
	}
	if len(docs) == 0 {
		return User{}, ErrNotFound
	}
	return fromDocument(docs[0])
}

func (r *DocstoreRepository) Create(ctx context.Context, user User) (User, error) {
	doc, err := r.store.Insert(ctx, docstore.Users, toData(user))
	if err != nil {
		return User{}, err
	}
	return fromDocument(doc)
}

func (r *DocstoreRepository) Update(ctx context.Context, id string, user User) (User, error) {
	doc, err := r.store.Update(ctx, docstore.Users, id, toData(user))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return fromDocument(doc)
}

func toData(u User) map[string]any {
	data := map[string]any{
		"email":        normalizeEmail(u.Email),
		"password":     u.Password,
		"firstName":    u.FirstName,
		"lastName":     u.LastName,
		"phone":        u.Phone,
		"role":         string(u.Role),
		"premiumStart": nil,
		"premiumEnd":   nil,
		"createdAt":    u.CreatedAt,
		"updatedAt":    u.UpdatedAt,
	}
	if u.PremiumStart != nil {
		data["premiumStart"] = *u.PremiumStart
	}
	if u.PremiumEnd != nil {
		data["premiumEnd"] = *u.PremiumEnd
	}
	return data
}

func fromDocument(doc docstore.Document) (User, error) {
	rd := record.NewReader(docstore.Users, doc.ID, doc.Data)
	u := User{
		ID:           doc.ID,
		Email:        rd.String("email"),
		Password:     rd.OptString("password"),
		FirstName:    rd.OptString("firstName"),
		LastName:     rd.OptString("lastName"),
		Phone:        rd.OptString("phone"),
		Role:         Role(rd.OptString("role")),
		PremiumStart: rd.OptTime("premiumStart"),
		PremiumEnd:   rd.OptTime("premiumEnd"),
		CreatedAt:    doc.CreatedAt,
	}
	if rd.Has("updatedAt") {
		u.UpdatedAt = rd.Time("updatedAt")
	}
	if err := rd.Err(); err != nil {
		return User{}, err
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
