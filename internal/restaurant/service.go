package restaurant

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Restaurant, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Restaurant, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Restaurant, error) {
	if id == "" {
		return Restaurant{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// DeliveryFee returns the fee a restaurant charges per delivery.
func (s *Service) DeliveryFee(ctx context.Context, id string) (decimal.Decimal, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return r.DeliveryFee, nil
}

// Create registers a restaurant owned by the caller. Admins may name another
// owner.
func (s *Service) Create(ctx context.Context, actor Actor, r Restaurant) (Restaurant, error) {
	if !actor.Admin || r.OwnerID == "" {
		r.OwnerID = actor.UserID
	}
	if r.DeliveryFee.IsNegative() {
		return Restaurant{}, ErrInvalidFee
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	r.Name = strings.TrimSpace(r.Name)
	r.CreatedAt = now
	r.UpdatedAt = now
	return s.repo.Create(ctx, r)
}

func (s *Service) UpdateDeliveryFee(ctx context.Context, actor Actor, id string, fee decimal.Decimal) (Restaurant, error) {
	if fee.IsNegative() {
		return Restaurant{}, ErrInvalidFee
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Restaurant{}, err
	}
	if !actor.canManage(existing) {
		return Restaurant{}, ErrForbidden
	}
	return s.repo.Update(ctx, id, map[string]any{
		"deliveryFee": fee.String(),
		"updatedAt":   s.now().UTC().Truncate(time.Millisecond),
	})
}

// CanManage reports whether actor may change restaurant id or its menu.
func (s *Service) CanManage(ctx context.Context, actor Actor, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canManage(existing) {
		return ErrForbidden
	}
	return nil
}
