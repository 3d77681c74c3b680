package address

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

func (s *Service) GetAddresses(ctx context.Context, userID string) ([]Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// GetDefault returns the shopper's default address, or ErrNotFound when none
// is flagged.
func (s *Service) GetDefault(ctx context.Context, userID string) (Address, error) {
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	for _, a := range addrs {
		if a.IsDefault {
			return a, nil
		}
	}
	return Address{}, ErrNotFound
}

func (s *Service) AddAddress(ctx context.Context, userID, text string, kind Type, makeDefault bool) (Address, error) {
	now := stamp(s.now())
	created, err := s.repo.Create(ctx, Address{
		UserID:    userID,
		Address:   strings.TrimSpace(text),
		Type:      normalizeType(kind),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Address{}, err
	}
	if makeDefault {
		return s.SetDefault(ctx, userID, created.ID)
	}
	return created, nil
}

// AddressPatch carries the fields a shopper may change. Nil leaves a field alone.
type AddressPatch struct {
	Address *string
	Type    *Type
}

func (s *Service) UpdateAddress(ctx context.Context, userID, id string, patch AddressPatch) (Address, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return Address{}, err
	}
	fields := map[string]any{"updatedAt": stamp(s.now())}
	if patch.Address != nil {
		fields["address"] = strings.TrimSpace(*patch.Address)
	}
	if patch.Type != nil {
		fields["type"] = string(normalizeType(*patch.Type))
	}
	return s.repo.Update(ctx, id, fields)
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetDefault clears every prior default of the shopper before flagging id,
// so at most one address is ever the default.
func (s *Service) SetDefault(ctx context.Context, userID, id string) (Address, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return Address{}, err
	}
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	now := stamp(s.now())
	for _, a := range addrs {
		if a.IsDefault && a.ID != id {
			if _, err := s.repo.Update(ctx, a.ID, map[string]any{"isDefault": false, "updatedAt": now}); err != nil {
				return Address{}, err
			}
		}
	}
	return s.repo.Update(ctx, id, map[string]any{"isDefault": true, "updatedAt": now})
}

func (s *Service) owned(ctx context.Context, userID, id string) (Address, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Address{}, err
	}
	if a.UserID != userID {
		return Address{}, ErrNotFound
	}
	return a, nil
}

func normalizeType(t Type) Type {
	switch strings.ToLower(string(t)) {
	case "home":
		return TypeHome
	case "office":
		return TypeOffice
	default:
		return TypeOther
	}
}
