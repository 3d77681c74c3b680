package user

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Register(ctx context.Context, user User) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := stamp(s.now())
	user.Password = string(hashed)
	user.Email = normalizeEmail(user.Email)
	if !user.Role.Valid() {
		user.Role = RoleCustomer
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return s.repo.Create(ctx, user)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// ProfilePatch holds the fields a shopper may change on their own profile.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if patch.FirstName != nil {
		existing.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		existing.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		existing.Phone = *patch.Phone
	}
	existing.UpdatedAt = stamp(s.now())
	return s.repo.Update(ctx, id, existing)
}

// SetPremium grants (or, with nil bounds, revokes) a premium window.
func (s *Service) SetPremium(ctx context.Context, id string, start, end *time.Time) (User, error) {
	if (start == nil) != (end == nil) {
		return User{}, ErrInvalidWindow
	}
	if start != nil && end.Before(*start) {
		return User{}, ErrInvalidWindow
	}
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	existing.PremiumStart = start
	existing.PremiumEnd = end
	existing.UpdatedAt = stamp(s.now())
	return s.repo.Update(ctx, id, existing)
}

func (s *Service) SetRole(ctx context.Context, id string, role Role) (User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	existing.Role = role
	existing.UpdatedAt = stamp(s.now())
	return s.repo.Update(ctx, id, existing)
}

// PremiumStatus reports the shopper's premium state at the current time.
func (s *Service) PremiumStatus(ctx context.Context, id string) (bool, User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return false, User{}, err
	}
	return u.IsPremiumActive(s.now()), u, nil
}
