package user

import "time"

type Role string

const (
	RoleCustomer        Role = "customer"
	RoleRestaurantOwner Role = "restaurant_owner"
	RoleAdmin           Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string     `json:"userId"`
	Email        string     `json:"email"`
	Password     string     `json:"password,omitempty"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Phone        string     `json:"phone"`
	Role         Role       `json:"role"`
	PremiumStart *time.Time `json:"premiumStart,omitempty"`
	PremiumEnd   *time.Time `json:"premiumEnd,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsPremiumActive reports whether now falls inside the premium window,
// both ends included. A user without a complete window is never premium.
func (u User) IsPremiumActive(now time.Time) bool {
	if u.PremiumStart == nil || u.PremiumEnd == nil {
		return false
	}
	return !now.Before(*u.PremiumStart) && !now.After(*u.PremiumEnd)
}

func sanitizeUser(u User) User {
	u.Password = ""
	return u
}
