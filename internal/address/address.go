package address

import "time"

type Type string

const (
	TypeHome   Type = "Home"
	TypeOffice Type = "Office"
	TypeOther  Type = "Other"
)

type Address struct {
	ID        string    `json:"addressId"`
	UserID    string    `json:"userId"`
	Address   string    `json:"address"`
	Type      Type      `json:"type"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
