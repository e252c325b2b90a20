package domain

import (
	"strings"
	"time"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddressUnavailable is the placeholder stored for accounts that have
// not provided a shipping address. Checkout refuses to start while the
// address still holds this value.
const AddressUnavailable = "Address not available"

// HasAddress reports whether the user has provided a usable shipping
// address. Whitespace-only values and the placeholder do not count.
func (u *User) HasAddress() bool {
	addr := strings.TrimSpace(u.Address)
	return addr != "" && addr != AddressUnavailable
}

// SignupParams holds the fields required to register an account.
type SignupParams struct {
	Name     string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserParams holds optional profile fields. Nil fields are left
// unchanged.
type UpdateUserParams struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}
