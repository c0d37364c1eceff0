package model

import (
	"strings"
	"time"
)

const (
	RoleRegular  = "regular"
	RoleBusiness = "business"
	RoleAdmin    = "admin"
)

// IsValidRole reports whether role is one of the known account roles
func IsValidRole(role string) bool {
	switch role {
	case RoleRegular, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Name struct {
	First  string `json:"first" binding:"required,min=2"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last" binding:"required,min=2"`
}

type Address struct {
	State       string `json:"state,omitempty"`
	Country     string `json:"country" binding:"required,min=2"`
	City        string `json:"city" binding:"required,min=2"`
	Street      string `json:"street" binding:"required,min=2"`
	HouseNumber int    `json:"houseNumber" binding:"gte=0"`
	Zip         string `json:"zip,omitempty"`
}

type Image struct {
	URL string `json:"url,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// User represents an account and its profile document
type User struct {
	ID             string     `json:"id"`
	Name           Name       `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	PasswordHash   string     `json:"-"` // Never serialized
	Address        Address    `json:"address"`
	Image          Image      `json:"image"`
	Gender         string     `json:"gender,omitempty"`
	Role           string     `json:"role"`
	FailedAttempts int        `json:"-"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LoginState is the part of a user record mutated by login attempts
type LoginState struct {
	FailedAttempts int
	SuspendedUntil *time.Time
}

func (u *User) LoginState() LoginState {
	return LoginState{FailedAttempts: u.FailedAttempts, SuspendedUntil: u.SuspendedUntil}
}

// IsSuspended reports whether the account is locked out of login at now
func (u *User) IsSuspended(now time.Time) bool {
	return u.SuspendedUntil != nil && u.SuspendedUntil.After(now)
}

// PublicUser is the subset of a user that may leave the service
type PublicUser struct {
	ID             string     `json:"id"`
	Name           Name       `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Address        Address    `json:"address"`
	Image          Image      `json:"image"`
	Gender         string     `json:"gender,omitempty"`
	Role           string     `json:"role"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Phone:          u.Phone,
		Address:        u.Address,
		Image:          u.Image,
		Gender:         u.Gender,
		Role:           u.Role,
		SuspendedUntil: u.SuspendedUntil,
	}
}

// RegisterRequest is the body of a registration call
type RegisterRequest struct {
	Name     Name    `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required,min=4,max=13"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Address  Address `json:"address" binding:"required"`
	Image    Image   `json:"image"`
	Gender   string  `json:"gender"`
	Role     string  `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries an administrative edit: either a role change or a
// suspension override. Role takes precedence when both are present.
type UpdateUserRequest struct {
	Role         *string  `json:"role"`
	SuspendHours *float64 `json:"suspend_hours"`
}

// UpdateProfileRequest is a full replacement of the profile document by its
// owner or an admin. Role, attempt counter and suspension are not part of it.
// An empty Password keeps the current one.
type UpdateProfileRequest struct {
	Name     Name    `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required,min=4,max=13"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password"`
	Address  Address `json:"address" binding:"required"`
	Image    Image   `json:"image"`
	Gender   string  `json:"gender"`
}
