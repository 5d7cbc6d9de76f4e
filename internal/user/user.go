package user

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrForbidden     = errors.New("forbidden")
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusLocked Status = "LOCKED"
)

// User carries the account plus the denormalized lending counters.
// CurrentBorrowed is a cache and may drift from the count of open loans;
// TotalFines only ever grows.
type User struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	Password        string          `json:"-"`
	Role            Role            `json:"role"`
	Status          Status          `json:"status"`
	CurrentBorrowed int             `json:"current_borrowed"`
	TotalBorrowed   int             `json:"total_borrowed"`
	TotalFines      decimal.Decimal `json:"total_fines"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// Caller is the resolved identity on whose behalf an operation runs.
type Caller struct {
	ID   string
	Role Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
