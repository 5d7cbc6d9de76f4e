package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrCopyNotFound  = errors.New("copy not found")
	ErrNoCopies      = errors.New("no available copies")
	ErrCopyInUse     = errors.New("copy is borrowed")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidStatus = errors.New("invalid copy status")
)

type CopyStatus string

const (
	CopyAvailable CopyStatus = "AVAILABLE"
	CopyBorrowed  CopyStatus = "BORROWED"
	CopyLost      CopyStatus = "LOST"
	CopyDamaged   CopyStatus = "DAMAGED"
)

// Book carries denormalized counters over its copies:
// 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              string          `json:"id"`
	ISBN            string          `json:"isbn"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Publisher       string          `json:"publisher,omitempty"`
	Category        string          `json:"category,omitempty"`
	Price           decimal.Decimal `json:"price"`
	TotalCopies     int             `json:"total_copies"`
	AvailableCopies int             `json:"available_copies"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Copy is one physical item of a book.
type Copy struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	Status    CopyStatus `json:"status"`
	Location  string     `json:"location,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
