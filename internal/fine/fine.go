package fine

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("fine not found")
	ErrAlreadyPaid = errors.New("fine already paid")
	ErrInvalid     = errors.New("invalid fine")
)

type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
)

const (
	ReasonOverdue = "overdue"
	ReasonLost    = "lost"
	ReasonDamaged = "damaged"
)

// PaymentWindow is how long a user has to settle a new fine.
const PaymentWindow = 30 * 24 * time.Hour

type Fine struct {
	ID        string          `json:"id"`
	RecordID  string          `json:"record_id"`
	UserID    string          `json:"user_id"`
	BookID    string          `json:"book_id"`
	Reason    string          `json:"reason"`
	Amount    decimal.Decimal `json:"amount"`
	Status    Status          `json:"status"`
	DueDate   time.Time       `json:"due_date"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Charge describes a fine to be written against a closed loan.
type Charge struct {
	RecordID string
	UserID   string
	BookID   string
	Reason   string
	Amount   decimal.Decimal
}
