package policy

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("settings not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid settings")
)

// Settings is the singleton lending policy.
type Settings struct {
	MaxBorrowBooks     int             `json:"max_borrow_books"`
	MaxBorrowDays      int             `json:"max_borrow_days"`
	RenewalDays        int             `json:"renewal_days"`
	OverdueFinePerDay  decimal.Decimal `json:"overdue_fine_per_day"`
	LostBookFine       decimal.Decimal `json:"lost_book_fine"`
	DamagedBookFine    decimal.Decimal `json:"damaged_book_fine"`
	AutoCheckOverdue   bool            `json:"auto_check_overdue"`
	ReminderDaysBefore int             `json:"reminder_days_before"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func Defaults() Settings {
	return Settings{
		MaxBorrowBooks:     5,
		MaxBorrowDays:      14,
		RenewalDays:        7,
		OverdueFinePerDay:  decimal.NewFromInt(5000),
		LostBookFine:       decimal.NewFromInt(50000),
		DamagedBookFine:    decimal.NewFromInt(20000),
		AutoCheckOverdue:   true,
		ReminderDaysBefore: 2,
	}
}

// LoanPeriod is the length of a fresh loan.
func (s Settings) LoanPeriod() time.Duration {
	return time.Duration(s.MaxBorrowDays) * 24 * time.Hour
}

func (s Settings) RenewalPeriod() time.Duration {
	return time.Duration(s.RenewalDays) * 24 * time.Hour
}

func (s Settings) Validate() error {
	switch {
	case s.MaxBorrowBooks < 1, s.MaxBorrowDays < 1, s.RenewalDays < 1, s.ReminderDaysBefore < 0:
		return ErrInvalid
	case s.OverdueFinePerDay.IsNegative(), s.LostBookFine.IsNegative(), s.DamagedBookFine.IsNegative():
		return ErrInvalid
	}
	return nil
}
