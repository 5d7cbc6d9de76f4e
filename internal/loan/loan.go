package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusBorrowing Status = "BORROWING"
	StatusReturned  Status = "RETURNED"
	StatusLost      Status = "LOST"
	StatusDamaged   Status = "DAMAGED"
)

// Record is one borrow of one physical copy. Only BORROWING is non-terminal.
type Record struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	BookID     string          `json:"book_id"`
	CopyID     string          `json:"copy_id"`
	Seq        int64           `json:"-"`
	BorrowDate time.Time       `json:"borrow_date"`
	DueDate    time.Time       `json:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`
	Status     Status          `json:"status"`
	Fine       decimal.Decimal `json:"fine"`
}

func (r Record) IsOpen() bool {
	return r.Status == StatusBorrowing
}

// Filter selects records. Zero fields do not filter.
type Filter struct {
	UserID string
	Status Status
	// MaxSeq keeps records inserted at or before this sequence number.
	MaxSeq int64
	// DueBefore keeps records due strictly before this instant.
	DueBefore time.Time
	// Limit caps List results. Zero means no cap.
	Limit int
}

type ReturnResult struct {
	Record      Record          `json:"record"`
	FineApplied decimal.Decimal `json:"fine_applied"`
}

type RenewResult struct {
	Record     Record    `json:"record"`
	NewDueDate time.Time `json:"new_due_date"`
}

type IncidentResult struct {
	Record     Record          `json:"record"`
	FineAmount decimal.Decimal `json:"fine_amount"`
}

var (
	ErrUserInactive  = errors.New("user is not active")
	ErrQuotaExceeded = errors.New("borrowing limit reached")
	ErrBookNotFound  = errors.New("book not found")
	ErrNoCopies      = errors.New("no copies available")
	ErrNotFound      = errors.New("borrow record not found")
	ErrNotRenewable  = errors.New("loan cannot be renewed")
	ErrNotOpen       = errors.New("loan is not open")
	ErrForbidden     = errors.New("forbidden")

	// ErrStore marks a failed read or write against the record store.
	ErrStore = errors.New("record store failure")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrUserInactive, "USER_INACTIVE"},
	{ErrQuotaExceeded, "QUOTA_EXCEEDED"},
	{ErrBookNotFound, "BOOK_NOT_FOUND"},
	{ErrNoCopies, "NO_COPIES"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrNotRenewable, "NOT_RENEWABLE"},
	{ErrNotOpen, "NOT_OPEN"},
	{ErrForbidden, "FORBIDDEN"},
}

// Code maps an engine error to its outcome code. Anything unrecognised,
// store failures included, is INTERNAL_ERROR.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL_ERROR"
}

func storeErr(err error) error {
	return errors.Join(ErrStore, err)
}

const day = 24 * time.Hour

// OverdueDays counts started days past due. Any lateness is at least one day.
func OverdueDays(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	late := now.Sub(due)
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

func OverdueFine(due, now time.Time, perDay decimal.Decimal) decimal.Decimal {
	return perDay.Mul(decimal.NewFromInt(int64(OverdueDays(due, now))))
}

// LostFine charges the book price on top of the flat lost fee, never less than the fee.
func LostFine(price, lostBookFine decimal.Decimal) decimal.Decimal {
	return decimal.Max(lostBookFine, price.Add(lostBookFine))
}
