package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lendingapi/internal/fine"
	"lendingapi/internal/inventory"
	"lendingapi/internal/notification"
	"lendingapi/internal/policy"
	"lendingapi/internal/user"
)

// Repository offers single-record atomic operations plus filtered counts.
type Repository interface {
	// Insert stores r and fills in its ID and Seq. Seq grows with insertion order.
	Insert(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)
	List(ctx context.Context, f Filter) ([]Record, error)
	// Close moves a BORROWING record to status. ErrNotOpen if it was already closed.
	Close(ctx context.Context, id string, status Status, at time.Time, fine decimal.Decimal) (Record, error)
	// ExtendDue pushes the due date of a BORROWING record. ErrNotRenewable otherwise.
	ExtendDue(ctx context.Context, id string, by time.Duration) (Record, error)
}

type Users interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	RecordBorrow(ctx context.Context, id string) error
	RecordClose(ctx context.Context, id string) error
}

type Inventory interface {
	GetBook(ctx context.Context, id string) (inventory.Book, error)
	AllocateCopy(ctx context.Context, bookID string) (inventory.Copy, error)
	ReleaseCopy(ctx context.Context, copyID string) error
	MarkCopyLost(ctx context.Context, copyID string) error
	MarkCopyDamaged(ctx context.Context, copyID string) error
}

type Policies interface {
	Get(ctx context.Context) (policy.Settings, error)
}

type Fines interface {
	Charge(ctx context.Context, c fine.Charge, now time.Time) (fine.Fine, error)
}

type Notifier interface {
	Enqueue(ctx context.Context, m notification.Message) (notification.Notification, error)
}

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
