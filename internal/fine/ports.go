package fine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Insert(ctx context.Context, f *Fine) error
	Get(ctx context.Context, id string) (Fine, error)
	// MarkPaid moves an UNPAID fine to PAID; ErrAlreadyPaid if it was not UNPAID.
	MarkPaid(ctx context.Context, id string, at time.Time) (Fine, error)
	ListByUser(ctx context.Context, userID string) ([]Fine, error)
}

// Accumulator keeps the user's running fine total.
type Accumulator interface {
	AddFines(ctx context.Context, userID string, amount decimal.Decimal) error
}
