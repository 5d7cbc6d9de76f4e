package user

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	// AdjustBorrowed adds the deltas to current_borrowed and total_borrowed in one update.
	AdjustBorrowed(ctx context.Context, id string, current, total int) error
	AddFines(ctx context.Context, id string, amount decimal.Decimal) error
	SetStatus(ctx context.Context, id string, status Status) error
}
