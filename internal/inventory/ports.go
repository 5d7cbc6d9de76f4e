package inventory

import (
	"context"
)

// Repository exposes single-record atomic primitives only. Keeping book
// counters in step with copies is the service's job.
type Repository interface {
	CreateBook(ctx context.Context, b *Book) error
	GetBook(ctx context.Context, id string) (Book, error)
	// AdjustCounters adds the deltas to a book's counters, flooring both at 0
	// and capping available at total.
	AdjustCounters(ctx context.Context, bookID string, total, available int) error

	InsertCopy(ctx context.Context, c *Copy) error
	GetCopy(ctx context.Context, id string) (Copy, error)
	// ClaimAvailable flips one AVAILABLE copy of the book to BORROWED and returns it.
	// It returns ErrNoCopies when none is left.
	ClaimAvailable(ctx context.Context, bookID string) (Copy, error)
	// SetStatus overwrites the copy status and returns the updated copy.
	SetStatus(ctx context.Context, copyID string, status CopyStatus) (Copy, error)
	// DeleteCopy removes the copy and returns it as it was. Unless allowBorrowed
	// is set a BORROWED copy is left alone and ErrCopyInUse is returned.
	DeleteCopy(ctx context.Context, copyID string, allowBorrowed bool) (Copy, error)
	ListCopies(ctx context.Context, bookID string) ([]Copy, error)
}
