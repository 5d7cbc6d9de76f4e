package policy

import (
	"context"
)

type Repository interface {
	// Get returns ErrNotFound when the singleton row does not exist yet.
	Get(ctx context.Context) (Settings, error)
	// CreateIfAbsent inserts s unless a row exists; concurrent callers are safe.
	CreateIfAbsent(ctx context.Context, s Settings) error
	Update(ctx context.Context, s Settings) error
}
