package notification

import (
	"context"
	"time"
)

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string) ([]Notification, error)
	// MarkRead returns ErrNotFound unless the notification belongs to userID.
	MarkRead(ctx context.Context, id, userID string) error
	// SentSince reports whether a notification of kind about recordID went to userID at or after since.
	SentSince(ctx context.Context, userID, recordID string, kind Kind, since time.Time) (bool, error)
}
