package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lendingapi/internal/notification"
)

// NotificationRepo is an in-memory notification.Repository that keeps insertion order.
type NotificationRepo struct {
	faults
	mu    sync.Mutex
	items []notification.Notification
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{}
}

func (r *NotificationRepo) Insert(_ context.Context, n *notification.Notification) error {
	if err := r.take("Insert"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *NotificationRepo) ListByUser(_ context.Context, userID string) ([]notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *NotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (r *NotificationRepo) SentSince(_ context.Context, userID, recordID string, kind notification.Kind, since time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.UserID == userID && n.Kind == kind && n.Payload.RecordID == recordID && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// All returns a copy of every stored notification.
func (r *NotificationRepo) All() []notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Notification(nil), r.items...)
}
