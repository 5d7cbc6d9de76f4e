package notification

import (
	"context"
	"time"
)

// Service is an append-only outbox. It never touches loan state.
type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Enqueue(ctx context.Context, m Message) (Notification, error) {
	if m.UserID == "" || m.Kind == "" {
		return Notification{}, ErrInvalid
	}
	n := Notification{
		UserID:    m.UserID,
		Kind:      m.Kind,
		Message:   m.Text,
		Payload:   m.Payload,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Service) SentSince(ctx context.Context, userID, recordID string, kind Kind, since time.Time) (bool, error) {
	return s.repo.SentSince(ctx, userID, recordID, kind, since)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, id, userID)
}
