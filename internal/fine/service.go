package fine

import (
	"context"
	"time"

	"lendingapi/internal/user"
)

type Service struct {
	repo  Repository
	users Accumulator
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, users Accumulator, opts ...Option) *Service {
	s := &Service{repo: repo, users: users, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Charge writes an UNPAID fine due PaymentWindow after now and adds it to the
// user's total.
func (s *Service) Charge(ctx context.Context, c Charge, now time.Time) (Fine, error) {
	if c.Amount.IsNegative() || c.RecordID == "" || c.UserID == "" {
		return Fine{}, ErrInvalid
	}

	f := Fine{
		RecordID:  c.RecordID,
		UserID:    c.UserID,
		BookID:    c.BookID,
		Reason:    c.Reason,
		Amount:    c.Amount,
		Status:    StatusUnpaid,
		DueDate:   now.Add(PaymentWindow),
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, &f); err != nil {
		return Fine{}, err
	}
	if err := s.users.AddFines(ctx, c.UserID, c.Amount); err != nil {
		return f, err
	}
	return f, nil
}

// Pay settles a fine. The user's total is left as it is.
func (s *Service) Pay(ctx context.Context, caller user.Caller, id string) (Fine, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return Fine{}, err
	}
	if !caller.IsAdmin() && f.UserID != caller.ID {
		return Fine{}, ErrNotFound
	}
	if f.Status == StatusPaid {
		return Fine{}, ErrAlreadyPaid
	}
	return s.repo.MarkPaid(ctx, id, s.now())
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Fine, error) {
	return s.repo.ListByUser(ctx, userID)
}
