package user

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, email, username, hashedPassword string) (User, error) {
	return s.create(ctx, email, username, hashedPassword, RoleUser)
}

func (s *Service) create(ctx context.Context, email, username, hashedPassword string, role Role) (User, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	newUser := &User{
		Email:    email,
		Username: username,
		Password: hashedPassword,
		Role:     role,
		Status:   StatusActive,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

// EnsureAdmin creates the administrator account unless the username is taken.
func (s *Service) EnsureAdmin(ctx context.Context, username, hashedPassword string) (User, error) {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	return s.create(ctx, "", username, hashedPassword, RoleAdmin)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// IsActive is used by the auth middleware on every authenticated request.
func (s *Service) IsActive(ctx context.Context, id string) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsActive(), nil
}

// RecordBorrow counts a new open loan.
func (s *Service) RecordBorrow(ctx context.Context, id string) error {
	return s.repo.AdjustBorrowed(ctx, id, 1, 1)
}

// RecordClose counts a loan leaving the open state. The counter is not floored.
func (s *Service) RecordClose(ctx context.Context, id string) error {
	return s.repo.AdjustBorrowed(ctx, id, -1, 0)
}

func (s *Service) AddFines(ctx context.Context, id string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return nil
	}
	return s.repo.AddFines(ctx, id, amount)
}

func (s *Service) Lock(ctx context.Context, caller Caller, id string) error {
	return s.setStatus(ctx, caller, id, StatusLocked)
}

func (s *Service) Unlock(ctx context.Context, caller Caller, id string) error {
	return s.setStatus(ctx, caller, id, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, caller Caller, id string, status Status) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.SetStatus(ctx, id, status)
}
