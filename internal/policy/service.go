package policy

import (
	"context"
	"errors"

	"lendingapi/internal/user"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the current policy, creating the default row on first use.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Settings{}, err
	}

	if err := s.repo.CreateIfAbsent(ctx, Defaults()); err != nil {
		return Settings{}, err
	}
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, caller user.Caller, settings Settings) (Settings, error) {
	if !caller.IsAdmin() {
		return Settings{}, ErrForbidden
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	if _, err := s.Get(ctx); err != nil {
		return Settings{}, err
	}
	if err := s.repo.Update(ctx, settings); err != nil {
		return Settings{}, err
	}
	return s.repo.Get(ctx)
}
