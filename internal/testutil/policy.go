package testutil

import (
	"context"
	"sync"
	"time"

	"lendingapi/internal/policy"
)

// PolicyRepo is an in-memory policy.Repository.
type PolicyRepo struct {
	faults
	mu       sync.Mutex
	settings *policy.Settings
}

func NewPolicyRepo() *PolicyRepo {
	return &PolicyRepo{}
}

func (r *PolicyRepo) Get(_ context.Context) (policy.Settings, error) {
	if err := r.take("Get"); err != nil {
		return policy.Settings{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return policy.Settings{}, policy.ErrNotFound
	}
	return *r.settings, nil
}

func (r *PolicyRepo) CreateIfAbsent(_ context.Context, s policy.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		s.UpdatedAt = time.Now()
		r.settings = &s
	}
	return nil
}

func (r *PolicyRepo) Update(_ context.Context, s policy.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return policy.ErrNotFound
	}
	s.UpdatedAt = time.Now()
	r.settings = &s
	return nil
}
