package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lendingapi/internal/user"
)

// UserRepo is an in-memory user.Repository.
type UserRepo struct {
	faults
	mu    sync.Mutex
	users map[string]user.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]user.User)}
}

func (r *UserRepo) Create(_ context.Context, u *user.User) error {
	if err := r.take("Create"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return user.ErrAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	u.TotalFines = decimal.Zero
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	if err := r.take("GetByID"); err != nil {
		return user.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepo) update(id string, fn func(u *user.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *UserRepo) AdjustBorrowed(_ context.Context, id string, current, total int) error {
	if err := r.take("AdjustBorrowed"); err != nil {
		return err
	}
	return r.update(id, func(u *user.User) {
		u.CurrentBorrowed += current
		u.TotalBorrowed += total
	})
}

func (r *UserRepo) AddFines(_ context.Context, id string, amount decimal.Decimal) error {
	if err := r.take("AddFines"); err != nil {
		return err
	}
	return r.update(id, func(u *user.User) {
		u.TotalFines = u.TotalFines.Add(amount)
	})
}

func (r *UserRepo) SetStatus(_ context.Context, id string, status user.Status) error {
	return r.update(id, func(u *user.User) {
		u.Status = status
	})
}
