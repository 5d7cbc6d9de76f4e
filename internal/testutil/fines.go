package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lendingapi/internal/fine"
)

// FineRepo is an in-memory fine.Repository.
type FineRepo struct {
	faults
	mu    sync.Mutex
	fines map[string]fine.Fine
}

func NewFineRepo() *FineRepo {
	return &FineRepo{fines: make(map[string]fine.Fine)}
}

func (r *FineRepo) Insert(_ context.Context, f *fine.Fine) error {
	if err := r.take("Insert"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	r.fines[f.ID] = *f
	return nil
}

func (r *FineRepo) Get(_ context.Context, id string) (fine.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fines[id]
	if !ok {
		return fine.Fine{}, fine.ErrNotFound
	}
	return f, nil
}

func (r *FineRepo) MarkPaid(_ context.Context, id string, at time.Time) (fine.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fines[id]
	if !ok {
		return fine.Fine{}, fine.ErrNotFound
	}
	if f.Status != fine.StatusUnpaid {
		return fine.Fine{}, fine.ErrAlreadyPaid
	}
	f.Status = fine.StatusPaid
	f.PaidDate = &at
	r.fines[id] = f
	return f, nil
}

func (r *FineRepo) ListByUser(_ context.Context, userID string) ([]fine.Fine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fine.Fine, 0)
	for _, f := range r.fines {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ForRecord returns every fine written against a borrow record.
func (r *FineRepo) ForRecord(recordID string) []fine.Fine {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []fine.Fine
	for _, f := range r.fines {
		if f.RecordID == recordID {
			out = append(out, f)
		}
	}
	return out
}
