package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lendingapi/internal/loan"
)

// LoanRepo is an in-memory loan.Repository. BeforeInsert, when set, runs
// outside the lock ahead of every insert so tests can interleave requests.
// BeforeCommit runs after the record has its seq but before it is visible,
// the way a sequence value is drawn ahead of the committing transaction.
type LoanRepo struct {
	faults
	mu           sync.Mutex
	records      map[string]loan.Record
	seq          int64
	BeforeInsert func(r *loan.Record)
	BeforeCommit func(r *loan.Record)
}

func NewLoanRepo() *LoanRepo {
	return &LoanRepo{records: make(map[string]loan.Record)}
}

func (r *LoanRepo) Insert(_ context.Context, rec *loan.Record) error {
	if hook := r.BeforeInsert; hook != nil {
		hook(rec)
	}
	if err := r.take("Insert"); err != nil {
		return err
	}
	r.mu.Lock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	r.seq++
	rec.Seq = r.seq
	r.mu.Unlock()

	if hook := r.BeforeCommit; hook != nil {
		hook(rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	return nil
}

func (r *LoanRepo) Get(_ context.Context, id string) (loan.Record, error) {
	if err := r.take("Get"); err != nil {
		return loan.Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return loan.Record{}, loan.ErrNotFound
	}
	return rec, nil
}

func (r *LoanRepo) Delete(_ context.Context, id string) error {
	if err := r.take("Delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return loan.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func matches(rec loan.Record, f loan.Filter) bool {
	switch {
	case f.UserID != "" && rec.UserID != f.UserID:
		return false
	case f.Status != "" && rec.Status != f.Status:
		return false
	case f.MaxSeq > 0 && rec.Seq > f.MaxSeq:
		return false
	case !f.DueBefore.IsZero() && !rec.DueDate.Before(f.DueBefore):
		return false
	}
	return true
}

func (r *LoanRepo) Count(_ context.Context, f loan.Filter) (int, error) {
	if err := r.take("Count"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if matches(rec, f) {
			n++
		}
	}
	return n, nil
}

func (r *LoanRepo) List(_ context.Context, f loan.Filter) ([]loan.Record, error) {
	if err := r.take("List"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]loan.Record, 0)
	for _, rec := range r.records {
		if matches(rec, f) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *LoanRepo) Close(_ context.Context, id string, status loan.Status, at time.Time, amount decimal.Decimal) (loan.Record, error) {
	if err := r.take("Close"); err != nil {
		return loan.Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return loan.Record{}, loan.ErrNotFound
	}
	if rec.Status != loan.StatusBorrowing {
		return loan.Record{}, loan.ErrNotOpen
	}
	rec.Status = status
	rec.ReturnDate = &at
	rec.Fine = amount
	r.records[id] = rec
	return rec, nil
}

func (r *LoanRepo) ExtendDue(_ context.Context, id string, by time.Duration) (loan.Record, error) {
	if err := r.take("ExtendDue"); err != nil {
		return loan.Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return loan.Record{}, loan.ErrNotFound
	}
	if rec.Status != loan.StatusBorrowing {
		return loan.Record{}, loan.ErrNotRenewable
	}
	rec.DueDate = rec.DueDate.Add(by)
	r.records[id] = rec
	return rec, nil
}

// Put stores rec as is, for seeding awkward states.
func (r *LoanRepo) Put(rec loan.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec.Seq = r.seq
	r.records[rec.ID] = rec
}
