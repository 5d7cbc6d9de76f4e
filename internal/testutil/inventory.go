package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lendingapi/internal/inventory"
)

// InventoryRepo is an in-memory inventory.Repository. Every method touches a
// single record under the lock, like a row-level atomic update.
type InventoryRepo struct {
	faults
	mu     sync.Mutex
	books  map[string]inventory.Book
	copies map[string]inventory.Copy
	order  []string
}

func NewInventoryRepo() *InventoryRepo {
	return &InventoryRepo{
		books:  make(map[string]inventory.Book),
		copies: make(map[string]inventory.Copy),
	}
}

func (r *InventoryRepo) CreateBook(_ context.Context, b *inventory.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.books[b.ID] = *b
	return nil
}

func (r *InventoryRepo) GetBook(_ context.Context, id string) (inventory.Book, error) {
	if err := r.take("GetBook"); err != nil {
		return inventory.Book{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return inventory.Book{}, inventory.ErrNotFound
	}
	return b, nil
}

func (r *InventoryRepo) AdjustCounters(_ context.Context, bookID string, total, available int) error {
	if err := r.take("AdjustCounters"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[bookID]
	if !ok {
		return inventory.ErrNotFound
	}
	newTotal := max(b.TotalCopies+total, 0)
	b.AvailableCopies = max(min(b.AvailableCopies+available, b.TotalCopies+total), 0)
	b.TotalCopies = newTotal
	b.UpdatedAt = time.Now()
	r.books[bookID] = b
	return nil
}

func (r *InventoryRepo) InsertCopy(_ context.Context, c *inventory.Copy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.copies[c.ID] = *c
	r.order = append(r.order, c.ID)
	return nil
}

func (r *InventoryRepo) GetCopy(_ context.Context, id string) (inventory.Copy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.copies[id]
	if !ok {
		return inventory.Copy{}, inventory.ErrCopyNotFound
	}
	return c, nil
}

func (r *InventoryRepo) ClaimAvailable(_ context.Context, bookID string) (inventory.Copy, error) {
	if err := r.take("ClaimAvailable"); err != nil {
		return inventory.Copy{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		c, ok := r.copies[id]
		if !ok || c.BookID != bookID || c.Status != inventory.CopyAvailable {
			continue
		}
		c.Status = inventory.CopyBorrowed
		c.UpdatedAt = time.Now()
		r.copies[id] = c
		return c, nil
	}
	return inventory.Copy{}, inventory.ErrNoCopies
}

func (r *InventoryRepo) SetStatus(_ context.Context, copyID string, status inventory.CopyStatus) (inventory.Copy, error) {
	if err := r.take("SetStatus"); err != nil {
		return inventory.Copy{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.copies[copyID]
	if !ok {
		return inventory.Copy{}, inventory.ErrCopyNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	r.copies[copyID] = c
	return c, nil
}

func (r *InventoryRepo) DeleteCopy(_ context.Context, copyID string, allowBorrowed bool) (inventory.Copy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.copies[copyID]
	if !ok {
		return inventory.Copy{}, inventory.ErrCopyNotFound
	}
	if c.Status == inventory.CopyBorrowed && !allowBorrowed {
		return inventory.Copy{}, inventory.ErrCopyInUse
	}
	delete(r.copies, copyID)
	return c, nil
}

func (r *InventoryRepo) ListCopies(_ context.Context, bookID string) ([]inventory.Copy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]inventory.Copy, 0)
	for _, id := range r.order {
		if c, ok := r.copies[id]; ok && c.BookID == bookID {
			out = append(out, c)
		}
	}
	return out, nil
}

// CountCopies counts copies of a book in the given status.
func (r *InventoryRepo) CountCopies(bookID string, status inventory.CopyStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.copies {
		if c.BookID == bookID && c.Status == status {
			n++
		}
	}
	return n
}
