package inventory

import (
	"context"

	"lendingapi/internal/user"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateBook(ctx context.Context, caller user.Caller, b Book) (Book, error) {
	if !caller.IsAdmin() {
		return Book{}, ErrForbidden
	}
	b.TotalCopies = 0
	b.AvailableCopies = 0
	if err := s.repo.CreateBook(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	return s.repo.GetBook(ctx, id)
}

// AllocateCopy takes any available copy of the book out of circulation.
// A stale available counter is tolerated: the claim itself decides.
func (s *Service) AllocateCopy(ctx context.Context, bookID string) (Copy, error) {
	c, err := s.repo.ClaimAvailable(ctx, bookID)
	if err != nil {
		return Copy{}, err
	}
	if err := s.repo.AdjustCounters(ctx, bookID, 0, -1); err != nil {
		return Copy{}, err
	}
	return c, nil
}

// ReleaseCopy puts a previously allocated copy back on the shelf.
func (s *Service) ReleaseCopy(ctx context.Context, copyID string) error {
	c, err := s.repo.SetStatus(ctx, copyID, CopyAvailable)
	if err != nil {
		return err
	}
	return s.repo.AdjustCounters(ctx, c.BookID, 0, 1)
}

// MarkCopyLost removes the copy from the circulating pool.
func (s *Service) MarkCopyLost(ctx context.Context, copyID string) error {
	c, err := s.repo.SetStatus(ctx, copyID, CopyLost)
	if err != nil {
		return err
	}
	return s.repo.AdjustCounters(ctx, c.BookID, -1, -1)
}

// MarkCopyDamaged keeps the book counters as they are; the copy still exists.
func (s *Service) MarkCopyDamaged(ctx context.Context, copyID string) error {
	_, err := s.repo.SetStatus(ctx, copyID, CopyDamaged)
	return err
}

func (s *Service) AddCopy(ctx context.Context, caller user.Caller, bookID string, status CopyStatus, location, notes string) (Copy, error) {
	if !caller.IsAdmin() {
		return Copy{}, ErrForbidden
	}
	if status == "" {
		status = CopyAvailable
	}
	if status != CopyAvailable && status != CopyBorrowed {
		return Copy{}, ErrInvalidStatus
	}
	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		return Copy{}, err
	}

	c := Copy{BookID: bookID, Status: status, Location: location, Notes: notes}
	if err := s.repo.InsertCopy(ctx, &c); err != nil {
		return Copy{}, err
	}

	available := 0
	if status == CopyAvailable {
		available = 1
	}
	if err := s.repo.AdjustCounters(ctx, bookID, 1, available); err != nil {
		return Copy{}, err
	}
	return c, nil
}

// RemoveCopy deletes a copy. A borrowed copy is only removed with force.
func (s *Service) RemoveCopy(ctx context.Context, caller user.Caller, copyID string, force bool) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}
	c, err := s.repo.DeleteCopy(ctx, copyID, force)
	if err != nil {
		return err
	}

	available := 0
	if c.Status == CopyAvailable {
		available = -1
	}
	return s.repo.AdjustCounters(ctx, c.BookID, -1, available)
}

func (s *Service) CopiesForBook(ctx context.Context, caller user.Caller, bookID string) ([]Copy, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := s.repo.GetBook(ctx, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListCopies(ctx, bookID)
}
