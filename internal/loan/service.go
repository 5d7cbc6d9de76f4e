package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"lendingapi/internal/fine"
	"lendingapi/internal/httpx"
	"lendingapi/internal/inventory"
	"lendingapi/internal/notification"
	"lendingapi/internal/user"
)

// Service runs the loan lifecycle on top of a store that only guarantees
// single-record atomicity. Issue keeps the per-user quota by checking,
// allocating, re-checking, inserting, verifying and compensating.
type Service struct {
	repo      Repository
	users     Users
	inventory Inventory
	policies  Policies
	fines     Fines
	notifier  Notifier
	logger    Logger
	now       func() time.Time
}

type Option func(*Service)

func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, users Users, inv Inventory, policies Policies, fines Fines, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		users:     users,
		inventory: inv,
		policies:  policies,
		fines:     fines,
		notifier:  notifier,
		logger:    nopLogger{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log tags the service logger with the request id carried by ctx, when the
// logger can hold attributes.
func (s *Service) log(ctx context.Context) Logger {
	id := httpx.RequestIDFromContext(ctx)
	if id == "" {
		return s.logger
	}
	if l, ok := s.logger.(interface{ With(args ...any) *slog.Logger }); ok {
		return l.With("request_id", id)
	}
	return s.logger
}

func (s *Service) fail(ctx context.Context, op string, err error, args ...any) error {
	s.log(ctx).Error(op+" failed", append(args, "error", err)...)
	return storeErr(err)
}

func (s *Service) requireActive(ctx context.Context, caller user.Caller) error {
	u, err := s.users.GetByID(ctx, caller.ID)
	if errors.Is(err, user.ErrNotFound) {
		return ErrUserInactive
	}
	if err != nil {
		return s.fail(ctx, "load user", err, "user_id", caller.ID)
	}
	if !u.IsActive() {
		return ErrUserInactive
	}
	return nil
}

func (s *Service) openCount(ctx context.Context, userID string) (int, error) {
	return s.repo.Count(ctx, Filter{UserID: userID, Status: StatusBorrowing})
}

// IssueLoan lends one copy of bookID to the caller.
func (s *Service) IssueLoan(ctx context.Context, caller user.Caller, bookID string) (Record, error) {
	if err := s.requireActive(ctx, caller); err != nil {
		return Record{}, err
	}

	settings, err := s.policies.Get(ctx)
	if err != nil {
		return Record{}, s.fail(ctx, "load policy", err)
	}
	limit := settings.MaxBorrowBooks

	active, err := s.openCount(ctx, caller.ID)
	if err != nil {
		return Record{}, s.fail(ctx, "count open loans", err, "user_id", caller.ID)
	}
	if active >= limit {
		s.log(ctx).Debug("quota exceeded", "user_id", caller.ID, "active", active, "limit", limit)
		return Record{}, ErrQuotaExceeded
	}

	book, err := s.inventory.GetBook(ctx, bookID)
	if errors.Is(err, inventory.ErrNotFound) {
		return Record{}, ErrBookNotFound
	}
	if err != nil {
		return Record{}, s.fail(ctx, "load book", err, "book_id", bookID)
	}
	if book.AvailableCopies <= 0 {
		s.log(ctx).Debug("no copies", "book_id", bookID)
		return Record{}, ErrNoCopies
	}

	cp, err := s.inventory.AllocateCopy(ctx, bookID)
	if errors.Is(err, inventory.ErrNoCopies) {
		s.log(ctx).Debug("no copies at allocation", "book_id", bookID)
		return Record{}, ErrNoCopies
	}
	if err != nil {
		return Record{}, s.fail(ctx, "allocate copy", err, "book_id", bookID)
	}

	comp := &compensation{records: s.repo, copies: s.inventory, copyID: cp.ID}

	active, err = s.openCount(ctx, caller.ID)
	if err != nil {
		s.compensate(ctx, comp, caller.ID, bookID)
		return Record{}, s.fail(ctx, "recount open loans", err, "user_id", caller.ID)
	}
	if active >= limit {
		s.compensate(ctx, comp, caller.ID, bookID)
		s.log(ctx).Debug("quota exceeded on recheck", "user_id", caller.ID, "active", active, "limit", limit)
		return Record{}, ErrQuotaExceeded
	}

	now := s.now()
	rec := Record{
		UserID:     caller.ID,
		BookID:     bookID,
		CopyID:     cp.ID,
		BorrowDate: now,
		DueDate:    now.Add(settings.LoanPeriod()),
		Status:     StatusBorrowing,
		Fine:       decimal.Zero,
	}
	if err := s.repo.Insert(ctx, &rec); err != nil {
		s.compensate(ctx, comp, caller.ID, bookID)
		return Record{}, s.fail(ctx, "insert record", err, "user_id", caller.ID)
	}
	comp.recordID = rec.ID

	// Every open record counts, ours included: seq order is not commit order.
	active, err = s.openCount(ctx, caller.ID)
	if err != nil {
		s.compensate(ctx, comp, caller.ID, bookID)
		return Record{}, s.fail(ctx, "verify open loans", err, "user_id", caller.ID)
	}
	if active > limit {
		s.compensate(ctx, comp, caller.ID, bookID)
		s.log(ctx).Debug("quota exceeded on verify", "user_id", caller.ID, "active", active, "limit", limit)
		return Record{}, ErrQuotaExceeded
	}

	if err := s.users.RecordBorrow(ctx, caller.ID); err != nil {
		s.log(ctx).Warn("borrow counters not updated", "user_id", caller.ID, "record_id", rec.ID, "error", err)
	}

	s.log(ctx).Info("loan issued", "user_id", caller.ID, "book_id", bookID, "copy_id", cp.ID, "record_id", rec.ID)
	return rec, nil
}

func (s *Service) compensate(ctx context.Context, c *compensation, userID, bookID string) {
	s.log(ctx).Warn("rolling back loan issue",
		"user_id", userID, "book_id", bookID, "copy_id", c.copyID, "record_id", c.recordID)
	if err := c.run(ctx); err != nil {
		s.log(ctx).Error("rollback incomplete",
			"user_id", userID, "book_id", bookID, "copy_id", c.copyID, "record_id", c.recordID, "error", err)
	}
}

// record loads a record the caller may act on. Other users' records are
// reported as missing.
func (s *Service) record(ctx context.Context, caller user.Caller, id string) (Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, s.fail(ctx, "load record", err, "record_id", id)
	}
	if !caller.IsAdmin() && rec.UserID != caller.ID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// close flips the record first so a repeated call cannot charge twice.
func (s *Service) close(ctx context.Context, rec Record, status Status, now time.Time, amount decimal.Decimal) (Record, error) {
	closed, err := s.repo.Close(ctx, rec.ID, status, now, amount)
	switch {
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrNotFound):
		return Record{}, err
	case err != nil:
		return Record{}, s.fail(ctx, "close record", err, "record_id", rec.ID)
	}
	return closed, nil
}

func (s *Service) charge(ctx context.Context, rec Record, reason string, amount decimal.Decimal, now time.Time) error {
	_, err := s.fines.Charge(ctx, fine.Charge{
		RecordID: rec.ID,
		UserID:   rec.UserID,
		BookID:   rec.BookID,
		Reason:   reason,
		Amount:   amount,
	}, now)
	if err != nil {
		return s.fail(ctx, "charge fine", err, "record_id", rec.ID, "reason", reason)
	}
	return nil
}

// updateCopy applies fn to the record's copy. A copy removed from the
// inventory while on loan is skipped so the close still completes.
func (s *Service) updateCopy(ctx context.Context, rec Record, fn func(ctx context.Context, copyID string) error) error {
	err := fn(ctx, rec.CopyID)
	switch {
	case errors.Is(err, inventory.ErrCopyNotFound):
		s.log(ctx).Warn("copy no longer in inventory", "record_id", rec.ID, "copy_id", rec.CopyID, "status", rec.Status)
		return nil
	case err != nil:
		return s.fail(ctx, "update copy", err, "record_id", rec.ID, "copy_id", rec.CopyID, "status", rec.Status)
	}
	return nil
}

func (s *Service) releaseBorrowSlot(ctx context.Context, rec Record) {
	if err := s.users.RecordClose(ctx, rec.UserID); err != nil {
		s.log(ctx).Warn("borrow counters not updated", "user_id", rec.UserID, "record_id", rec.ID, "error", err)
	}
}

// ReturnLoan closes an open loan, charging for every started day past due.
func (s *Service) ReturnLoan(ctx context.Context, caller user.Caller, recordID string) (ReturnResult, error) {
	rec, err := s.record(ctx, caller, recordID)
	if err != nil {
		return ReturnResult{}, err
	}
	if !rec.IsOpen() {
		return ReturnResult{}, ErrNotOpen
	}

	settings, err := s.policies.Get(ctx)
	if err != nil {
		return ReturnResult{}, s.fail(ctx, "load policy", err)
	}

	now := s.now()
	amount := OverdueFine(rec.DueDate, now, settings.OverdueFinePerDay)

	closed, err := s.close(ctx, rec, StatusReturned, now, amount)
	if err != nil {
		return ReturnResult{}, err
	}
	if amount.IsPositive() {
		if err := s.charge(ctx, closed, fine.ReasonOverdue, amount, now); err != nil {
			return ReturnResult{}, err
		}
	}
	if err := s.updateCopy(ctx, closed, s.inventory.ReleaseCopy); err != nil {
		return ReturnResult{}, err
	}
	s.releaseBorrowSlot(ctx, closed)

	s.log(ctx).Info("loan returned", "record_id", closed.ID, "user_id", closed.UserID, "fine", amount.String())
	return ReturnResult{Record: closed, FineApplied: amount}, nil
}

// RenewLoan pushes the due date of an open loan by the policy's renewal period.
// There is no cap on the number of renewals.
func (s *Service) RenewLoan(ctx context.Context, caller user.Caller, recordID string) (RenewResult, error) {
	if err := s.requireActive(ctx, caller); err != nil {
		return RenewResult{}, err
	}
	rec, err := s.record(ctx, caller, recordID)
	if err != nil {
		return RenewResult{}, err
	}
	if !rec.IsOpen() {
		return RenewResult{}, ErrNotRenewable
	}
	if rec.DueDate.IsZero() {
		return RenewResult{}, ErrNotFound
	}

	settings, err := s.policies.Get(ctx)
	if err != nil {
		return RenewResult{}, s.fail(ctx, "load policy", err)
	}

	renewed, err := s.repo.ExtendDue(ctx, rec.ID, settings.RenewalPeriod())
	switch {
	case errors.Is(err, ErrNotRenewable), errors.Is(err, ErrNotFound):
		return RenewResult{}, err
	case err != nil:
		return RenewResult{}, s.fail(ctx, "extend due date", err, "record_id", rec.ID)
	}

	s.log(ctx).Info("loan renewed", "record_id", rec.ID, "due_date", renewed.DueDate)
	return RenewResult{Record: renewed, NewDueDate: renewed.DueDate}, nil
}

// ReportLost closes an open loan as lost and takes the copy out of circulation.
func (s *Service) ReportLost(ctx context.Context, caller user.Caller, recordID string) (IncidentResult, error) {
	rec, err := s.record(ctx, caller, recordID)
	if err != nil {
		return IncidentResult{}, err
	}
	if !rec.IsOpen() {
		return IncidentResult{}, ErrNotOpen
	}

	settings, err := s.policies.Get(ctx)
	if err != nil {
		return IncidentResult{}, s.fail(ctx, "load policy", err)
	}

	price := decimal.Zero
	book, err := s.inventory.GetBook(ctx, rec.BookID)
	switch {
	case err == nil:
		price = book.Price
	case !errors.Is(err, inventory.ErrNotFound):
		return IncidentResult{}, s.fail(ctx, "load book", err, "book_id", rec.BookID)
	}
	amount := LostFine(price, settings.LostBookFine)

	return s.incident(ctx, rec, StatusLost, fine.ReasonLost, amount, s.inventory.MarkCopyLost)
}

// ReportDamaged closes an open loan as damaged. Book counters are unchanged.
func (s *Service) ReportDamaged(ctx context.Context, caller user.Caller, recordID string) (IncidentResult, error) {
	rec, err := s.record(ctx, caller, recordID)
	if err != nil {
		return IncidentResult{}, err
	}
	if !rec.IsOpen() {
		return IncidentResult{}, ErrNotOpen
	}

	settings, err := s.policies.Get(ctx)
	if err != nil {
		return IncidentResult{}, s.fail(ctx, "load policy", err)
	}

	return s.incident(ctx, rec, StatusDamaged, fine.ReasonDamaged, settings.DamagedBookFine, s.inventory.MarkCopyDamaged)
}

func (s *Service) incident(
	ctx context.Context,
	rec Record,
	status Status,
	reason string,
	amount decimal.Decimal,
	markCopy func(ctx context.Context, copyID string) error,
) (IncidentResult, error) {
	now := s.now()
	closed, err := s.close(ctx, rec, status, now, amount)
	if err != nil {
		return IncidentResult{}, err
	}
	if err := s.charge(ctx, closed, reason, amount, now); err != nil {
		return IncidentResult{}, err
	}
	if err := s.updateCopy(ctx, closed, markCopy); err != nil {
		return IncidentResult{}, err
	}
	s.releaseBorrowSlot(ctx, closed)

	s.log(ctx).Info("loan closed by incident", "record_id", closed.ID, "status", status, "fine", amount.String())
	return IncidentResult{Record: closed, FineAmount: amount}, nil
}

// ForceReturnRequest asks the borrower to bring the book back. The loan stays open.
func (s *Service) ForceReturnRequest(ctx context.Context, caller user.Caller, recordID string) (notification.Notification, error) {
	if !caller.IsAdmin() {
		return notification.Notification{}, ErrForbidden
	}
	rec, err := s.record(ctx, caller, recordID)
	if err != nil {
		return notification.Notification{}, err
	}
	if !rec.IsOpen() {
		return notification.Notification{}, ErrNotOpen
	}

	title := rec.BookID
	if book, err := s.inventory.GetBook(ctx, rec.BookID); err == nil {
		title = book.Title
	}

	n, err := s.notifier.Enqueue(ctx, notification.Message{
		UserID: rec.UserID,
		Kind:   notification.KindForceReturn,
		Text:   fmt.Sprintf("Please return %q to the library in person. It was due %s.", title, rec.DueDate.Format(time.DateOnly)),
		Payload: notification.Payload{
			RecordID: rec.ID,
			BookID:   rec.BookID,
			DueDate:  rec.DueDate,
		},
	})
	if err != nil {
		return notification.Notification{}, s.fail(ctx, "enqueue notification", err, "record_id", rec.ID)
	}

	s.log(ctx).Info("return requested", "record_id", rec.ID, "user_id", rec.UserID, "by", caller.ID)
	return n, nil
}

// List returns records matching f. Non-admin callers only see their own.
func (s *Service) List(ctx context.Context, caller user.Caller, f Filter) ([]Record, error) {
	if !caller.IsAdmin() {
		f.UserID = caller.ID
	}
	records, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "list records", err)
	}
	return records, nil
}
