package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"lendingapi/internal/inventory"
	"lendingapi/internal/loan"
	"lendingapi/internal/notification"
	"lendingapi/internal/policy"
)

const day = 24 * time.Hour

type Loans interface {
	List(ctx context.Context, f loan.Filter) ([]loan.Record, error)
}

type Policies interface {
	Get(ctx context.Context) (policy.Settings, error)
}

type Books interface {
	GetBook(ctx context.Context, id string) (inventory.Book, error)
}

type Notifier interface {
	Enqueue(ctx context.Context, m notification.Message) (notification.Notification, error)
	SentSince(ctx context.Context, userID, recordID string, kind notification.Kind, since time.Time) (bool, error)
}

// Summary reports what one scan did.
type Summary struct {
	Scanned int
	DueSoon int
	Overdue int
	Skipped int
}

// Job scans open loans and queues due-soon and overdue reminders. It only
// reads loans; fines are charged when a loan is closed.
type Job struct {
	loans    Loans
	policies Policies
	books    Books
	notifier Notifier
	logger   loan.Logger
	now      func() time.Time
}

type Option func(*Job)

func WithLogger(l loan.Logger) Option {
	return func(j *Job) {
		if l != nil {
			j.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

func NewJob(loans Loans, policies Policies, books Books, notifier Notifier, opts ...Option) *Job {
	j := &Job{
		loans:    loans,
		policies: policies,
		books:    books,
		notifier: notifier,
		logger:   silent{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run performs one scan. At most one reminder of each kind is sent per loan
// per UTC day. Failures on a single loan are logged and the scan goes on.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	settings, err := j.policies.Get(ctx)
	if err != nil {
		return sum, fmt.Errorf("load policy: %w", err)
	}
	if !settings.AutoCheckOverdue {
		return sum, nil
	}

	now := j.now()
	horizon := now.Add(time.Duration(settings.ReminderDaysBefore) * day)
	records, err := j.loans.List(ctx, loan.Filter{
		Status:    loan.StatusBorrowing,
		DueBefore: horizon.Add(time.Second),
	})
	if err != nil {
		return sum, fmt.Errorf("list open loans: %w", err)
	}

	since := now.UTC().Truncate(day)
	for _, rec := range records {
		sum.Scanned++

		msg := j.message(ctx, rec, now, settings)
		sent, err := j.notifier.SentSince(ctx, rec.UserID, rec.ID, msg.Kind, since)
		if err != nil {
			j.logger.Warn("reminder lookup failed", "record_id", rec.ID, "error", err)
			continue
		}
		if sent {
			sum.Skipped++
			continue
		}
		if _, err := j.notifier.Enqueue(ctx, msg); err != nil {
			j.logger.Warn("reminder enqueue failed", "record_id", rec.ID, "kind", msg.Kind, "error", err)
			continue
		}

		if msg.Kind == notification.KindOverdue {
			sum.Overdue++
		} else {
			sum.DueSoon++
		}
	}

	j.logger.Info("reminder scan finished",
		"scanned", sum.Scanned, "due_soon", sum.DueSoon, "overdue", sum.Overdue, "skipped", sum.Skipped)
	return sum, nil
}

func (j *Job) message(ctx context.Context, rec loan.Record, now time.Time, settings policy.Settings) notification.Message {
	title := rec.BookID
	if b, err := j.books.GetBook(ctx, rec.BookID); err == nil {
		title = b.Title
	}

	m := notification.Message{
		UserID: rec.UserID,
		Payload: notification.Payload{
			RecordID: rec.ID,
			BookID:   rec.BookID,
			DueDate:  rec.DueDate,
		},
	}

	if now.After(rec.DueDate) {
		accrued := loan.OverdueFine(rec.DueDate, now, settings.OverdueFinePerDay)
		m.Kind = notification.KindOverdue
		m.Payload.AccruedFine = &accrued
		m.Text = fmt.Sprintf("%q is %d day(s) overdue. Fine so far: %s.",
			title, loan.OverdueDays(rec.DueDate, now), accrued.StringFixed(2))
		return m
	}

	m.Kind = notification.KindDueSoon
	m.Text = fmt.Sprintf("%q is due on %s.", title, rec.DueDate.Format(time.DateOnly))
	return m
}

// Schedule registers the job on a cron runner. Overlapping runs are skipped.
// The caller starts and stops the returned runner.
func Schedule(spec string, job *Job, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			job.logger.Error("reminder scan failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return c, nil
}

type silent struct{}

func (silent) Debug(string, ...any) {}
func (silent) Info(string, ...any)  {}
func (silent) Warn(string, ...any)  {}
func (silent) Error(string, ...any) {}
