package reminder_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendingapi/internal/notification"
	"lendingapi/internal/policy"
	"lendingapi/internal/reminder"
	"lendingapi/internal/testutil"
)

var ctx = context.Background()

func newJob(env *testutil.Env) *reminder.Job {
	return reminder.NewJob(env.LoanRepo, env.Policies, env.Inventory, env.Notifications,
		reminder.WithClock(env.Clock.Now))
}

func TestRun(t *testing.T) {
	env := testutil.NewEnv()
	job := newJob(env)
	caller := env.MustCaller()
	book := env.MustBook(0, 2)

	rec, err := env.Loans.IssueLoan(ctx, caller, book.ID)
	require.NoError(t, err)

	sum, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.Summary{}, sum)

	// Due in 47 hours, inside the two-day window.
	env.Clock.Advance(12*24*time.Hour + time.Hour)
	sum, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.Summary{Scanned: 1, DueSoon: 1}, sum)

	sum, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.Summary{Scanned: 1, Skipped: 1}, sum)

	// One hour past due.
	env.Clock.Advance(2 * 24 * time.Hour)
	sum, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.Summary{Scanned: 1, Overdue: 1}, sum)

	all := env.NotificationRepo.All()
	require.Len(t, all, 2)
	assert.Equal(t, notification.KindDueSoon, all[0].Kind)
	assert.Nil(t, all[0].Payload.AccruedFine)
	assert.Contains(t, all[0].Message, "is due on 2026-01-19.")

	overdue := all[1]
	assert.Equal(t, notification.KindOverdue, overdue.Kind)
	assert.Equal(t, rec.ID, overdue.Payload.RecordID)
	require.NotNil(t, overdue.Payload.AccruedFine)
	assert.True(t, decimal.NewFromInt(5000).Equal(*overdue.Payload.AccruedFine))
	assert.Contains(t, overdue.Message, book.Title)

	// The scan never touches the loan itself.
	got, err := env.LoanRepo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.DueDate, got.DueDate)
	assert.True(t, got.Fine.IsZero())

	// A new day allows a fresh overdue reminder.
	env.Clock.Advance(24 * time.Hour)
	sum, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Overdue)
}

func TestRun_SkipsClosedLoans(t *testing.T) {
	env := testutil.NewEnv()
	job := newJob(env)
	caller := env.MustCaller()
	book := env.MustBook(0, 1)

	rec, err := env.Loans.IssueLoan(ctx, caller, book.ID)
	require.NoError(t, err)
	_, err = env.Loans.ReturnLoan(ctx, caller, rec.ID)
	require.NoError(t, err)

	env.Clock.Advance(30 * 24 * time.Hour)
	sum, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, sum.Scanned)
	assert.Empty(t, env.NotificationRepo.All())
}

func TestRun_Disabled(t *testing.T) {
	env := testutil.NewEnv()
	s := policy.Defaults()
	s.AutoCheckOverdue = false
	env.SetPolicy(s)

	caller := env.MustCaller()
	book := env.MustBook(0, 1)
	_, err := env.Loans.IssueLoan(ctx, caller, book.ID)
	require.NoError(t, err)

	env.Clock.Advance(30 * 24 * time.Hour)
	sum, err := newJob(env).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, reminder.Summary{}, sum)
	assert.Empty(t, env.NotificationRepo.All())
}

func TestSchedule(t *testing.T) {
	env := testutil.NewEnv()

	c, err := reminder.Schedule("0 8 * * *", newJob(env), time.Minute)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = reminder.Schedule("not a schedule", newJob(env), time.Minute)
	assert.Error(t, err)
}
