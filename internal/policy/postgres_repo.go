package policy

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Get(ctx context.Context) (Settings, error) {
	const query = `
	SELECT max_borrow_books, max_borrow_days, renewal_days, overdue_fine_per_day,
	       lost_book_fine, damaged_book_fine, auto_check_overdue, reminder_days_before, updated_at
	FROM settings WHERE id = 1
	`
	var s Settings
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query).Scan(
		&s.MaxBorrowBooks, &s.MaxBorrowDays, &s.RenewalDays, &s.OverdueFinePerDay,
		&s.LostBookFine, &s.DamagedBookFine, &s.AutoCheckOverdue, &s.ReminderDaysBefore, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	return s, nil
}

func (r *PostgresRepo) CreateIfAbsent(ctx context.Context, s Settings) error {
	const query = `
	INSERT INTO settings (id, max_borrow_books, max_borrow_days, renewal_days, overdue_fine_per_day,
	                      lost_book_fine, damaged_book_fine, auto_check_overdue, reminder_days_before)
	VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query,
		s.MaxBorrowBooks, s.MaxBorrowDays, s.RenewalDays, s.OverdueFinePerDay,
		s.LostBookFine, s.DamagedBookFine, s.AutoCheckOverdue, s.ReminderDaysBefore,
	)
	return err
}

func (r *PostgresRepo) Update(ctx context.Context, s Settings) error {
	const query = `
	UPDATE settings
	SET max_borrow_books = $1, max_borrow_days = $2, renewal_days = $3, overdue_fine_per_day = $4,
	    lost_book_fine = $5, damaged_book_fine = $6, auto_check_overdue = $7, reminder_days_before = $8,
	    updated_at = now()
	WHERE id = 1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query,
		s.MaxBorrowBooks, s.MaxBorrowDays, s.RenewalDays, s.OverdueFinePerDay,
		s.LostBookFine, s.DamagedBookFine, s.AutoCheckOverdue, s.ReminderDaysBefore,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
