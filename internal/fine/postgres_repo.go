package fine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
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

const fineColumns = `id, record_id, user_id, book_id, reason, amount, status, due_date, paid_date, created_at`

func scanFine(row pgx.Row) (Fine, error) {
	var f Fine
	err := row.Scan(&f.ID, &f.RecordID, &f.UserID, &f.BookID, &f.Reason, &f.Amount, &f.Status, &f.DueDate, &f.PaidDate, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Fine{}, ErrNotFound
		}
		return Fine{}, err
	}
	return f, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, f *Fine) error {
	const query = `
	INSERT INTO fines (id, record_id, user_id, book_id, reason, amount, status, due_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, f.ID, f.RecordID, f.UserID, f.BookID, f.Reason, f.Amount, f.Status, f.DueDate, f.CreatedAt)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Fine, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanFine(r.db.QueryRow(timeoutCtx, `SELECT `+fineColumns+` FROM fines WHERE id = $1`, id))
}

func (r *PostgresRepo) MarkPaid(ctx context.Context, id string, at time.Time) (Fine, error) {
	query := `UPDATE fines SET status = 'PAID', paid_date = $2 WHERE id = $1 AND status = 'UNPAID' RETURNING ` + fineColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	f, err := scanFine(r.db.QueryRow(timeoutCtx, query, id, at))
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.Get(ctx, id); getErr == nil {
			return Fine{}, ErrAlreadyPaid
		}
	}
	return f, err
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE user_id = $1 ORDER BY created_at DESC, id`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fines := make([]Fine, 0)
	for rows.Next() {
		f, err := scanFine(rows)
		if err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}
