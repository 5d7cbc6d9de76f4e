package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
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

const selectUser = `
	SELECT id, username, email, password_hash, role, status,
	       current_borrowed, total_borrowed, total_fines, created_at, updated_at
	FROM users`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.Status,
		&u.CurrentBorrowed, &u.TotalBorrowed, &u.TotalFines, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (id, username, email, password_hash, role, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING current_borrowed, total_borrowed, total_fines, created_at, updated_at
	`
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, u.ID, u.Username, u.Email, u.Password, u.Role, u.Status).
		Scan(&u.CurrentBorrowed, &u.TotalBorrowed, &u.TotalFines, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanUser(r.db.QueryRow(timeoutCtx, selectUser+` WHERE id = $1`, id))
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanUser(r.db.QueryRow(timeoutCtx, selectUser+` WHERE username = $1`, username))
}

func (r *PostgresRepo) exec(ctx context.Context, query string, args ...any) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) AdjustBorrowed(ctx context.Context, id string, current, total int) error {
	const query = `
	UPDATE users
	SET current_borrowed = current_borrowed + $2,
	    total_borrowed = total_borrowed + $3,
	    updated_at = now()
	WHERE id = $1
	`
	return r.exec(ctx, query, id, current, total)
}

func (r *PostgresRepo) AddFines(ctx context.Context, id string, amount decimal.Decimal) error {
	const query = `UPDATE users SET total_fines = total_fines + $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id, amount)
}

func (r *PostgresRepo) SetStatus(ctx context.Context, id string, status Status) error {
	const query = `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id, status)
}
