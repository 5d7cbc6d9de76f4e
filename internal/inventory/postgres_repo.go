package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tableCopies = "copies"
	dialect     = "postgres"
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

func (r *PostgresRepo) CreateBook(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (id, isbn, title, author, publisher, category, price)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING total_copies, available_copies, created_at, updated_at
	`
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query, b.ID, b.ISBN, b.Title, b.Author, b.Publisher, b.Category, b.Price).
		Scan(&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PostgresRepo) GetBook(ctx context.Context, id string) (Book, error) {
	const query = `
	SELECT id, isbn, title, author, publisher, category, price,
	       total_copies, available_copies, created_at, updated_at
	FROM books WHERE id = $1
	`
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.Category, &b.Price,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) AdjustCounters(ctx context.Context, bookID string, total, available int) error {
	// Right-hand sides see the pre-update row.
	const query = `
	UPDATE books
	SET total_copies = GREATEST(total_copies + $2, 0),
	    available_copies = GREATEST(LEAST(available_copies + $3, total_copies + $2), 0),
	    updated_at = now()
	WHERE id = $1
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, bookID, total, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const copyColumns = `id, book_id, status, location, notes, created_at, updated_at`

func scanCopy(row pgx.Row) (Copy, error) {
	var c Copy
	err := row.Scan(&c.ID, &c.BookID, &c.Status, &c.Location, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Copy{}, ErrCopyNotFound
		}
		return Copy{}, err
	}
	return c, nil
}

func (r *PostgresRepo) InsertCopy(ctx context.Context, c *Copy) error {
	const query = `
	INSERT INTO copies (id, book_id, status, location, notes)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query, c.ID, c.BookID, c.Status, c.Location, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresRepo) GetCopy(ctx context.Context, id string) (Copy, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanCopy(r.db.QueryRow(timeoutCtx, `SELECT `+copyColumns+` FROM copies WHERE id = $1`, id))
}

func (r *PostgresRepo) ClaimAvailable(ctx context.Context, bookID string) (Copy, error) {
	const query = `
	UPDATE copies SET status = 'BORROWED', updated_at = now()
	WHERE id = (
		SELECT id FROM copies
		WHERE book_id = $1 AND status = 'AVAILABLE'
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING ` + copyColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	c, err := scanCopy(r.db.QueryRow(timeoutCtx, query, bookID))
	if errors.Is(err, ErrCopyNotFound) {
		return Copy{}, ErrNoCopies
	}
	return c, err
}

func (r *PostgresRepo) SetStatus(ctx context.Context, copyID string, status CopyStatus) (Copy, error) {
	query := `UPDATE copies SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + copyColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanCopy(r.db.QueryRow(timeoutCtx, query, copyID, status))
}

func (r *PostgresRepo) DeleteCopy(ctx context.Context, copyID string, allowBorrowed bool) (Copy, error) {
	query := `DELETE FROM copies WHERE id = $1 AND ($2::boolean OR status <> 'BORROWED') RETURNING ` + copyColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	c, err := scanCopy(r.db.QueryRow(timeoutCtx, query, copyID, allowBorrowed))
	if !errors.Is(err, ErrCopyNotFound) {
		return c, err
	}
	// Nothing deleted: either the copy is missing or it is out on loan.
	if _, getErr := r.GetCopy(ctx, copyID); getErr == nil {
		return Copy{}, ErrCopyInUse
	}
	return Copy{}, ErrCopyNotFound
}

func (r *PostgresRepo) ListCopies(ctx context.Context, bookID string) ([]Copy, error) {
	query, args, err := goqu.Dialect(dialect).
		From(tableCopies).
		Select("id", "book_id", "status", "location", "notes", "created_at", "updated_at").
		Where(goqu.C("book_id").Eq(bookID)).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	copies := make([]Copy, 0)
	for rows.Next() {
		c, err := scanCopy(rows)
		if err != nil {
			return nil, err
		}
		copies = append(copies, c)
	}
	return copies, rows.Err()
}
