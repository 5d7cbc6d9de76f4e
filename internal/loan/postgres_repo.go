package loan

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	dialect       = "postgres"
	tableRecords  = "borrow_records"
	colUserID     = "user_id"
	colStatus     = "status"
	colSeq        = "seq"
	colDueDate    = "due_date"
	recordColumns = `id, seq, user_id, book_id, copy_id, borrow_date, due_date, return_date, status, fine`
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

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Seq, &rec.UserID, &rec.BookID, &rec.CopyID,
		&rec.BorrowDate, &rec.DueDate, &rec.ReturnDate, &rec.Status, &rec.Fine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, rec *Record) error {
	const query = `
	INSERT INTO borrow_records (id, user_id, book_id, copy_id, borrow_date, due_date, status, fine)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING seq
	`
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query,
		rec.ID, rec.UserID, rec.BookID, rec.CopyID, rec.BorrowDate, rec.DueDate, rec.Status, rec.Fine,
	).Scan(&rec.Seq)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Record, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanRecord(r.db.QueryRow(timeoutCtx, `SELECT `+recordColumns+` FROM borrow_records WHERE id = $1`, id))
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM borrow_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func where(f Filter) []goqu.Expression {
	exprs := make([]goqu.Expression, 0, 4)
	if f.UserID != "" {
		exprs = append(exprs, goqu.C(colUserID).Eq(f.UserID))
	}
	if f.Status != "" {
		exprs = append(exprs, goqu.C(colStatus).Eq(string(f.Status)))
	}
	if f.MaxSeq > 0 {
		exprs = append(exprs, goqu.C(colSeq).Lte(f.MaxSeq))
	}
	if !f.DueBefore.IsZero() {
		exprs = append(exprs, goqu.C(colDueDate).Lt(f.DueBefore))
	}
	return exprs
}

func (r *PostgresRepo) Count(ctx context.Context, f Filter) (int, error) {
	query, args, err := goqu.Dialect(dialect).
		From(tableRecords).
		Select(goqu.COUNT(goqu.Star())).
		Where(where(f)...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, err
	}

	var n int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err = r.db.QueryRow(timeoutCtx, query, args...).Scan(&n)
	return n, err
}

func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]Record, error) {
	ds := goqu.Dialect(dialect).
		From(tableRecords).
		Select("id", "seq", "user_id", "book_id", "copy_id", "borrow_date", "due_date", "return_date", "status", "fine").
		Where(where(f)...).
		Order(goqu.I(colSeq).Desc())
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}
	query, args, err := ds.Prepared(true).ToSQL()
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

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// existsOr distinguishes a missing record from one whose status guard failed.
func (r *PostgresRepo) existsOr(ctx context.Context, id string, guardErr error) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return guardErr
}

func (r *PostgresRepo) Close(ctx context.Context, id string, status Status, at time.Time, fine decimal.Decimal) (Record, error) {
	query := `
	UPDATE borrow_records
	SET status = $2, return_date = $3, fine = $4
	WHERE id = $1 AND status = 'BORROWING'
	RETURNING ` + recordColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rec, err := scanRecord(r.db.QueryRow(timeoutCtx, query, id, status, at, fine))
	if errors.Is(err, ErrNotFound) {
		return Record{}, r.existsOr(ctx, id, ErrNotOpen)
	}
	return rec, err
}

func (r *PostgresRepo) ExtendDue(ctx context.Context, id string, by time.Duration) (Record, error) {
	query := `
	UPDATE borrow_records
	SET due_date = due_date + make_interval(secs => $2)
	WHERE id = $1 AND status = 'BORROWING'
	RETURNING ` + recordColumns
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rec, err := scanRecord(r.db.QueryRow(timeoutCtx, query, id, by.Seconds()))
	if errors.Is(err, ErrNotFound) {
		return Record{}, r.existsOr(ctx, id, ErrNotRenewable)
	}
	return rec, err
}
