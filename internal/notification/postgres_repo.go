package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
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

func (r *PostgresRepo) Insert(ctx context.Context, n *Notification) error {
	const query = `
	INSERT INTO notifications (id, user_id, kind, message, payload, created_at)
	VALUES ($1, $2, $3, $4, $5::jsonb, $6)
	`
	payload, err := n.Payload.Marshal()
	if err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err = r.db.Exec(timeoutCtx, query, n.ID, n.UserID, n.Kind, n.Message, string(payload), n.CreatedAt)
	return err
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	const query = `
	SELECT id, user_id, kind, message, payload, read, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC, id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Notification, 0)
	for rows.Next() {
		var n Notification
		var payload []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Message, &payload, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if n.Payload, err = UnmarshalPayload(payload); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) MarkRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) SentSince(ctx context.Context, userID, recordID string, kind Kind, since time.Time) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND kind = $2 AND payload->>'record_id' = $3 AND created_at >= $4
	)
	`
	var exists bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, userID, kind, recordID, since).Scan(&exists)
	return exists, err
}
