package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

// InsertOutbox records an event in the caller's transaction. A repeated
// dedupe key is ignored.
func (r *Repository) InsertOutbox(ctx context.Context, tx pgx.Tx, ev domain.OutboxEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload_json, status, dedupe_key, created_at)
		VALUES ($1, $2, $3, $4, $5, 'NEW', $6, $7)
		ON CONFLICT (dedupe_key) DO NOTHING
	`, ev.ID, ev.AggregateType, ev.AggregateID, ev.EventType, ev.Payload, ev.DedupeKey, ev.CreatedAt)
	return errors.Wrap(err, "insert outbox")
}

func (r *Repository) PendingOutbox(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload_json, created_at, published_at, dedupe_key, attempts
		FROM outbox WHERE status = 'NEW' ORDER BY created_at ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select outbox")
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		var ev domain.OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateType, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.PublishedAt, &ev.DedupeKey, &ev.Attempts); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox SET status = 'PUBLISHED', published_at = $2 WHERE id = $1
	`, id, at)
	return errors.Wrap(err, "mark outbox published")
}

// RecordOutboxFailure bumps the attempt count. A dead event moves to FAILED
// and is no longer selected by PendingOutbox.
func (r *Repository) RecordOutboxFailure(ctx context.Context, id uuid.UUID, dead bool) error {
	status := "NEW"
	if dead {
		status = "FAILED"
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox SET attempts = attempts + 1, status = $2 WHERE id = $1 AND status = 'NEW'
	`, id, status)
	return errors.Wrap(err, "record outbox failure")
}
