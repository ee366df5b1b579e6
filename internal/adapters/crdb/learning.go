package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func (r *Repository) ListVideoProgress(ctx context.Context, userID string) (map[string]domain.VideoProgress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, video_id, watched_seconds, watched, updated_at
		FROM video_progress WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "select video progress")
	}
	defer rows.Close()

	out := make(map[string]domain.VideoProgress)
	for rows.Next() {
		var p domain.VideoProgress
		if err := rows.Scan(&p.UserID, &p.VideoID, &p.WatchedSeconds, &p.Watched, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out[p.VideoID] = p
	}
	return out, rows.Err()
}

func (r *Repository) SaveVideoProgress(ctx context.Context, p domain.VideoProgress) error {
	_, err := r.pool.Exec(ctx, `
		UPSERT INTO video_progress (user_id, video_id, watched_seconds, watched, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.UserID, p.VideoID, p.WatchedSeconds, p.Watched, p.UpdatedAt)
	return errors.Wrap(err, "upsert video progress")
}

func (r *Repository) CurrentSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	var s domain.Subscription
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, plan, plan_name, price, billing_cycle, start_date, end_date, status, features
		FROM subscriptions WHERE user_id = $1
		ORDER BY start_date DESC LIMIT 1
	`, userID).Scan(&s.ID, &s.UserID, &s.Plan, &s.PlanName, &s.Price, &s.BillingCycle, &s.StartDate, &s.EndDate, &s.Status, &s.Features)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNotFound, "subscription of %s", userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select subscription")
	}
	return &s, nil
}

func (r *Repository) SaveSubscription(ctx context.Context, s domain.Subscription) error {
	_, err := r.pool.Exec(ctx, `
		UPSERT INTO subscriptions (id, user_id, plan, plan_name, price, billing_cycle, start_date, end_date, status, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, s.ID, s.UserID, s.Plan, s.PlanName, s.Price, s.BillingCycle, s.StartDate, s.EndDate, s.Status, s.Features)
	return errors.Wrap(err, "upsert subscription")
}
