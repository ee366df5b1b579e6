package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

const defaultStaleLimit = 100

const orderColumns = `external_id, mode, charge_id, payment_url, amount, charge_status, status,
	bootcamp_slug, session_id, email, enrollment_id, data, created_at, updated_at, confirmed_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o    domain.Order
		data string
	)
	err := row.Scan(&o.ExternalID, &o.Mode, &o.ChargeID, &o.PaymentURL, &o.Amount, &o.ChargeStatus, &o.Status,
		&o.OfferingSlug, &o.SessionID, &o.Email, &o.EnrollmentID, &data, &o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt)
	if err != nil {
		return nil, err
	}
	o.Data = []byte(data)
	return &o, nil
}

func (r *Repository) CreateOrder(ctx context.Context, o domain.Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, o.ExternalID, o.Mode, o.ChargeID, o.PaymentURL, o.Amount, o.ChargeStatus, o.Status,
		o.OfferingSlug, o.SessionID, o.Email, o.EnrollmentID, string(o.Data), o.CreatedAt, o.UpdatedAt, o.ConfirmedAt)
	if pgCode(err) == UniqueViolationCode {
		return errors.Wrapf(domain.ErrConflict, "order %s exists", o.ExternalID)
	}
	return errors.Wrap(err, "insert order")
}

func (r *Repository) getOrder(ctx context.Context, q querier, column, value string, lock bool) (*domain.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1`
	if lock {
		sql += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNotFound, "order %s", value)
	}
	return o, errors.Wrap(err, "select order")
}

func (r *Repository) GetOrder(ctx context.Context, externalID string) (*domain.Order, error) {
	return r.getOrder(ctx, r.pool, "external_id", externalID, false)
}

func (r *Repository) GetOrderByChargeID(ctx context.Context, chargeID string) (*domain.Order, error) {
	if chargeID == "" {
		return nil, errors.Wrap(domain.ErrNotFound, "empty charge id")
	}
	return r.getOrder(ctx, r.pool, "charge_id", chargeID, false)
}

func (r *Repository) SaveOrder(ctx context.Context, o domain.Order) error {
	return r.saveOrder(ctx, r.pool, o)
}

func (r *Repository) saveOrder(ctx context.Context, q querier, o domain.Order) error {
	tag, err := q.Exec(ctx, `
		UPDATE orders SET charge_id = $2, payment_url = $3, charge_status = $4, status = $5,
			enrollment_id = $6, data = $7, updated_at = $8, confirmed_at = $9
		WHERE external_id = $1
	`, o.ExternalID, o.ChargeID, o.PaymentURL, o.ChargeStatus, o.Status,
		o.EnrollmentID, string(o.Data), o.UpdatedAt, o.ConfirmedAt)
	if err != nil {
		return errors.Wrap(err, "update order")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(domain.ErrNotFound, "order %s", o.ExternalID)
	}
	return nil
}

func (r *Repository) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repository) ListConfirmedOrders(ctx context.Context, email string) ([]domain.Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE email = $1 AND confirmed_at IS NOT NULL
		ORDER BY confirmed_at DESC
	`, domain.NormalizeEmail(email))
}

func (r *Repository) ListStaleOrders(ctx context.Context, before time.Time, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = defaultStaleLimit
	}
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE mode = 'api' AND status = 'pending' AND charge_id != '' AND updated_at < $1
		ORDER BY updated_at ASC LIMIT $2
	`, before, limit)
}
