// Package crdb is the CockroachDB implementation of domain.Store.
package crdb

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

const (
	SerializationFailureCode = "40001"
	UniqueViolationCode      = "23505"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
}

var _ domain.Store = (*Repository)(nil)

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// WithTx runs fn in a serializable transaction. A retryable conflict is
// reported as domain.ErrSerializationFailure.
func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	start := time.Now()
	defer func() { observability.DBTxDuration.Observe(time.Since(start).Seconds()) }()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		if pgCode(err) == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if pgCode(err) == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return errors.Wrap(err, "commit")
	}
	return nil
}

func (r *Repository) Settle(ctx context.Context, fn func(tx domain.SettlementTx) error) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&settlementTx{r: r, tx: tx})
	})
}

type settlementTx struct {
	r  *Repository
	tx pgx.Tx
}

func (s *settlementTx) LockOrder(ctx context.Context, externalID string) (*domain.Order, error) {
	return s.r.getOrder(ctx, s.tx, "external_id", externalID, true)
}

func (s *settlementTx) SaveOrder(ctx context.Context, o domain.Order) error {
	return s.r.saveOrder(ctx, s.tx, o)
}

func (s *settlementTx) GetEnrollment(ctx context.Context, id string) (*domain.Enrollment, error) {
	return s.r.getEnrollment(ctx, s.tx, id)
}

func (s *settlementTx) SaveEnrollment(ctx context.Context, e domain.Enrollment) error {
	return s.r.saveEnrollment(ctx, s.tx, e)
}

func (s *settlementTx) AddOutbox(ctx context.Context, ev domain.OutboxEvent) error {
	return s.r.InsertOutbox(ctx, s.tx, ev)
}
