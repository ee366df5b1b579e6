package crdb

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

var enrollmentColumns = []string{
	"id", "user_id", "user_name", "user_email", "user_phone", "bootcamp_slug", "session_id",
	"enrolled_at", "status", "payment_status", "amount", "external_id", "progress",
	"learning_status", "certificate_requested", "certificate_issued",
}

func scanEnrollment(row pgx.Row) (*domain.Enrollment, error) {
	var e domain.Enrollment
	err := row.Scan(&e.ID, &e.UserID, &e.UserName, &e.UserEmail, &e.UserPhone, &e.OfferingSlug, &e.SessionID,
		&e.EnrolledAt, &e.Status, &e.PaymentStatus, &e.Amount, &e.ExternalID, &e.Progress,
		&e.LearningStatus, &e.CertificateRequested, &e.CertificateIssued)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// enrollmentQuery translates a filter into a SELECT. The free-text query
// matches name or e-mail case-insensitively.
func (r *Repository) enrollmentQuery(f domain.EnrollmentFilter) squirrel.SelectBuilder {
	q := r.sb.Select(enrollmentColumns...).From("enrollments").OrderBy("enrolled_at ASC", "id ASC")
	if text := strings.TrimSpace(f.Query); text != "" {
		like := "%" + text + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"user_name": like},
			squirrel.ILike{"user_email": like},
		})
	}
	eq := squirrel.Eq{}
	if f.Status != "" {
		eq["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		eq["payment_status"] = f.PaymentStatus
	}
	if f.UserID != "" {
		eq["user_id"] = f.UserID
	}
	if f.OfferingSlug != "" {
		eq["bootcamp_slug"] = f.OfferingSlug
	}
	if f.SessionID != "" {
		eq["session_id"] = f.SessionID
	}
	if len(eq) > 0 {
		q = q.Where(eq)
	}
	return q
}

func (r *Repository) ListEnrollments(ctx context.Context, f domain.EnrollmentFilter) ([]domain.Enrollment, error) {
	sql, args, err := r.enrollmentQuery(f).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build enrollment query")
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select enrollments")
	}
	defer rows.Close()

	out := []domain.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *Repository) GetEnrollment(ctx context.Context, id string) (*domain.Enrollment, error) {
	return r.getEnrollment(ctx, r.pool, id)
}

func (r *Repository) getEnrollment(ctx context.Context, q querier, id string) (*domain.Enrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns...).From("enrollments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build enrollment query")
	}
	e, err := scanEnrollment(q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNotFound, "enrollment %s", id)
	}
	return e, errors.Wrap(err, "select enrollment")
}

func (r *Repository) SaveEnrollment(ctx context.Context, e domain.Enrollment) error {
	return r.saveEnrollment(ctx, r.pool, e)
}

func (r *Repository) saveEnrollment(ctx context.Context, q querier, e domain.Enrollment) error {
	sql, args, err := r.sb.Insert("enrollments").Columns(enrollmentColumns...).
		Values(e.ID, e.UserID, e.UserName, e.UserEmail, e.UserPhone, e.OfferingSlug, e.SessionID,
			e.EnrolledAt, e.Status, e.PaymentStatus, e.Amount, e.ExternalID, e.Progress,
			e.LearningStatus, e.CertificateRequested, e.CertificateIssued).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			payment_status = excluded.payment_status,
			user_id = excluded.user_id,
			progress = excluded.progress,
			learning_status = excluded.learning_status,
			certificate_requested = excluded.certificate_requested,
			certificate_issued = excluded.certificate_issued`).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build enrollment upsert")
	}
	_, err = q.Exec(ctx, sql, args...)
	return errors.Wrap(err, "upsert enrollment")
}
