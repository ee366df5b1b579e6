package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func (r *Repository) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	var s domain.SiteSettings
	err := r.pool.QueryRow(ctx, `
		SELECT site_name, contact_email, phone, address, payment_link
		FROM site_settings WHERE id = 'site'
	`).Scan(&s.SiteName, &s.ContactEmail, &s.Phone, &s.Address, &s.PaymentLink)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(domain.ErrNotFound, "site settings")
	}
	if err != nil {
		return nil, errors.Wrap(err, "select site settings")
	}
	return &s, nil
}

func (r *Repository) SaveSiteSettings(ctx context.Context, s domain.SiteSettings) error {
	_, err := r.pool.Exec(ctx, `
		UPSERT INTO site_settings (id, site_name, contact_email, phone, address, payment_link, updated_at)
		VALUES ('site', $1, $2, $3, $4, $5, now())
	`, s.SiteName, s.ContactEmail, s.Phone, s.Address, s.PaymentLink)
	return errors.Wrap(err, "upsert site settings")
}
