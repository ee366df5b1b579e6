package dashboard

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

// Site returns the stored site settings, or the defaults before the first
// save.
func (a *Admin) Site(ctx context.Context) (domain.SiteSettings, error) {
	s, err := a.store.GetSiteSettings(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultSiteSettings(), nil
	}
	if err != nil {
		return domain.SiteSettings{}, errors.Wrap(err, "load site settings")
	}
	return *s, nil
}

func (a *Admin) UpdateSite(ctx context.Context, in domain.SiteSettings) (domain.SiteSettings, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.SiteSettings{}, err
	}
	if err := a.store.SaveSiteSettings(ctx, in); err != nil {
		return domain.SiteSettings{}, errors.Wrap(err, "save site settings")
	}
	return in, nil
}
