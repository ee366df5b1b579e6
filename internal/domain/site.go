package domain

import "strings"

// SiteSettings are the public contact details and the fallback payment link
// managed from the admin settings page.
type SiteSettings struct {
	SiteName     string `json:"siteName" validate:"required"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PaymentLink  string `json:"paymentLink" validate:"required,url"`
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:     "Big Five Academy",
		ContactEmail: "contact@bigfive.ci",
		Phone:        "+225 00 00 00 00 00",
		Address:      "Abidjan, Cocody - Riviera",
		PaymentLink:  "https://pay.djamo.com/2bqug",
	}
}

func (s SiteSettings) Normalize() SiteSettings {
	s.SiteName = strings.TrimSpace(s.SiteName)
	s.ContactEmail = NormalizeEmail(s.ContactEmail)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
	s.PaymentLink = strings.TrimSpace(s.PaymentLink)
	return s
}

func (s SiteSettings) Validate() error {
	return ValidateStruct(s, "invalid site settings")
}
