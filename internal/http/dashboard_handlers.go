package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/bootcamp-booking/internal/dashboard"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func (h *Handlers) AdminOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.admin.Overview(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

func (h *Handlers) AdminEnrollments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.admin.Enrollments(r.Context(), domain.EnrollmentFilter{
		Query:         q.Get("q"),
		Status:        domain.EnrollmentStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(q.Get("payment")),
		OfferingSlug:  q.Get("bootcamp"),
		SessionID:     q.Get("session"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) AdminPayments(w http.ResponseWriter, r *http.Request) {
	view, err := h.admin.Payments(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) AdminSessions(w http.ResponseWriter, r *http.Request) {
	view, err := h.admin.Sessions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) AdminBootcamps(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Bootcamps(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func userID(r *http.Request) string {
	claims, _ := claimsFrom(r.Context())
	return claims.Subject
}

func (h *Handlers) LearnerDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.learner.Dashboard(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) LearnerCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.learner.Courses(r.Context(), userID(r), domain.LearningStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *Handlers) LearnerCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.learner.Course(r.Context(), userID(r), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) RecordProgress(w http.ResponseWriter, r *http.Request) {
	var in dashboard.ProgressUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.learner.RecordProgress(r.Context(), userID(r), chi.URLParam(r, "videoId"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) Certificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.learner.Certificates(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

func (h *Handlers) RequestCertificate(w http.ResponseWriter, r *http.Request) {
	cert, err := h.learner.RequestCertificate(r.Context(), userID(r), chi.URLParam(r, "enrollmentId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (h *Handlers) Subscription(w http.ResponseWriter, r *http.Request) {
	view, err := h.learner.Subscription(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) ChangePlan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Plan domain.PlanID `json:"plan"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	sub, err := h.learner.ChangePlan(r.Context(), userID(r), in.Plan)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handlers) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.learner.CancelSubscription(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type adminSettings struct {
	Profile *domain.User        `json:"profile"`
	Site    domain.SiteSettings `json:"site"`
}

func (h *Handlers) AdminSettings(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	u, err := h.accounts.Profile(r.Context(), claims.Subject)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	site, err := h.admin.Site(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminSettings{Profile: u, Site: site})
}

// UpdateAdminSettings saves the admin profile and the site settings. Either
// part may be omitted; nothing is saved when one of them is invalid.
func (h *Handlers) UpdateAdminSettings(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	var in struct {
		Profile *domain.Settings     `json:"profile"`
		Site    *domain.SiteSettings `json:"site"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if in.Site != nil {
		if err := in.Site.Normalize().Validate(); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	ctx := r.Context()
	if in.Profile != nil {
		if _, err := h.accounts.UpdateSettings(ctx, claims.Subject, *in.Profile); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if in.Site != nil {
		if _, err := h.admin.UpdateSite(ctx, *in.Site); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	h.AdminSettings(w, r)
}
