package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/bootcamp-booking/internal/accounts"
	"github.com/robertarktes/bootcamp-booking/internal/checkout"
	"github.com/robertarktes/bootcamp-booking/internal/dashboard"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

// Check reports whether one dependency is ready.
type Check func(ctx context.Context) error

type Deps struct {
	Catalog   domain.Catalog
	Checkout  *checkout.Service
	Accounts  *accounts.Service
	Tokens    *accounts.Tokens
	Admin     *dashboard.Admin
	Learner   *dashboard.Learner
	Poll      checkout.PollPolicy
	Readiness map[string]Check
	Logger    observability.Logger
}

type Handlers struct {
	catalog   domain.Catalog
	checkout  *checkout.Service
	accounts  *accounts.Service
	tokens    *accounts.Tokens
	admin     *dashboard.Admin
	learner   *dashboard.Learner
	poll      checkout.PollPolicy
	readiness map[string]Check
	logger    observability.Logger
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		catalog:   d.Catalog,
		checkout:  d.Checkout,
		accounts:  d.Accounts,
		tokens:    d.Tokens,
		admin:     d.Admin,
		learner:   d.Learner,
		poll:      d.Poll,
		readiness: d.Readiness,
		logger:    d.Logger,
	}
}

// sessionView adds the selectable flag the session picker relies on.
type sessionView struct {
	domain.Session
	Selectable bool `json:"selectable"`
}

func sessionViews(sessions []domain.Session) []sessionView {
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionView{Session: s, Selectable: s.Selectable()})
	}
	return out
}

func (h *Handlers) ListBootcamps(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.catalog.ListOfferings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offerings)
}

func (h *Handlers) GetBootcamp(w http.ResponseWriter, r *http.Request) {
	o, err := h.catalog.GetOfferingBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handlers) ListBootcampSessions(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if _, err := h.catalog.GetOfferingBySlug(r.Context(), slug); err != nil {
		h.writeError(w, r, err)
		return
	}
	sessions, err := h.catalog.GetSessionsForOffering(r.Context(), slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionViews(sessions))
}

func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.catalog.GetSessionByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{Session: *s, Selectable: s.Selectable()})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	failed := map[string]string{}
	for name, check := range h.readiness {
		if err := check(r.Context()); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
