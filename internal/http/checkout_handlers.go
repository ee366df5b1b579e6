package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/bootcamp-booking/internal/checkout"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

const signatureHeader = "X-Djamo-Signature"

func (h *Handlers) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var in checkout.CreateChargeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.checkout.CreateCharge(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckCharge reads the charge once, or keeps polling with wait=true.
func (h *Handlers) CheckCharge(w http.ResponseWriter, r *http.Request) {
	chargeID := r.URL.Query().Get("chargeId")
	var (
		view *checkout.ChargeView
		err  error
	)
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		view, err = h.checkout.PollCharge(r.Context(), chargeID, h.poll)
	} else {
		view, err = h.checkout.CheckCharge(r.Context(), chargeID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) DjamoWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, domain.Invalid("unreadable body"))
		return
	}
	if err := h.checkout.HandleWebhook(r.Context(), body, r.Header.Get(signatureHeader)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handlers) Confirmation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.checkout.Confirmation(r.Context(), q.Get("bootcamp"), q.Get("session"), q.Get("ref"), q.Get("email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.GetOrder(r.Context(), chi.URLParam(r, "ref"), r.URL.Query().Get("email"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handlers) MyOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	orders, err := h.checkout.ConfirmedOrders(r.Context(), claims.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handlers) RefundCharge(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount *int64 `json:"amount"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	view, err := h.checkout.RefundCharge(r.Context(), chi.URLParam(r, "chargeId"), in.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
