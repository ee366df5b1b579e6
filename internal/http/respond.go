package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/checkout"
	"github.com/robertarktes/bootcamp-booking/internal/djamo"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error       string            `json:"error"`
	Fields      map[string]string `json:"fields,omitempty"`
	Details     string            `json:"details,omitempty"`
	FallbackURL string            `json:"fallbackUrl,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("request body is required")
		}
		return domain.Invalid("invalid JSON body: " + err.Error())
	}
	return nil
}

// errorResponse maps an error to its status and JSON body.
func errorResponse(err error) (int, errorBody) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{Error: verr.Message, Fields: verr.Fields}
	}
	if gw, ok := checkout.AsGatewayError(err); ok {
		return http.StatusInternalServerError, errorBody{
			Error:       "payment creation failed",
			Details:     gw.Err.Error(),
			FallbackURL: gw.FallbackURL,
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrSessionFull):
		return http.StatusConflict, errorBody{Error: "this session is full"}
	case errors.Is(err, domain.ErrSerializationFailure):
		return http.StatusConflict, errorBody{Error: "conflict, try again"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "forbidden"}
	case errors.Is(err, domain.ErrGatewayUnconfigured):
		return http.StatusServiceUnavailable, errorBody{Error: "payment gateway not configured", Details: err.Error()}
	}

	var apiErr *djamo.APIError
	if errors.As(err, &apiErr) {
		return http.StatusInternalServerError, errorBody{Error: "payment gateway error", Details: apiErr.Error()}
	}
	return http.StatusInternalServerError, errorBody{Error: "internal server error"}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	log := observability.LoggerFrom(r.Context(), h.logger).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	writeJSON(w, status, body)
}
