// Package idempotency replays the stored answer of a POST that is retried
// with the same Idempotency-Key header.
package idempotency

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

const (
	Header         = "Idempotency-Key"
	ReplayedHeader = "Idempotent-Replayed"
	minKeyLength   = 16
	maxKeyLength   = 128
)

type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store keeps answers by key. Begin reserves a key while its first request
// is in flight and reports false when someone else holds it.
type Store interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, resp Response, ttl time.Duration) error
	Begin(ctx context.Context, key string, ttl time.Duration) (bool, error)
	End(ctx context.Context, key string) error
}

type Idempotency struct {
	store  Store
	ttl    time.Duration
	logger observability.Logger
}

func NewIdempotency(store Store, ttl time.Duration, logger observability.Logger) *Idempotency {
	return &Idempotency{store: store, ttl: ttl, logger: logger}
}

type subjectKey struct{}

// WithSubject records the authenticated caller so that keys of different
// callers never share an answer.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

func subjectFrom(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware is a no-op for requests without the header. Keys are scoped to
// the request path and, for authenticated requests, to the caller.
func (i *Idempotency) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(Header)
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) < minKeyLength || len(key) > maxKeyLength {
			http.Error(w, "invalid Idempotency-Key", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		log := observability.LoggerFrom(ctx, i.logger).WithField("idempotency_key", key)
		scoped := r.URL.Path + ":" + key
		if sub := subjectFrom(ctx); sub != "" {
			scoped = r.URL.Path + ":" + sub + ":" + key
		}

		existing, err := i.store.Get(ctx, scoped)
		if err != nil {
			log.WithError(err).Warn("idempotency lookup failed")
		}
		if existing != nil {
			if existing.ContentType != "" {
				w.Header().Set("Content-Type", existing.ContentType)
			}
			w.Header().Set(ReplayedHeader, "true")
			w.WriteHeader(existing.Status)
			_, _ = w.Write(existing.Body)
			return
		}

		ok, err := i.store.Begin(ctx, scoped, i.ttl)
		if err != nil {
			log.WithError(err).Warn("idempotency reservation failed")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			http.Error(w, "a request with this Idempotency-Key is in progress", http.StatusConflict)
			return
		}
		defer func() {
			if err := i.store.End(context.WithoutCancel(ctx), scoped); err != nil {
				log.WithError(err).Warn("idempotency release failed")
			}
		}()

		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		// Server errors are not cached so the client can retry.
		if rec.status == 0 || rec.status >= http.StatusInternalServerError {
			return
		}
		resp := Response{Status: rec.status, ContentType: rec.Header().Get("Content-Type"), Body: rec.buf.Bytes()}
		if err := i.store.Set(context.WithoutCancel(ctx), scoped, resp, i.ttl); err != nil {
			log.WithError(err).Warn("idempotency store failed")
		}
	})
}
