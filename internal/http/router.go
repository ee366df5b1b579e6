package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/idempotency"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/rateLimit"
)

// Limits caps the unauthenticated write endpoints per client address.
type Limits struct {
	Auth     int
	Checkout int
	Period   time.Duration
}

func DefaultLimits() Limits {
	return Limits{Auth: 10, Checkout: 20, Period: time.Minute}
}

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, idemp *idempotency.Idempotency, limits Limits) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(MetricsMiddleware)
	r.Use(TracingMiddleware)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", h.Healthz)
		r.Get("/readyz", h.Readyz)

		r.Get("/bootcamps", h.ListBootcamps)
		r.Get("/bootcamps/{slug}", h.GetBootcamp)
		r.Get("/bootcamps/{slug}/sessions", h.ListBootcampSessions)
		r.Get("/sessions/{id}", h.GetSession)

		r.With(rl.Middleware("create_charge", limits.Checkout, limits.Period), idemp.Middleware).
			Post("/create-charge", h.CreateCharge)
		r.Get("/check-charge", h.CheckCharge)
		r.Post("/webhooks/djamo", h.DjamoWebhook)
		r.Get("/confirmation", h.Confirmation)
		r.Get("/orders/{ref}", h.GetOrder)

		r.With(rl.Middleware("register", limits.Auth, limits.Period)).Post("/register", h.Register)
		r.With(rl.Middleware("login", limits.Auth, limits.Period)).Post("/login", h.Login)

		r.Route("/me", func(r chi.Router) {
			r.Use(h.JWTMiddleware)
			r.Get("/", h.Me)
			r.Put("/settings", h.UpdateSettings)
			r.Put("/password", h.ChangePassword)
			r.Get("/orders", h.MyOrders)
			r.Get("/dashboard", h.LearnerDashboard)
			r.Get("/courses", h.LearnerCourses)
			r.Get("/courses/{slug}", h.LearnerCourse)
			r.Put("/videos/{videoId}/progress", h.RecordProgress)
			r.Get("/certificates", h.Certificates)
			r.Post("/certificates/{enrollmentId}", h.RequestCertificate)
			r.Get("/subscription", h.Subscription)
			r.With(idemp.Middleware).Post("/subscription", h.ChangePlan)
			r.Post("/subscription/cancel", h.CancelSubscription)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.JWTMiddleware)
			r.Use(h.RequireRole(domain.RoleAdmin))
			r.Get("/overview", h.AdminOverview)
			r.Get("/enrollments", h.AdminEnrollments)
			r.Get("/payments", h.AdminPayments)
			r.Get("/sessions", h.AdminSessions)
			r.Get("/bootcamps", h.AdminBootcamps)
			r.Get("/settings", h.AdminSettings)
			r.Put("/settings", h.UpdateAdminSettings)
			r.With(idemp.Middleware).Post("/charges/{chargeId}/refund", h.RefundCharge)
		})
	})

	return r
}
