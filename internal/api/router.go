package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/claims"
	"github.com/erazemk/findersfee/internal/gate"
	"github.com/erazemk/findersfee/internal/notify"
	"github.com/erazemk/findersfee/internal/payments"
	"github.com/erazemk/findersfee/internal/photos"
	"github.com/erazemk/findersfee/internal/registry"
	"github.com/erazemk/findersfee/internal/stats"
)

// Services are the collaborators the API exposes.
type Services struct {
	Auth     *auth.Provider
	Roles    *auth.RoleResolver
	Items    *registry.Registry
	Claims   *claims.Engine
	Gate     *gate.Resolver
	Notify   *notify.Dispatcher
	Payments *payments.Service
	Photos   *photos.Store
	Stats    *stats.Service
}

// Options configure the router.
type Options struct {
	Logger     *slog.Logger
	LoginRate  float64 // attempts per minute per address
	LoginBurst int
	Metrics    bool
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(s Services, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LoginRate <= 0 {
		opts.LoginRate = 10
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}

	authH := &AuthHandler{Auth: s.Auth, Roles: s.Roles}
	itemsH := &ItemsHandler{Items: s.Items, Gate: s.Gate}
	claimsH := &ClaimsHandler{Claims: s.Claims}
	paymentsH := &PaymentsHandler{Payments: s.Payments}
	notificationsH := &NotificationsHandler{Notify: s.Notify}
	statsH := &StatsHandler{Stats: s.Stats}
	photosH := &PhotosHandler{Photos: s.Photos}
	adminH := &AdminHandler{Claims: s.Claims, Roles: s.Roles}

	required := AuthMiddleware(s.Auth)
	optional := OptionalAuth(s.Auth)
	limiter := newLoginLimiter(opts.LoginRate, opts.LoginBurst)

	r := chi.NewRouter()
	r.Use(Instrument(opts.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		// Public.
		r.With(limiter.Middleware).Post("/auth/login", authH.Login)
		r.With(limiter.Middleware).Post("/auth/register", authH.Register)
		r.Get("/photos/{id}", photosH.Get)

		// Anonymous or signed in.
		r.Group(func(r chi.Router) {
			r.Use(optional)
			r.Get("/items", itemsH.List)
			r.Get("/items/{id}", itemsH.Get)
			r.Get("/items/{id}/contact", itemsH.Contact)
		})

		// Signed in.
		r.Group(func(r chi.Router) {
			r.Use(required)

			r.Post("/auth/logout", authH.Logout)
			r.Get("/auth/me", authH.Me)
			r.Put("/auth/password", authH.ChangePassword)
			r.Put("/auth/profile", authH.UpdateProfile)

			r.Post("/items", itemsH.Create)
			r.Put("/items/{id}", itemsH.Update)
			r.Delete("/items/{id}", itemsH.Delete)

			r.Post("/claims", claimsH.Create)
			r.Get("/claims/pending", claimsH.Pending)
			r.Get("/claims/my", claimsH.Mine)
			r.Get("/claims/{id}", claimsH.Get)
			r.Put("/claims/{id}/approve", claimsH.Approve)
			r.Put("/claims/{id}/reject", claimsH.Reject)

			r.Post("/payments", paymentsH.Create)
			r.Get("/payments/my", paymentsH.Mine)
			r.Put("/payments/{id}/status", paymentsH.Resolve)

			r.Get("/notifications", notificationsH.List)
			r.Put("/notifications/read-all", notificationsH.MarkAllRead)
			r.Put("/notifications/{id}/read", notificationsH.MarkRead)

			r.Get("/statistics/platform", statsH.Platform)
			r.Get("/statistics/my", statsH.Mine)

			r.Post("/photos", photosH.Upload)

			r.Get("/admin/reconcile", adminH.ListReconcile)
			r.Post("/admin/reconcile", adminH.RunReconcile)
			r.Put("/admin/users/{id}/role", adminH.SetRole)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, apperr.KindNotFound, "route not found")
	})
	return r
}
