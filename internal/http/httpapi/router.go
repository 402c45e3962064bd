package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"legalbot/internal/http/handlers"
	"legalbot/internal/middleware"
)

type Options struct {
	// AdminToken guards /admin routes. Empty disables them.
	AdminToken string
	// AdminRateLimit caps admin calls per client IP per minute.
	AdminRateLimit int
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger, routePattern),
	)

	r.Get("/", app.Root)
	r.Get("/health", app.Health)
	r.Get("/metrics", app.PrometheusMetrics)
	r.Post("/webhook/{token}", app.Webhook)

	limit := opts.AdminRateLimit
	if limit <= 0 {
		limit = 10
	}
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminToken(opts.AdminToken), middleware.RateLimit(limit, time.Minute))
		r.Post("/webhook", app.SetWebhook)
		r.Delete("/webhook", app.DeleteWebhook)
	})

	return r
}
