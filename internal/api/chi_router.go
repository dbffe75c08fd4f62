// Quotable - Quotes, Authors, and Tags with realtime notifications
// SPDX-License-Identifier: MIT
// https://github.com/quotable/quotable

package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quotable/quotable/internal/config"
	"github.com/quotable/quotable/internal/middleware"
)

// SetupChi builds the HTTP router: global middleware, the REST resource
// groups, health probes, Prometheus metrics, and the websocket endpoint.
func SetupChi(handler *Handler, cfg *config.Config) chi.Router {
	cm := NewChiMiddleware(middlewareConfig(cfg))

	r := chi.NewRouter()

	// Global middleware, outermost first. CORS sits at the top so OPTIONS
	// preflight requests short-circuit before anything heavier runs.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cm.CORS())
	r.Use(APISecurityHeaders())
	r.Use(middleware.Compression)

	r.Route("/quotes", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(cm.RateLimitCustom(RateLimitRead))

		r.Get("/", handler.ListQuotes)
		r.With(cm.RateLimitCustom(RateLimitWrite)).Post("/", handler.CreateQuote)
		r.Get("/schema/filters", handler.QuoteFilterSchema)

		r.Route("/{quote_id}", func(r chi.Router) {
			r.Get("/", handler.GetQuote)
			r.Get("/tags", handler.GetQuoteTags)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Patch("/", handler.UpdateQuote)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Put("/", handler.ReplaceQuote)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Delete("/", handler.DeleteQuote)
		})
	})

	r.Route("/authors", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(cm.RateLimitCustom(RateLimitRead))

		r.Get("/", handler.ListAuthors)
		r.With(cm.RateLimitCustom(RateLimitWrite)).Post("/", handler.CreateAuthor)

		r.Route("/{author_id}", func(r chi.Router) {
			r.Get("/", handler.GetAuthor)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Patch("/", handler.UpdateAuthor)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Put("/", handler.ReplaceAuthor)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Delete("/", handler.DeleteAuthor)
		})
	})

	r.Route("/tags", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(cm.RateLimitCustom(RateLimitRead))

		r.Get("/", handler.ListTags)
		r.With(cm.RateLimitCustom(RateLimitWrite)).Post("/", handler.CreateTag)

		r.Route("/{tag_id}", func(r chi.Router) {
			r.Get("/", handler.GetTag)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Patch("/", handler.UpdateTag)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Put("/", handler.ReplaceTag)
			r.With(cm.RateLimitCustom(RateLimitWrite)).Delete("/", handler.DeleteTag)
		})
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(cm.RateLimitCustom(RateLimitHealth))
		r.Get("/", handler.Health)
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Method("GET", "/metrics", promhttp.Handler())

	wsPath := "/ws/notifications"
	if cfg != nil && cfg.Notifications.Path != "" {
		wsPath = cfg.Notifications.Path
	}
	r.With(cm.RateLimitCustom(RateLimitWebSocket)).Get(wsPath, handler.WebSocketNotifications)

	return r
}

// middlewareConfig maps the application security settings onto the
// middleware factory configuration.
func middlewareConfig(cfg *config.Config) *ChiMiddlewareConfig {
	mc := DefaultChiMiddlewareConfig()
	if cfg == nil {
		return mc
	}

	mc.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mc.RateLimitRequests = cfg.Security.RateLimitReqs
	mc.RateLimitWindow = cfg.Security.RateLimitWindow
	mc.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mc
}
