package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/lostfound/report"
)

// NewRouter creates a chi router with every API route mounted.
// A non-empty token enables bearer authentication on everything but /health/live.
func NewRouter(reporter *report.Reporter, token string, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(reporter, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", h.Live)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Post("/users", h.CreateUser)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Post("/items", h.ReportItem)
			r.Delete("/items/{id}", h.ResolveItem)
			r.Get("/dashboard", h.Dashboard)
			r.Post("/notifications/read", h.MarkRead)
			r.Post("/match", h.Match)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
