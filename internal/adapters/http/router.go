package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(logger *slog.Logger, handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	r.Route("/api/fraud-detection", func(r chi.Router) {
		r.Post("/analyze", handler.analyze)
		r.Get("/agents/info", handler.agentsInfo)
		r.Get("/health", handler.health)
	})
	return r
}
