package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/typeclash/typeclash-backend/internal/matchmaking"
	"github.com/typeclash/typeclash-backend/internal/registry"
	"github.com/typeclash/typeclash-backend/internal/ws"
)

// SetupRoutes builds the router with the actor handles injected.
func SetupRoutes(reg *registry.Registry, mm *matchmaking.Matchmaker, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, mm, log))
	return r
}
