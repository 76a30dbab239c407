package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/skaters-limit/internal/config"
	"github.com/DoyleJ11/skaters-limit/internal/hub"
	"github.com/DoyleJ11/skaters-limit/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, cfg config.Configuration, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Post("/lobbies", CreateLobby(h, logger))
	r.Get("/lobbies/{code}", GetLobby(h))
	r.Get("/config", ServerConfig(cfg))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger.Named("ws")))
	return r
}
