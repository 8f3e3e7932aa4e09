package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DoyleJ11/tactics-server/internal/hub"
	"github.com/DoyleJ11/tactics-server/internal/ws"
)

func SetupRoutes(h *hub.Hub, wsOpts ws.Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/sessions", ListSessions(h))
	r.Get("/ws", ws.Handler(h, wsOpts))
	return r
}
