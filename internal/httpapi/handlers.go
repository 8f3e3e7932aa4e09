package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/tactics-server/internal/hub"
	"github.com/DoyleJ11/tactics-server/internal/session"
)

const listTimeout = 2 * time.Second

type sessionsResponse struct {
	Count    int               `json:"count"`
	Sessions []session.Summary `json:"sessions"`
}

// ListSessions reports every live match.
func ListSessions(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), listTimeout)
		defer cancel()

		sessions, err := h.Sessions(ctx)
		if err != nil {
			http.Error(w, "hub unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(sessionsResponse{Count: len(sessions), Sessions: sessions})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
