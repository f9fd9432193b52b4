package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xtding233/coinflip/internal/session"
)

// NewRouter registers every endpoint on a chi router.
func NewRouter(reg *session.Registry, log *slog.Logger) http.Handler {
	h := NewHandler(reg, log)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Delete("/", h.DeleteSession)
		r.Post("/flip", h.Flip)
		r.Get("/stats", h.Stats)
		r.Get("/coins", h.Coins)
		r.Get("/coin", h.Coin)
		r.Get("/faces", h.Faces)
		r.Get("/faces/{side}", h.Face)
		r.Put("/faces/{side}", h.SetFace)
		r.Post("/reset", h.Reset)
		r.Get("/notifications", h.Notifications)
		r.Post("/notifications/ack", h.AckNotification)
	})

	return r
}
