package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xtding233/coinflip/internal/session"
)

// NewServer creates a configured *http.Server for the coinflip API.
func NewServer(addr string, reg *session.Registry, log *slog.Logger, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(reg, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
