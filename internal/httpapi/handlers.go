package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/session"
)

// HandlerProvider exposes the session registry over HTTP.
type HandlerProvider struct {
	reg *session.Registry
	log *slog.Logger
}

func NewHandler(reg *session.Registry, log *slog.Logger) *HandlerProvider {
	if log == nil {
		log = slog.Default()
	}
	return &HandlerProvider{reg: reg, log: log}
}

// --- Helpers ---

func (h *HandlerProvider) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.log.Error("failed to encode JSON response", "error", err)
	}
}

func (h *HandlerProvider) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps session errors to status codes.
func (h *HandlerProvider) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrUnknownCoin):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrFlipInProgress), errors.Is(err, session.ErrCoinLocked):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidSide), errors.Is(err, session.ErrDefaultSession):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrTooManySessions):
		h.writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, http.StatusServiceUnavailable, "flip aborted")
	default:
		h.log.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// sessionFrom resolves {sessionID}, writing the error response on failure.
func (h *HandlerProvider) sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.reg.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeDomainError(w, err)
		return nil, false
	}
	return s, true
}

// --- Handlers ---

// CreateSession handles POST /sessions
func (h *HandlerProvider) CreateSession(w http.ResponseWriter, r *http.Request) {
	id, s, err := h.reg.Create(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"id": id, "faces": s.Faces()})
}

// DeleteSession handles DELETE /sessions/{sessionID}
func (h *HandlerProvider) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Delete(chi.URLParam(r, "sessionID")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Flip handles POST /sessions/{sessionID}/flip
func (h *HandlerProvider) Flip(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	res, err := s.Flip(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Stats handles GET /sessions/{sessionID}/stats
func (h *HandlerProvider) Stats(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, s.Stats())
}

// Coins handles GET /sessions/{sessionID}/coins
func (h *HandlerProvider) Coins(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, s.Coins())
}

// Coin handles GET /sessions/{sessionID}/coin?path=...
// Paths may contain slashes, so they travel in the query.
func (h *HandlerProvider) Coin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		h.writeError(w, http.StatusBadRequest, "missing path")
		return
	}
	c, ok := s.Coin(path)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown coin")
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// Faces handles GET /sessions/{sessionID}/faces
func (h *HandlerProvider) Faces(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, s.Faces())
}

// Face handles GET /sessions/{sessionID}/faces/{side}
func (h *HandlerProvider) Face(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	f, err := s.Face(coin.Side(chi.URLParam(r, "side")))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, f)
}

type faceRequest struct {
	Path   string `json:"path"`
	Random bool   `json:"random"`
}

// SetFace handles PUT /sessions/{sessionID}/faces/{side}
func (h *HandlerProvider) SetFace(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	var req faceRequest
	if err := decodeBody(w, r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			h.writeError(w, http.StatusBadRequest, "empty body")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	side := coin.Side(chi.URLParam(r, "side"))
	var err error
	if req.Random {
		err = s.SetFaceRandom(side, req.Path)
	} else {
		if req.Path == "" {
			h.writeError(w, http.StatusBadRequest, "path required")
			return
		}
		err = s.SetFace(side, req.Path)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s.Faces())
}

// Reset handles POST /sessions/{sessionID}/reset
func (h *HandlerProvider) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	if err := s.Reset(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s.Stats())
}

// Notifications handles GET /sessions/{sessionID}/notifications
func (h *HandlerProvider) Notifications(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"pending": s.PendingNotifications()})
}

type ackRequest struct {
	Path string `json:"path"`
}

// AckNotification handles POST /sessions/{sessionID}/notifications/ack
func (h *HandlerProvider) AckNotification(w http.ResponseWriter, r *http.Request) {
	s, ok := h.sessionFrom(w, r)
	if !ok {
		return
	}
	var req ackRequest
	if err := decodeBody(w, r, &req); err != nil || req.Path == "" {
		h.writeError(w, http.StatusBadRequest, "path required")
		return
	}
	if err := s.AckNotification(r.Context(), req.Path); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
