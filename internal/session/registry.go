package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
	"github.com/xtding233/coinflip/internal/unlock"
)

// DefaultID names the persistent player profile.
const DefaultID = "default"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrDefaultSession  = errors.New("the default session cannot be deleted")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Factory builds a fresh ephemeral session.
type Factory func(ctx context.Context, id string) (*Session, error)

// Limits bound the ephemeral sessions a Registry holds. Zero disables a limit.
// The default session is exempt from both.
type Limits struct {
	MaxSessions int
	IdleTTL     time.Duration
}

type entry struct {
	s    *Session
	seen time.Time
}

// Registry maps session IDs to sessions. The default session always exists.
type Registry struct {
	mu     sync.Mutex
	byID   map[string]*entry
	fresh  Factory
	limits Limits
	now    func() time.Time
}

func NewRegistry(def *Session, fresh Factory) *Registry {
	return NewLimitedRegistry(def, fresh, Limits{})
}

func NewLimitedRegistry(def *Session, fresh Factory, limits Limits) *Registry {
	return &Registry{
		byID:   map[string]*entry{DefaultID: {s: def}},
		fresh:  fresh,
		limits: limits,
		now:    time.Now,
	}
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || r.expiredLocked(id, e, r.now()) {
		return nil, ErrSessionNotFound
	}
	e.seen = r.now()
	return e.s, nil
}

// Create starts an ephemeral session under a new random ID. Idle sessions
// are evicted first; if the registry is still full Create fails with
// ErrTooManySessions.
func (r *Registry) Create(ctx context.Context) (string, *Session, error) {
	id := uuid.NewString()
	s, err := r.fresh(ctx, id)
	if err != nil {
		return "", nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	if r.limits.MaxSessions > 0 && len(r.byID)-1 >= r.limits.MaxSessions {
		return "", nil, ErrTooManySessions
	}
	r.byID[id] = &entry{s: s, seen: r.now()}
	return id, s, nil
}

func (r *Registry) Delete(id string) error {
	if id == DefaultID {
		return ErrDefaultSession
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.byID, id)
	return nil
}

// Prune drops sessions idle for longer than the TTL and reports how many
// went.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked()
}

func (r *Registry) pruneLocked() int {
	now := r.now()
	n := 0
	for id, e := range r.byID {
		if r.expiredLocked(id, e, now) {
			delete(r.byID, id)
			n++
		}
	}
	return n
}

func (r *Registry) expiredLocked(id string, e *entry, now time.Time) bool {
	return id != DefaultID && r.limits.IdleTTL > 0 && now.Sub(e.seen) > r.limits.IdleTTL
}

// RunJanitor prunes idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration, log *slog.Logger) {
	if r.limits.IdleTTL <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Prune(); n > 0 {
				log.Info("idle sessions evicted", slog.Int("count", n))
			}
		}
	}
}

// IDs lists the registered sessions, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MemoryFactory builds sessions whose progress lives only in memory. With
// opt.Seed set every session gets its own stream derived from the seed and
// its ID; otherwise opt.RNG, when set, is shared.
func MemoryFactory(cat *coin.Catalog, opt Options) Factory {
	return func(ctx context.Context, id string) (*Session, error) {
		log := opt.Logger
		if log == nil {
			log = slog.Default()
		}
		log = log.With(slog.String("session", id))
		o := opt
		o.Logger = log
		if opt.Seed != nil {
			o.RNG = unlock.NewSeededRNG(unlock.DeriveSeed(*opt.Seed, id))
		}
		tr := unlock.NewTracker(ctx, cat, progress.NewMemoryStore(), unlock.Options{RNG: o.RNG, Logger: log})
		return New(tr, o), nil
	}
}
