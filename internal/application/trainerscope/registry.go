// Package trainerscope owns the lifetime of each trainer's shared session store.
//
// One Scope exists per authenticated login session. It is opened when a
// trainer logs in (or first enters the trainer area), survives navigation
// between trainer pages, and is closed at logout or when the login session
// expires. Closing drops every scheduled session the scope held.
package trainerscope

import (
	"context"
	"log/slog"
	"sync"
	"time"

	sessionStore "gymportal/internal/adapters/storage/trainingsession"
)

// Scope is the shared state for one trainer's login session.
type Scope struct {
	TrainerID string
	OpenedAt  time.Time
	Sessions  *sessionStore.MemoryStore
}

// Registry maps login-session tokens to scopes.
type Registry struct {
	mu       sync.Mutex
	scopes   map[string]*Scope
	newStore func() *sessionStore.MemoryStore
	now      func() time.Time
}

// NewRegistry creates an empty registry. newStore may be nil.
func NewRegistry(newStore func() *sessionStore.MemoryStore) *Registry {
	if newStore == nil {
		newStore = func() *sessionStore.MemoryStore { return sessionStore.NewMemoryStore() }
	}
	return &Registry{
		scopes:   make(map[string]*Scope),
		newStore: newStore,
		now:      time.Now,
	}
}

// Open returns the scope for token, creating it on first use.
// PRE: token and trainerID are non-empty
// POST: Repeated calls with the same token and trainer return the same Scope;
// a different trainer on the same token replaces it with an empty one
func (r *Registry) Open(token, trainerID string) *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sc, ok := r.scopes[token]; ok && sc.TrainerID == trainerID {
		return sc
	}
	sc := &Scope{
		TrainerID: trainerID,
		OpenedAt:  r.now(),
		Sessions:  r.newStore(),
	}
	r.scopes[token] = sc
	slog.Info("trainer_scope", "event", "opened", "trainer_id", trainerID)
	return sc
}

// Lookup returns the scope for token if one is open.
func (r *Registry) Lookup(token string) (*Scope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.scopes[token]
	return sc, ok
}

// Close tears down the scope for token. Closing an unknown token is a no-op.
func (r *Registry) Close(token string) {
	r.mu.Lock()
	sc, ok := r.scopes[token]
	delete(r.scopes, token)
	r.mu.Unlock()
	if ok {
		slog.Info("trainer_scope", "event", "closed", "trainer_id", sc.TrainerID, "sessions_dropped", sc.Sessions.Len())
	}
}

// Prune closes every scope whose token live no longer accepts and returns how many were closed.
// live is called without the registry lock held.
func (r *Registry) Prune(live func(token string) bool) int {
	r.mu.Lock()
	tokens := make([]string, 0, len(r.scopes))
	for token := range r.scopes {
		tokens = append(tokens, token)
	}
	r.mu.Unlock()

	pruned := 0
	for _, token := range tokens {
		if !live(token) {
			r.Close(token)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of open scopes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.scopes)
}

type contextKey struct{}

// WithScope returns a context carrying sc.
func WithScope(ctx context.Context, sc *Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// FromContext returns the scope placed by WithScope.
func FromContext(ctx context.Context) (*Scope, bool) {
	sc, ok := ctx.Value(contextKey{}).(*Scope)
	return sc, ok && sc != nil
}
