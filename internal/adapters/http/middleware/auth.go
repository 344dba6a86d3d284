package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"gymportal/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// DefaultSessionTTL is how long a login lasts when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Session represents an authenticated login session.
type Session struct {
	Token     string
	AccountID string
	Email     string
	Name      string
	Role      account.Role
	CreatedAt time.Time

	// DevMode impersonation fields, populated only when an admin is impersonating another role.
	RealAccountID string
	RealEmail     string
	RealName      string
	RealRole      account.Role
}

// IsImpersonating returns true if this session is currently impersonating another role.
// INVARIANT: Session fields are not mutated
func (s Session) IsImpersonating() bool {
	return s.RealRole != account.RoleNone
}

// IsRealAdmin reports whether the person behind the session is an admin,
// whichever role they are currently viewing as.
func (s Session) IsRealAdmin() bool {
	if s.IsImpersonating() {
		return s.RealRole == account.RoleAdmin
	}
	return s.Role == account.RoleAdmin
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionClock overrides the clock used for expiry. Intended for tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(ss *SessionStore) { ss.now = now }
}

// OnSessionEnd registers fn to run after a session is deleted or expires.
// fn runs outside the store's lock.
func OnSessionEnd(fn func(Session)) SessionOption {
	return func(ss *SessionStore) { ss.onEnd = append(ss.onEnd, fn) }
}

// OnSweep registers fn to run after every Sweep, outside the store's lock.
func OnSweep(fn func()) SessionOption {
	return func(ss *SessionStore) { ss.onSweep = append(ss.onSweep, fn) }
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
	onEnd    []func(Session)
	onSweep  []func()
}

// NewSessionStore creates a new in-memory session store. ttl <= 0 uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration, opts ...SessionOption) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	ss := &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(ss)
	}
	return ss
}

// TTL returns the configured session lifetime.
func (ss *SessionStore) TTL() time.Duration {
	return ss.ttl
}

// Create stores a new session for the identity in session and returns it.
// PRE: session.AccountID and session.Role are set
// POST: Session is stored under a fresh random token with CreatedAt = now
func (ss *SessionStore) Create(session Session) (Session, error) {
	token, err := generateToken()
	if err != nil {
		return Session{}, err
	}
	session.Token = token
	session.CreatedAt = ss.now()
	ss.mu.Lock()
	ss.sessions[token] = session
	ss.mu.Unlock()
	return session, nil
}

// Get retrieves a session by token.
// PRE: token is non-empty
// POST: Returns session if valid and not expired; an expired session is removed
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.expired(session) {
		ss.remove(token, func(s Session) bool { return ss.expired(s) })
		return Session{}, false
	}
	return session, true
}

// Live reports whether token names a stored, unexpired session. It never removes anything.
func (ss *SessionStore) Live(token string) bool {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	return ok && !ss.expired(session)
}

// Delete removes a session by token. Unknown tokens are ignored.
// POST: Session with given token is removed and end hooks have run
func (ss *SessionStore) Delete(token string) {
	ss.remove(token, func(Session) bool { return true })
}

// Update replaces the stored session with the same token.
// PRE: session.Token exists in the store
// POST: Session is replaced with the new value; returns false if the token is unknown
func (ss *SessionStore) Update(session Session) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if _, ok := ss.sessions[session.Token]; !ok {
		return false
	}
	ss.sessions[session.Token] = session
	return true
}

// Sweep removes every expired session and returns how many were removed.
func (ss *SessionStore) Sweep() int {
	ss.mu.Lock()
	var ended []Session
	for token, s := range ss.sessions {
		if ss.expired(s) {
			delete(ss.sessions, token)
			ended = append(ended, s)
		}
	}
	ss.mu.Unlock()
	for _, s := range ended {
		ss.fireEnd(s)
	}
	if len(ended) > 0 {
		slog.Info("auth_event", "event", "sessions_expired", "count", len(ended))
	}
	for _, fn := range ss.onSweep {
		fn()
	}
	return len(ended)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (ss *SessionStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ss.Sweep()
		}
	}
}

// Len returns the number of stored sessions, expired or not.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

func (ss *SessionStore) expired(s Session) bool {
	return ss.now().Sub(s.CreatedAt) > ss.ttl
}

// remove deletes token if cond still holds under the write lock.
func (ss *SessionStore) remove(token string, cond func(Session) bool) {
	ss.mu.Lock()
	session, ok := ss.sessions[token]
	if ok && cond(session) {
		delete(ss.sessions, token)
	} else {
		ok = false
	}
	ss.mu.Unlock()
	if ok {
		ss.fireEnd(session)
	}
}

func (ss *SessionStore) fireEnd(s Session) {
	for _, fn := range ss.onEnd {
		fn(s)
	}
}

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "gymportal_session"

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; use Gate for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext extracts the session from the request context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// Cookies writes the session cookie.
type Cookies struct {
	Secure bool
	MaxAge time.Duration
}

// Set sets the session cookie on the response.
func (c Cookies) Set(w http.ResponseWriter, token string) {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultSessionTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
	})
}

// Clear removes the session cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
