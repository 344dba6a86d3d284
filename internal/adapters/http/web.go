// Package web serves the gym portal: public pages, login, and the admin,
// trainer and member areas behind the access gate.
package web

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yuin/goldmark"

	"gymportal/internal/adapters/email"
	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/adapters/http/perf"
	accountStore "gymportal/internal/adapters/storage/account"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/application/trainerscope"
)

// Deps holds the collaborators the server needs.
type Deps struct {
	Accounts accountStore.Store
	Members  memberStore.Store
	Sender   email.Sender    // nil uses email.NoopSender
	Logger   *slog.Logger    // nil uses slog.Default()
	Perf     *perf.Collector // nil gets a private collector
}

// Options holds the server's tunables.
type Options struct {
	CSRFKey            []byte // 32 bytes; nil generates a random key
	SecureCookies      bool
	SessionTTL         time.Duration
	RateLimitPerSecond int // <= 0 disables rate limiting
	SlowRequest        time.Duration
}

// Server is the HTTP surface of the portal.
type Server struct {
	accounts accountStore.Store
	members  memberStore.Store
	sessions *middleware.SessionStore
	scopes   *trainerscope.Registry
	notifier *orchestrators.Notifier
	logger   *slog.Logger
	perf     *perf.Collector

	opts     Options
	cookies  middleware.Cookies
	limiter  *middleware.RateLimiter
	validate *validator.Validate
	md       goldmark.Markdown
	pages    *pageSet

	ready atomic.Bool
	now   func() time.Time

	mux     *http.ServeMux
	handler http.Handler
}

// New builds a Server. It is not ready until MarkReady is called; until then
// protected pages answer with the loading placeholder.
func New(deps Deps, opts Options) (*Server, error) {
	if deps.Accounts == nil || deps.Members == nil {
		return nil, errors.New("web: account and member stores are required")
	}
	if deps.Sender == nil {
		deps.Sender = email.NewNoopSender()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Perf == nil {
		deps.Perf = perf.NewCollector(perf.DefaultRingSize)
	}
	if opts.CSRFKey == nil {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate CSRF key: %w", err)
		}
		opts.CSRFKey = key
		deps.Logger.Warn("csrf_key", "event", "random", "detail", "form tokens will not survive a restart")
	}
	if len(opts.CSRFKey) != 32 {
		return nil, errors.New("web: CSRF key must be 32 bytes")
	}

	s := &Server{
		accounts: deps.Accounts,
		members:  deps.Members,
		scopes:   trainerscope.NewRegistry(nil),
		notifier: orchestrators.NewNotifier(deps.Sender),
		logger:   deps.Logger,
		perf:     deps.Perf,
		opts:     opts,
		validate: newValidator(),
		md:       newMarkdown(),
		now:      time.Now,
	}
	pages, err := loadPages(s.renderMarkdown)
	if err != nil {
		return nil, err
	}
	s.pages = pages

	// Ending a login session tears down the trainer's scheduled sessions with it.
	s.sessions = middleware.NewSessionStore(opts.SessionTTL,
		middleware.OnSessionEnd(func(sess middleware.Session) {
			s.scopes.Close(sess.Token)
		}),
		// Catches a scope reopened by a request that was in flight when its login ended.
		middleware.OnSweep(func() {
			s.scopes.Prune(s.sessions.Live)
		}),
	)
	s.cookies = middleware.Cookies{Secure: opts.SecureCookies, MaxAge: s.sessions.TTL()}

	s.mux = http.NewServeMux()
	s.registerRoutes(s.mux)

	chain := []func(http.Handler) http.Handler{
		middleware.Timing(s.logger, opts.SlowRequest, s.perf),
	}
	if opts.RateLimitPerSecond > 0 {
		s.limiter = middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)
		chain = append(chain, middleware.RateLimit(s.limiter))
	}
	chain = append(chain,
		middleware.Auth(s.sessions),
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies),
		middleware.SecurityHeaders,
	)
	s.handler = middleware.Chain(s.mux, chain...)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// MarkReady lets protected pages through the gate.
func (s *Server) MarkReady() {
	s.ready.Store(true)
	s.logger.Info("server_ready")
}

// Sessions exposes the login session store for the expiry sweeper.
func (s *Server) Sessions() *middleware.SessionStore {
	return s.sessions
}

// Close stops background work and waits for queued emails.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.notifier.Wait()
}
