package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"gymportal/internal/domain/access"
	"gymportal/internal/domain/account"
	"gymportal/internal/logging"
)

// Paths the gate redirects to.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// StateResolver reports what the gate knows about the visitor of r.
type StateResolver func(r *http.Request) access.SessionState

// GateOptions configures Gate.
type GateOptions struct {
	// Resolve defaults to SessionState.
	Resolve StateResolver
	// Pending renders the placeholder shown while identity is unresolved.
	// Defaults to a plain-text page.
	Pending http.Handler
}

// SessionState builds the gate input from the session placed by Auth.
func SessionState(r *http.Request) access.SessionState {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		return access.SessionState{}
	}
	return access.SessionState{
		Authenticated: true,
		User:          &access.User{Name: s.Name, Role: s.Role},
	}
}

// Gate returns middleware that admits a request only when access.Authorize allows it.
// The decision is re-evaluated on every request.
// HTML requests are redirected; JSON API requests receive 401 or 403.
func Gate(required account.Role, opts GateOptions) func(http.Handler) http.Handler {
	resolve := opts.Resolve
	if resolve == nil {
		resolve = SessionState
	}
	pending := opts.Pending
	if pending == nil {
		pending = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Loading…", http.StatusServiceUnavailable)
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := access.Authorize(resolve(r), required, ReturnTarget(r))

			if decision.Kind != access.Allow {
				logging.FromContext(r.Context()).Debug("access_decision",
					"decision", decision.Kind.String(),
					"required", required,
					"path", r.URL.Path,
				)
			}

			switch decision.Kind {
			case access.Allow:
				next.ServeHTTP(w, r)
			case access.Pending:
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Cache-Control", "no-store")
				if wantsJSON(r) {
					writeJSONError(w, http.StatusServiceUnavailable, "session is still loading")
					return
				}
				w.Header().Set("Refresh", "1")
				pending.ServeHTTP(w, r)
			case access.RedirectToLogin:
				if wantsJSON(r) {
					writeJSONError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				http.Redirect(w, r, LoginURL(decision.ReturnTo), http.StatusSeeOther)
			default:
				if wantsJSON(r) {
					writeJSONError(w, http.StatusForbidden, "insufficient role")
					return
				}
				http.Redirect(w, r, UnauthorizedPath, http.StatusSeeOther)
			}
		})
	}
}

// ReturnTarget is where login should send the visitor of r back to.
// A GET or HEAD returns to the requested URI. Any other method returns to the
// same-site page that submitted it (its Referer), or nowhere when that is unknown.
func ReturnTarget(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL.RequestURI()
	}
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || ref.Host != r.Host {
		return ""
	}
	return access.SafeReturnPath(ref.RequestURI())
}

// LoginURL returns the login page URL that returns to next after signing in.
func LoginURL(next string) string {
	if next == "" || next == "/" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// wantsJSON reports whether r is an API call rather than a page view.
func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") ||
		strings.HasPrefix(r.Header.Get("Accept"), "application/json")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
