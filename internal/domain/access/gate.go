// Package access decides whether a requester may view a protected page.
package access

import (
	"net/url"
	"strings"

	"gymportal/internal/domain/account"
)

// User is the signed-in identity as seen by the gate.
type User struct {
	Name string
	Role account.Role
}

// SessionState is the authentication state the gate evaluates.
type SessionState struct {
	Authenticated bool
	User          *User
	Loading       bool // session is still being resolved
}

// Kind enumerates gate outcomes.
type Kind int

const (
	Pending Kind = iota
	RedirectToLogin
	RedirectToUnauthorized
	Allow
)

// String returns a stable name for logging.
func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case RedirectToLogin:
		return "redirect_to_login"
	case RedirectToUnauthorized:
		return "redirect_to_unauthorized"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// Decision is the result of Authorize.
type Decision struct {
	Kind Kind
	// ReturnTo is the originally requested location. Set only for RedirectToLogin.
	ReturnTo string
}

// Authorize evaluates the gate for one navigation request.
// PRE: requested is the path (and query) the requester asked for
// POST: Loading always yields Pending; unauthenticated yields RedirectToLogin
// carrying requested; a role mismatch yields RedirectToUnauthorized
// INVARIANT: pure function of its inputs, nothing is cached
func Authorize(state SessionState, required account.Role, requested string) Decision {
	if state.Loading {
		return Decision{Kind: Pending}
	}
	if !state.Authenticated {
		return Decision{Kind: RedirectToLogin, ReturnTo: requested}
	}
	if required != account.RoleNone {
		if state.User == nil || state.User.Role != required {
			return Decision{Kind: RedirectToUnauthorized}
		}
	}
	return Decision{Kind: Allow}
}

// SafeReturnPath returns raw if it is a same-site absolute path, or "" otherwise.
// Used to keep the post-login return from becoming an open redirect.
func SafeReturnPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return ""
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return raw
}
