package web

import (
	"errors"
	"net/http"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/access"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/navigation"
	"gymportal/internal/logging"
)

type loginContent struct {
	Email string
	Next  string
	Error string
}

// handleHome renders the public landing page.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	var home string
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		home = navigation.HomePath(sess.Role)
	}
	s.render(w, r, http.StatusOK, "home.html", "Welcome", home)
}

// handleLoginPage renders the login form, or sends a signed-in visitor home.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, navigation.HomePath(sess.Role), http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "Sign in", loginContent{
		Next: access.SafeReturnPath(r.URL.Query().Get("next")),
	})
}

// handleLogin authenticates and starts a login session.
// A trainer's scheduled-session scope opens with the login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: s.accounts,
		Now:          s.now,
	})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) || errors.Is(err, orchestrators.ErrAccountLocked) {
		s.render(w, r, http.StatusUnauthorized, "login.html", "Sign in", loginContent{
			Email: input.Email,
			Next:  access.SafeReturnPath(input.Next),
			Error: err.Error(),
		})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	// A fresh token per login; any previous session on this browser ends here.
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	sess, err := s.sessions.Create(middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Name:      result.Name,
		Role:      result.Role,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if sess.Role == account.RoleTrainer {
		s.scopes.Open(sess.Token, sess.AccountID)
	}

	redirect := result.RedirectPath
	if !s.servesPage(redirect) {
		redirect = navigation.HomePath(sess.Role)
	}
	s.cookies.Set(w, sess.Token)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// servesPage reports whether a GET for path reaches a registered route.
func (s *Server) servesPage(path string) bool {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return false
	}
	_, pattern := s.mux.Handler(req)
	return pattern != ""
}

// handleLogout ends the login session. The trainer scope closes with it.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		logging.FromContext(r.Context()).Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	s.cookies.Clear(w)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	var home string
	if sess, ok := middleware.SessionFromContext(r.Context()); ok {
		home = navigation.HomePath(sess.Role)
	}
	s.render(w, r, http.StatusForbidden, "unauthorized.html", "Not allowed", home)
}

// handleLoading is shown by the gate while the visitor's session is unresolved.
func (s *Server) handleLoading(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusServiceUnavailable, "loading.html", "Loading", nil)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDevModeImpersonate lets an admin view the portal as another role.
// The gate sees the new role on the very next request.
func (s *Server) handleDevModeImpersonate(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Form error", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteDevModeImpersonate(orchestrators.DevModeImpersonateInput{
		TargetRole: r.PostFormValue("role"),
		Current:    identityOf(sess),
		Real:       realIdentityOf(sess),
	})
	if errors.Is(err, orchestrators.ErrDevModeNotAdmin) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess.Role = result.Role
	sess.RealAccountID = result.Real.AccountID
	sess.RealEmail = result.Real.Email
	sess.RealName = result.Real.Name
	sess.RealRole = result.Real.Role
	if !s.sessions.Update(sess) {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	logging.FromContext(r.Context()).Info("devmode_event",
		"event", "impersonate",
		"admin_account_id", sess.AccountID,
		"target_role", result.Role,
	)
	http.Redirect(w, r, navigation.HomePath(result.Role), http.StatusSeeOther)
}

// handleDevModeRestore returns an impersonating admin to their own role.
func (s *Server) handleDevModeRestore(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	admin, err := orchestrators.ExecuteDevModeRestore(realIdentityOf(sess))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess.AccountID = admin.AccountID
	sess.Email = admin.Email
	sess.Name = admin.Name
	sess.Role = admin.Role
	sess.RealAccountID, sess.RealEmail, sess.RealName, sess.RealRole = "", "", "", account.RoleNone
	if !s.sessions.Update(sess) {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	logging.FromContext(r.Context()).Info("devmode_event", "event", "restore", "admin_account_id", admin.AccountID)
	http.Redirect(w, r, navigation.HomePath(admin.Role), http.StatusSeeOther)
}

func identityOf(sess middleware.Session) orchestrators.Identity {
	return orchestrators.Identity{AccountID: sess.AccountID, Email: sess.Email, Name: sess.Name, Role: sess.Role}
}

func realIdentityOf(sess middleware.Session) orchestrators.Identity {
	return orchestrators.Identity{AccountID: sess.RealAccountID, Email: sess.RealEmail, Name: sess.RealName, Role: sess.RealRole}
}
