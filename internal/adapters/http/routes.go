package web

import (
	"net/http"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/domain/access"
	"gymportal/internal/domain/account"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /static/", http.FileServer(http.FS(staticFS)))

	// Public
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /unauthorized", s.handleUnauthorized)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Admin
	admin := s.gate(account.RoleAdmin)
	mux.Handle("GET /admin", admin(http.HandlerFunc(s.handleAdminDashboard)))
	mux.Handle("GET /admin/members", admin(http.HandlerFunc(s.handleAdminMembers)))
	mux.Handle("GET /admin/trainers", admin(http.HandlerFunc(s.handleAdminTrainers)))
	mux.Handle("GET /admin/reports", admin(s.placeholder("Reports", "Attendance and revenue reports will appear here.")))
	mux.Handle("GET /admin/settings", admin(s.placeholder("Settings", "Gym-wide settings will appear here.")))
	mux.Handle("POST /admin/devmode", admin(http.HandlerFunc(s.handleDevModeImpersonate)))

	// Trainer: every route shares the login session's scheduled sessions.
	trainer := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, s.gate(account.RoleTrainer), s.trainerScope)
	}
	mux.Handle("GET /trainer", trainer(s.handleTrainerDashboard))
	mux.Handle("GET /trainer/members", trainer(s.handleTrainerMembers))
	mux.Handle("POST /trainer/sessions", trainer(s.handleTrainerScheduleForm))
	mux.Handle("POST /trainer/sessions/{id}/status", trainer(s.handleTrainerStatusForm))
	mux.Handle("POST /trainer/sessions/{id}/delete", trainer(s.handleTrainerDeleteForm))
	mux.Handle("GET /trainer/schedule", trainer(s.handleTrainerSchedule))
	mux.Handle("GET /trainer/progress", trainer(s.placeholder("Progress", "Member progress charts will appear here.")))
	mux.Handle("GET /trainer/settings", trainer(s.placeholder("Settings", "Trainer preferences will appear here.")))

	mux.Handle("GET /api/trainer/sessions", trainer(s.handleAPIListSessions))
	mux.Handle("POST /api/trainer/sessions", trainer(s.handleAPICreateSession))
	mux.Handle("GET /api/trainer/sessions/{id}", trainer(s.handleAPIGetSession))
	mux.Handle("PATCH /api/trainer/sessions/{id}", trainer(s.handleAPIPatchSession))
	mux.Handle("DELETE /api/trainer/sessions/{id}", trainer(s.handleAPIDeleteSession))
	mux.Handle("POST /api/trainer/sessions/{id}/status", trainer(s.handleAPISessionStatus))

	// Member
	member := s.gate(account.RoleMember)
	mux.Handle("GET /member", member(http.HandlerFunc(s.handleMemberDashboard)))
	mux.Handle("GET /member/progress", member(s.placeholder("Progress", "Your training history will appear here.")))
	mux.Handle("GET /member/membership", member(http.HandlerFunc(s.handleMemberMembership)))
	mux.Handle("GET /member/settings", member(s.placeholder("Settings", "Profile and notification settings will appear here.")))

	// Any signed-in role
	mux.Handle("POST /devmode/restore", s.gate(account.RoleNone)(http.HandlerFunc(s.handleDevModeRestore)))
}

// gate wraps the access gate with this server's readiness and loading page.
func (s *Server) gate(required account.Role) func(http.Handler) http.Handler {
	return middleware.Gate(required, middleware.GateOptions{
		Resolve: s.sessionState,
		Pending: http.HandlerFunc(s.handleLoading),
	})
}

// sessionState reports Loading until the server has finished starting up.
func (s *Server) sessionState(r *http.Request) access.SessionState {
	state := middleware.SessionState(r)
	state.Loading = !s.ready.Load()
	return state
}
