package web

import (
	"net/http"
	"strings"
	"time"

	"gymportal/internal/adapters/http/perf"
	accountStore "gymportal/internal/adapters/storage/account"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/member"
)

type adminDashboard struct {
	Accounts      int
	Members       int
	ActiveMembers int
	Trainers      int
	SignedIn      int
	TrainerScopes int
	Perf          perf.Report
}

// perfWindow is how far back the dashboard's timing summary looks.
const perfWindow = time.Hour

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accounts, err := s.accounts.Count(ctx)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	members, err := s.members.Count(ctx, memberStore.ListFilter{})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	active, err := s.members.Count(ctx, memberStore.ListFilter{Status: member.StatusActive})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	trainers, err := s.accounts.List(ctx, accountStore.ListFilter{Role: account.RoleTrainer})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "admin_dashboard.html", "Dashboard", adminDashboard{
		Accounts:      accounts,
		Members:       members,
		ActiveMembers: active,
		Trainers:      len(trainers),
		SignedIn:      s.sessions.Len(),
		TrainerScopes: s.scopes.Len(),
		Perf:          s.perf.Report(s.now().Add(-perfWindow), 5),
	})
}

type adminMembers struct {
	Members []member.Member
	Status  string
	Query   string
	Total   int
}

// handleAdminMembers lists members, filtered by ?status= and searched by ?q=.
func (s *Server) handleAdminMembers(w http.ResponseWriter, r *http.Request) {
	filter := memberStore.ListFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	if st := r.URL.Query().Get("status"); st == member.StatusActive || st == member.StatusInactive {
		filter.Status = st
	}

	members, err := s.members.List(r.Context(), filter)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "admin_members.html", "Members", adminMembers{
		Members: members,
		Status:  filter.Status,
		Query:   filter.Search,
		Total:   len(members),
	})
}

func (s *Server) handleAdminTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := s.accounts.List(r.Context(), accountStore.ListFilter{Role: account.RoleTrainer})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "admin_trainers.html", "Trainers", trainers)
}
