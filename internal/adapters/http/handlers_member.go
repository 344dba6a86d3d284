package web

import (
	"errors"
	"net/http"

	"gymportal/internal/adapters/http/middleware"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/domain/member"
)

type memberPage struct {
	Name   string
	Member *member.Member // nil when the login has no membership record
}

// currentMember finds the membership record matching the signed-in email.
func (s *Server) currentMember(r *http.Request) (memberPage, error) {
	sess, _ := middleware.SessionFromContext(r.Context())
	page := memberPage{Name: sess.Name}
	m, err := s.members.GetByEmail(r.Context(), sess.Email)
	if errors.Is(err, memberStore.ErrNotFound) {
		return page, nil
	}
	if err != nil {
		return page, err
	}
	page.Member = &m
	return page, nil
}

func (s *Server) handleMemberDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := s.currentMember(r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "member_dashboard.html", "Dashboard", page)
}

func (s *Server) handleMemberMembership(w http.ResponseWriter, r *http.Request) {
	page, err := s.currentMember(r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "member_membership.html", "Membership", page)
}
