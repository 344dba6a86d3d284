package web

import (
	"errors"
	"net/http"

	"gymportal/internal/adapters/http/middleware"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/domain/trainingsession"
)

type createSessionRequest struct {
	MemberID  string `json:"memberId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	Duration  int    `json:"duration" validate:"required,gt=0,lte=720"`
	Type      string `json:"type" validate:"max=50"`
	Location  string `json:"location" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=4000"`
}

// patchSessionRequest is a partial update. Status is decoded only so it can be refused.
type patchSessionRequest struct {
	Member      *string `json:"member" validate:"omitempty,max=100"`
	MemberEmail *string `json:"memberEmail" validate:"omitempty,email"`
	MemberPhone *string `json:"memberPhone" validate:"omitempty,max=32"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime   *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0,lte=720"`
	Type        *string `json:"type" validate:"omitempty,max=50"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	Notes       *string `json:"notes" validate:"omitempty,max=4000"`
	Status      *string `json:"status"`
}

func (p patchSessionRequest) toPatch() trainingsession.Patch {
	return trainingsession.Patch{
		Member:      p.Member,
		MemberEmail: p.MemberEmail,
		MemberPhone: p.MemberPhone,
		Date:        p.Date,
		StartTime:   p.StartTime,
		Duration:    p.Duration,
		Type:        p.Type,
		Location:    p.Location,
		Notes:       p.Notes,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// decodeValid decodes and validates a request body, writing a 400 on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(r, v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: fieldErrors(err)})
		return false
	}
	return true
}

// handleAPIListSessions returns the scope's sessions in insertion order, optionally ?status= filtered.
func (s *Server) handleAPIListSessions(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	sessions := filterByStatus(store.List(), trainingsession.Status(r.URL.Query().Get("status")))
	if sessions == nil {
		sessions = []trainingsession.ScheduledSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleAPICreateSession(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	var req createSessionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	created, err := orchestrators.ExecuteScheduleSession(r.Context(), orchestrators.ScheduleSessionInput{
		MemberID:    req.MemberID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		Duration:    req.Duration,
		Type:        req.Type,
		Location:    req.Location,
		Notes:       req.Notes,
		TrainerName: sess.Name,
	}, orchestrators.ScheduleSessionDeps{
		Members:  s.members,
		Sessions: store,
		Notifier: s.notifier,
	})
	if errors.Is(err, orchestrators.ErrMemberNotFound) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: map[string]string{"memberId": "unknown"}})
		return
	}
	if bookingRejected(err) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/trainer/sessions/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleAPIGetSession(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	found, ok := store.Get(r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, trainingsession.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// handleAPIPatchSession merges a partial update. Status changes must use the status endpoint.
func (s *Server) handleAPIPatchSession(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	var req patchSessionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	if req.Status != nil {
		writeJSONError(w, http.StatusBadRequest, trainingsession.ErrStatusNotPatchable.Error())
		return
	}

	id := r.PathValue("id")
	if _, ok := store.Get(id); !ok {
		writeJSONError(w, http.StatusNotFound, trainingsession.ErrNotFound.Error())
		return
	}
	if err := store.Update(id, req.toPatch()); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, ok := store.Get(id)
	if !ok {
		// Deleted by a concurrent request between Update and Get.
		writeJSONError(w, http.StatusNotFound, trainingsession.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAPIDeleteSession(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	store.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPISessionStatus(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	var req statusRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	sess, _ := middleware.SessionFromContext(r.Context())
	updated, err := orchestrators.ExecuteTransitionSession(r.Context(), orchestrators.TransitionSessionInput{
		SessionID:   r.PathValue("id"),
		Status:      req.Status,
		TrainerName: sess.Name,
	}, orchestrators.TransitionSessionDeps{Sessions: store, Notifier: s.notifier})
	if err != nil {
		writeJSONError(w, transitionStatusCode(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
