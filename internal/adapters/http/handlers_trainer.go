package web

import (
	"errors"
	"net/http"
	"strconv"

	"gymportal/internal/adapters/http/middleware"
	memberStore "gymportal/internal/adapters/storage/member"
	sessionStore "gymportal/internal/adapters/storage/trainingsession"
	"gymportal/internal/application/orchestrators"
	"gymportal/internal/application/trainerscope"
	"gymportal/internal/domain/member"
	"gymportal/internal/domain/trainingsession"
)

// trainerScope attaches the login session's shared session store to the request.
// Every trainer page and API call of one login sees the same store.
func (s *Server) trainerScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, middleware.LoginURL(middleware.ReturnTarget(r)), http.StatusSeeOther)
			return
		}
		sc := s.scopes.Open(sess.Token, sess.AccountID)
		// The login may have ended after Auth resolved it; never leave a scope behind for it.
		if !s.sessions.Live(sess.Token) {
			s.scopes.Close(sess.Token)
			http.Redirect(w, r, middleware.LoginURL(middleware.ReturnTarget(r)), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(trainerscope.WithScope(r.Context(), sc)))
	})
}

// scopeSessions returns the store placed by trainerScope.
func scopeSessions(r *http.Request) (sessionStore.Store, bool) {
	sc, ok := trainerscope.FromContext(r.Context())
	if !ok {
		return nil, false
	}
	return sc.Sessions, true
}

var errNoScope = errors.New("trainer scope missing")

type statusCount struct {
	Status trainingsession.Status
	Count  int
}

type trainerDashboard struct {
	Total    int
	ByStatus []statusCount
	Upcoming []trainingsession.ScheduledSession
}

func (s *Server) handleTrainerDashboard(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	sessions := store.List()

	counts := make(map[trainingsession.Status]int)
	var upcoming []trainingsession.ScheduledSession
	for _, sess := range sessions {
		counts[sess.Status]++
		if sess.Status == trainingsession.StatusScheduled && len(upcoming) < 5 {
			upcoming = append(upcoming, sess)
		}
	}
	data := trainerDashboard{Total: len(sessions), Upcoming: upcoming}
	for _, st := range trainingsession.ValidStatuses {
		data.ByStatus = append(data.ByStatus, statusCount{Status: st, Count: counts[st]})
	}
	s.render(w, r, http.StatusOK, "trainer_dashboard.html", "Dashboard", data)
}

// scheduleForm is the "add session" form state, echoed back on errors.
type scheduleForm struct {
	MemberID  string
	Date      string
	StartTime string
	Duration  int
	Type      string
	Location  string
	Notes     string
}

type trainerMembers struct {
	Members   []member.Member
	Durations []int
	Form      scheduleForm
	Error     string
}

func (s *Server) handleTrainerMembers(w http.ResponseWriter, r *http.Request) {
	s.renderTrainerMembers(w, r, http.StatusOK, scheduleForm{Duration: 60}, "")
}

func (s *Server) renderTrainerMembers(w http.ResponseWriter, r *http.Request, status int, form scheduleForm, msg string) {
	members, err := s.members.List(r.Context(), memberStore.ListFilter{Status: member.StatusActive})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, status, "trainer_members.html", "Members", trainerMembers{
		Members:   members,
		Durations: trainingsession.OfferedDurations,
		Form:      form,
		Error:     msg,
	})
}

// handleTrainerScheduleForm books a session from the members page form.
func (s *Server) handleTrainerScheduleForm(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	form := scheduleForm{
		MemberID:  r.PostFormValue("member_id"),
		Date:      r.PostFormValue("date"),
		StartTime: r.PostFormValue("start_time"),
		Type:      r.PostFormValue("type"),
		Location:  r.PostFormValue("location"),
		Notes:     r.PostFormValue("notes"),
	}
	duration, err := strconv.Atoi(r.PostFormValue("duration"))
	if err != nil {
		s.renderTrainerMembers(w, r, http.StatusBadRequest, form, trainingsession.ErrInvalidDuration.Error())
		return
	}
	form.Duration = duration

	sess, _ := middleware.SessionFromContext(r.Context())
	_, err = orchestrators.ExecuteScheduleSession(r.Context(), orchestrators.ScheduleSessionInput{
		MemberID:    form.MemberID,
		Date:        form.Date,
		StartTime:   form.StartTime,
		Duration:    form.Duration,
		Type:        form.Type,
		Location:    form.Location,
		Notes:       form.Notes,
		TrainerName: sess.Name,
	}, orchestrators.ScheduleSessionDeps{
		Members:  s.members,
		Sessions: store,
		Notifier: s.notifier,
	})
	if bookingRejected(err) {
		s.renderTrainerMembers(w, r, http.StatusBadRequest, form, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	http.Redirect(w, r, "/trainer/schedule", http.StatusSeeOther)
}

// bookingRejected reports whether err is a problem with the booking itself
// rather than a failure to carry it out.
func bookingRejected(err error) bool {
	for _, target := range []error{
		orchestrators.ErrMemberRequired,
		orchestrators.ErrMemberNotFound,
		orchestrators.ErrMemberInactive,
		trainingsession.ErrEmptyMember,
		trainingsession.ErrInvalidDate,
		trainingsession.ErrInvalidStartTime,
		trainingsession.ErrInvalidDuration,
		trainingsession.ErrCrossesMidnight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type trainerSchedule struct {
	Sessions []trainingsession.ScheduledSession
	Status   string
	Error    string
}

func (s *Server) handleTrainerSchedule(w http.ResponseWriter, r *http.Request) {
	s.renderTrainerSchedule(w, r, http.StatusOK, "")
}

func (s *Server) renderTrainerSchedule(w http.ResponseWriter, r *http.Request, status int, msg string) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	filter := trainingsession.Status(r.URL.Query().Get("status"))
	sessions := filterByStatus(store.List(), filter)
	s.render(w, r, status, "trainer_schedule.html", "Schedule", trainerSchedule{
		Sessions: sessions,
		Status:   string(filter),
		Error:    msg,
	})
}

// handleTrainerStatusForm moves a session along its lifecycle from the schedule page.
func (s *Server) handleTrainerStatusForm(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	sess, _ := middleware.SessionFromContext(r.Context())
	_, err := orchestrators.ExecuteTransitionSession(r.Context(), orchestrators.TransitionSessionInput{
		SessionID:   r.PathValue("id"),
		Status:      r.PostFormValue("status"),
		TrainerName: sess.Name,
	}, orchestrators.TransitionSessionDeps{Sessions: store, Notifier: s.notifier})
	if err != nil {
		s.renderTrainerSchedule(w, r, transitionStatusCode(err), err.Error())
		return
	}
	http.Redirect(w, r, "/trainer/schedule", http.StatusSeeOther)
}

func (s *Server) handleTrainerDeleteForm(w http.ResponseWriter, r *http.Request) {
	store, ok := scopeSessions(r)
	if !ok {
		s.internalError(w, r, errNoScope)
		return
	}
	store.Delete(r.PathValue("id"))
	http.Redirect(w, r, "/trainer/schedule", http.StatusSeeOther)
}

// filterByStatus keeps sessions with status st. An unknown or empty st keeps all.
func filterByStatus(sessions []trainingsession.ScheduledSession, st trainingsession.Status) []trainingsession.ScheduledSession {
	if !st.Valid() {
		return sessions
	}
	out := make([]trainingsession.ScheduledSession, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Status == st {
			out = append(out, sess)
		}
	}
	return out
}

func transitionStatusCode(err error) int {
	switch {
	case errors.Is(err, trainingsession.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trainingsession.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
