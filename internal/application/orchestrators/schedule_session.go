package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	emailAdapter "gymportal/internal/adapters/email"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/domain/member"
	"gymportal/internal/domain/trainingsession"
)

// MemberLookup defines the member read needed when booking.
// A missing member is reported as an error wrapping memberStore.ErrNotFound.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// SessionAdder is the part of the trainer's session store used when booking.
type SessionAdder interface {
	Add(input trainingsession.Input) (trainingsession.ScheduledSession, error)
}

// ScheduleSessionInput carries input for the schedule orchestrator.
type ScheduleSessionInput struct {
	MemberID    string
	Date        string
	StartTime   string
	Duration    int
	Type        string
	Location    string
	Notes       string
	TrainerName string
}

// ScheduleSessionDeps holds dependencies for ScheduleSession.
type ScheduleSessionDeps struct {
	Members  MemberLookup
	Sessions SessionAdder
	Notifier *Notifier // nil disables the confirmation email
}

var (
	ErrMemberRequired = errors.New("member is required")
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberInactive = errors.New("member is not active")
)

// ExecuteScheduleSession books a session for an active member in the trainer's store.
// PRE: MemberID names an existing member
// POST: Session is appended with the member's name, email and phone copied in;
// a confirmation email is queued when the member has an email address
func ExecuteScheduleSession(ctx context.Context, input ScheduleSessionInput, deps ScheduleSessionDeps) (trainingsession.ScheduledSession, error) {
	if strings.TrimSpace(input.MemberID) == "" {
		return trainingsession.ScheduledSession{}, ErrMemberRequired
	}
	m, err := deps.Members.GetByID(ctx, input.MemberID)
	if errors.Is(err, memberStore.ErrNotFound) {
		return trainingsession.ScheduledSession{}, fmt.Errorf("%w: %s", ErrMemberNotFound, input.MemberID)
	}
	if err != nil {
		return trainingsession.ScheduledSession{}, fmt.Errorf("get member: %w", err)
	}
	if !m.IsActive() {
		return trainingsession.ScheduledSession{}, ErrMemberInactive
	}

	session, err := deps.Sessions.Add(trainingsession.Input{
		Member:      m.Name,
		MemberEmail: m.Email,
		MemberPhone: m.Phone,
		Date:        input.Date,
		StartTime:   input.StartTime,
		Duration:    input.Duration,
		Type:        input.Type,
		Location:    input.Location,
		Notes:       input.Notes,
	})
	if err != nil {
		return trainingsession.ScheduledSession{}, err
	}

	slog.Info("session_event", "event", "scheduled", "session_id", session.ID, "member_id", m.ID, "date", session.Date, "start", session.StartTime)

	if session.MemberEmail != "" {
		req, err := emailAdapter.SessionConfirmation(session, input.TrainerName)
		if err != nil {
			slog.Warn("notify_event", "event", "session_confirmation", "status", "render_failed", "error", err)
		} else {
			deps.Notifier.Notify(ctx, "session_confirmation", req)
		}
	}
	return session, nil
}
