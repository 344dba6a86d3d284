package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	emailAdapter "gymportal/internal/adapters/email"
	"gymportal/internal/domain/trainingsession"
)

// SessionTransitioner is the part of the trainer's session store used for status changes.
type SessionTransitioner interface {
	Transition(id string, to trainingsession.Status) (trainingsession.ScheduledSession, error)
}

// TransitionSessionInput carries input for the transition orchestrator.
type TransitionSessionInput struct {
	SessionID   string
	Status      string
	TrainerName string
}

// TransitionSessionDeps holds dependencies for TransitionSession.
type TransitionSessionDeps struct {
	Sessions SessionTransitioner
	Notifier *Notifier // nil disables the cancellation email
}

// ExecuteTransitionSession moves a session along its lifecycle.
// PRE: SessionID is non-empty
// POST: Status is changed only if the lifecycle allows it; returns
// trainingsession.ErrNotFound, ErrInvalidStatus or ErrInvalidTransition otherwise.
// A cancelled session notifies the member.
func ExecuteTransitionSession(ctx context.Context, input TransitionSessionInput, deps TransitionSessionDeps) (trainingsession.ScheduledSession, error) {
	to := trainingsession.Status(strings.ToLower(strings.TrimSpace(input.Status)))
	if !to.Valid() {
		return trainingsession.ScheduledSession{}, trainingsession.ErrInvalidStatus
	}

	session, err := deps.Sessions.Transition(input.SessionID, to)
	if err != nil {
		return trainingsession.ScheduledSession{}, err
	}

	slog.Info("session_event", "event", "status_changed", "session_id", session.ID, "status", session.Status)

	if to == trainingsession.StatusCancelled && session.MemberEmail != "" {
		if req, err := emailAdapter.SessionCancellation(session, input.TrainerName); err == nil {
			deps.Notifier.Notify(ctx, "session_cancellation", req)
		}
	}
	return session, nil
}
