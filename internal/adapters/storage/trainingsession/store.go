package trainingsession

import (
	domain "gymportal/internal/domain/trainingsession"
)

// Store holds the scheduled sessions of one trainer scope.
// Operations are synchronous and never fail on an unknown id except Transition.
type Store interface {
	Add(input domain.Input) (domain.ScheduledSession, error)
	List() []domain.ScheduledSession
	Get(id string) (domain.ScheduledSession, bool)
	Update(id string, patch domain.Patch) error
	Delete(id string)
	Transition(id string, to domain.Status) (domain.ScheduledSession, error)
}
