package trainingsession

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "gymportal/internal/domain/trainingsession"
)

// MemoryStore implements Store in process memory. Nothing is persisted.
// Safe for concurrent use; writers are serialized in the order they lock.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions []domain.ScheduledSession
	index    map[string]int

	newID func() string
	now   func() time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithIDGenerator overrides id generation. Intended for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *MemoryStore) { s.newID = fn }
}

// WithClock overrides the creation timestamp source. Intended for tests.
func WithClock(fn func() time.Time) Option {
	return func(s *MemoryStore) { s.now = fn }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		index: make(map[string]int),
		newID: newTimeOrderedID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newTimeOrderedID returns a UUIDv7, which sorts by creation time.
func newTimeOrderedID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Add validates input, assigns an id and creation time, and appends the session.
// PRE: input satisfies domain.Input.Validate
// POST: Returns the stored record with Status scheduled; existing ids are never reused
func (s *MemoryStore) Add(input domain.Input) (domain.ScheduledSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, taken := s.index[id]; taken {
		return domain.ScheduledSession{}, fmt.Errorf("duplicate session id %q", id)
	}
	session, err := domain.New(id, s.now(), input)
	if err != nil {
		return domain.ScheduledSession{}, err
	}
	s.index[id] = len(s.sessions)
	s.sessions = append(s.sessions, session)
	return session, nil
}

// List returns all sessions in insertion order.
// INVARIANT: Returned slice is a copy; store state is not mutated
func (s *MemoryStore) List() []domain.ScheduledSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScheduledSession, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Get returns the session with the given id.
func (s *MemoryStore) Get(id string) (domain.ScheduledSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.ScheduledSession{}, false
	}
	return s.sessions[i], true
}

// Update merges patch onto the matching session.
// Status is not checked against the lifecycle here; use Transition for that.
// POST: Unknown id is a no-op returning nil; an invalid patch changes nothing
func (s *MemoryStore) Update(id string, patch domain.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	updated, err := s.sessions[i].Apply(patch)
	if err != nil {
		return err
	}
	s.sessions[i] = updated
	return nil
}

// Delete removes the matching session. Unknown id is a no-op.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.sessions); j++ {
		s.index[s.sessions[j].ID] = j
	}
}

// Transition moves a session to a new status if the lifecycle permits it.
// POST: Returns domain.ErrNotFound or domain.ErrInvalidTransition without changing state
func (s *MemoryStore) Transition(id string, to domain.Status) (domain.ScheduledSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return domain.ScheduledSession{}, domain.ErrNotFound
	}
	current := s.sessions[i]
	if !to.Valid() {
		return current, domain.ErrInvalidStatus
	}
	if !domain.CanTransition(current.Status, to) {
		return current, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, to)
	}
	current.Status = to
	s.sessions[i] = current
	return current, nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Compile-time check that *MemoryStore satisfies Store.
var _ Store = (*MemoryStore)(nil)
