package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	emailAdapter "gymportal/internal/adapters/email"
	memberStore "gymportal/internal/adapters/storage/member"
	"gymportal/internal/domain/account"
	"gymportal/internal/domain/member"
)

// --- in-memory test doubles ---

var errNotFound = errors.New("not found")

var fixedNow = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

func nowFn() time.Time { return fixedNow }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type memAccountStore struct {
	accounts map[string]account.Account // keyed by lower-case email
	saves    int
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]account.Account)}
}

func (s *memAccountStore) Save(_ context.Context, a account.Account) error {
	s.accounts[strings.ToLower(a.Email)] = a
	s.saves++
	return nil
}

func (s *memAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (s *memAccountStore) Count(_ context.Context) (int, error) {
	return len(s.accounts), nil
}

type memMemberStore struct {
	byID  map[string]member.Member
	saves int
}

func newMemMemberStore(members ...member.Member) *memMemberStore {
	s := &memMemberStore{byID: make(map[string]member.Member)}
	for _, m := range members {
		s.byID[m.ID] = m
	}
	return s
}

func (s *memMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.byID[id]
	if !ok {
		return member.Member{}, fmt.Errorf("%w: %s", memberStore.ErrNotFound, id)
	}
	return m, nil
}

func (s *memMemberStore) GetByEmail(_ context.Context, email string) (member.Member, error) {
	for _, m := range s.byID {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return member.Member{}, errNotFound
}

func (s *memMemberStore) Save(_ context.Context, m member.Member) error {
	s.byID[m.ID] = m
	s.saves++
	return nil
}

// recordingSender captures sends; fail makes every send return an error.
type recordingSender struct {
	mu   sync.Mutex
	sent []emailAdapter.SendRequest
	fail bool
}

func (s *recordingSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	if s.fail {
		return emailAdapter.SendResult{}, errors.New("provider down")
	}
	return emailAdapter.SendResult{MessageID: "msg", SentAt: fixedNow}, nil
}

func (s *recordingSender) requests() []emailAdapter.SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]emailAdapter.SendRequest(nil), s.sent...)
}

func activeMember(id, name, email string) member.Member {
	return member.Member{ID: id, Name: name, Email: email, Phone: "555-0100", Plan: member.PlanBasic, Status: member.StatusActive, JoinedAt: fixedNow}
}
