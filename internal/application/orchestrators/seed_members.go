package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymportal/internal/domain/member"
)

// MemberStoreForSeed defines the store interface needed by SeedMembers.
type MemberStoreForSeed interface {
	GetByEmail(ctx context.Context, email string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// MemberSeed is one member row from an import file.
type MemberSeed struct {
	Name   string
	Email  string
	Phone  string
	Plan   string
	Status string // empty means active
}

// SeedMembersDeps holds dependencies for SeedMembers.
type SeedMembersDeps struct {
	MemberStore MemberStoreForSeed
	GenerateID  func() string
	Now         func() time.Time
}

// SeedMembersResult counts what an import did.
type SeedMembersResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// ExecuteSeedMembers imports members, matching existing rows by email.
// PRE: seeds may be empty
// POST: Every seed row exists with its fields; nothing is written if any row is invalid
// INVARIANT: Existing member IDs and join dates are preserved
func ExecuteSeedMembers(ctx context.Context, seeds []MemberSeed, deps SeedMembersDeps) (SeedMembersResult, error) {
	var res SeedMembersResult

	rows := make([]member.Member, 0, len(seeds))
	seen := make(map[string]int, len(seeds))
	var errs []error
	for i, s := range seeds {
		m := member.Member{
			Name:   strings.TrimSpace(s.Name),
			Email:  strings.TrimSpace(s.Email),
			Phone:  strings.TrimSpace(s.Phone),
			Plan:   strings.ToLower(strings.TrimSpace(s.Plan)),
			Status: strings.ToLower(strings.TrimSpace(s.Status)),
		}
		if m.Status == "" {
			m.Status = member.StatusActive
		}
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("row %d (%s): %w", i+1, s.Email, err))
			continue
		}
		key := strings.ToLower(m.Email)
		if first, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("row %d (%s): duplicate of row %d", i+1, s.Email, first))
			continue
		}
		seen[key] = i + 1
		rows = append(rows, m)
	}
	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}

	for _, m := range rows {
		existing, err := deps.MemberStore.GetByEmail(ctx, m.Email)
		switch {
		case err == nil:
			m.ID = existing.ID
			m.Email = existing.Email
			m.JoinedAt = existing.JoinedAt
			if m == existing {
				res.Unchanged++
				continue
			}
			res.Updated++
		default:
			m.ID = deps.GenerateID()
			m.JoinedAt = deps.Now()
			res.Created++
		}
		if err := deps.MemberStore.Save(ctx, m); err != nil {
			return res, fmt.Errorf("save member %s: %w", m.Email, err)
		}
	}

	slog.Info("seed_event", "event", "members_seeded", "created", res.Created, "updated", res.Updated, "unchanged", res.Unchanged)
	return res, nil
}
