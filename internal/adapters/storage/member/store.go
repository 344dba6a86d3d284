package member

import (
	"context"
	"errors"

	domain "gymportal/internal/domain/member"
)

// ErrNotFound is returned when no member matches.
var ErrNotFound = errors.New("member not found")

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List and Count.
// A zero Limit means no limit.
type ListFilter struct {
	Limit  int
	Offset int
	Status string
	Search string // case-insensitive substring of name or email
}
