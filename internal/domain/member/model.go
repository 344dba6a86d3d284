package member

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 32
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	PlanBasic   = "basic"
	PlanPremium = "premium"
	PlanVIP     = "vip"
)

// ValidPlans contains all membership plans.
var ValidPlans = []string{PlanBasic, PlanPremium, PlanVIP}

// Domain errors
var (
	ErrEmptyName     = errors.New("member name cannot be empty")
	ErrNameTooLong   = errors.New("member name cannot exceed 100 characters")
	ErrInvalidEmail  = errors.New("member email must be valid")
	ErrPhoneTooLong  = errors.New("member phone cannot exceed 32 characters")
	ErrInvalidPlan   = errors.New("plan must be one of: basic, premium, vip")
	ErrInvalidStatus = errors.New("status must be 'active' or 'inactive'")
	ErrAlreadyActive = errors.New("member is already active")
)

// Member is a person holding a gym membership.
type Member struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Plan     string
	Status   string
	JoinedAt time.Time
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if len(m.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	if !isValidPlan(m.Plan) {
		return ErrInvalidPlan
	}
	if m.Status != StatusActive && m.Status != StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the membership is current.
// INVARIANT: Member fields are not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// Reactivate moves an inactive member back to active.
// POST: Status is active
func (m *Member) Reactivate() error {
	if m.Status == StatusActive {
		return ErrAlreadyActive
	}
	m.Status = StatusActive
	return nil
}

func isValidPlan(plan string) bool {
	for _, p := range ValidPlans {
		if p == plan {
			return true
		}
	}
	return false
}
