package trainingsession

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a ScheduledSession.
type Status string

// Status constants
const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// Durations offered by the "add session" form. The store accepts any positive value.
var OfferedDurations = []int{30, 45, 60, 90}

// Wall-clock layouts
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Domain errors
var (
	ErrEmptyMember        = errors.New("member cannot be empty")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrInvalidStartTime   = errors.New("start time must be HH:MM")
	ErrInvalidDuration    = errors.New("duration must be a positive number of minutes")
	ErrCrossesMidnight    = errors.New("session must end on the same date it starts")
	ErrInvalidStatus      = errors.New("status must be one of: scheduled, in-progress, completed, cancelled")
	ErrInvalidTransition  = errors.New("status transition is not allowed")
	ErrNotFound           = errors.New("scheduled session not found")
	ErrStatusNotPatchable = errors.New("status cannot be changed by patch")
)

// ScheduledSession is one trainer-member appointment.
// Member, MemberEmail and MemberPhone are a snapshot taken at creation.
type ScheduledSession struct {
	ID          string    `json:"id"`
	Member      string    `json:"member"`
	MemberEmail string    `json:"memberEmail"`
	MemberPhone string    `json:"memberPhone"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Duration    int       `json:"duration"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Input carries the fields supplied when a session is created.
type Input struct {
	Member      string
	MemberEmail string
	MemberPhone string
	Date        string
	StartTime   string
	Duration    int
	Type        string
	Location    string
	Notes       string
}

// Patch is a partial update. Nil fields are left untouched.
// ID, CreatedAt and EndTime are not patchable; EndTime follows StartTime and Duration.
type Patch struct {
	Member      *string
	MemberEmail *string
	MemberPhone *string
	Date        *string
	StartTime   *string
	Duration    *int
	Type        *string
	Location    *string
	Notes       *string
	Status      *Status
}

// Validate checks the creation fields.
// PRE: Input struct is populated
// POST: Returns nil if a session can be built from it, error otherwise
func (in Input) Validate() error {
	if strings.TrimSpace(in.Member) == "" {
		return ErrEmptyMember
	}
	_, err := checkSlot(in.Date, in.StartTime, in.Duration)
	return err
}

// EndTime returns start + duration as HH:MM.
// PRE: start is HH:MM, minutes > 0
// POST: Returns ErrCrossesMidnight if the result would fall on the next day
func EndTime(start string, minutes int) (string, error) {
	if minutes <= 0 {
		return "", ErrInvalidDuration
	}
	t, err := time.Parse(TimeLayout, start)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStartTime, start)
	}
	end := t.Add(time.Duration(minutes) * time.Minute)
	if end.Day() != t.Day() {
		return "", ErrCrossesMidnight
	}
	return end.Format(TimeLayout), nil
}

// checkSlot validates date, start and duration together and returns the end time.
func checkSlot(date, start string, minutes int) (string, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return EndTime(start, minutes)
}

// New builds a scheduled session from validated input.
// PRE: in.Validate() == nil
// POST: Status is scheduled, EndTime derived, ID and CreatedAt set from arguments
func New(id string, createdAt time.Time, in Input) (ScheduledSession, error) {
	if err := in.Validate(); err != nil {
		return ScheduledSession{}, err
	}
	end, _ := EndTime(in.StartTime, in.Duration)
	return ScheduledSession{
		ID:          id,
		Member:      in.Member,
		MemberEmail: in.MemberEmail,
		MemberPhone: in.MemberPhone,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     end,
		Duration:    in.Duration,
		Type:        in.Type,
		Location:    in.Location,
		Notes:       in.Notes,
		Status:      StatusScheduled,
		CreatedAt:   createdAt,
	}, nil
}

// Apply merges p onto s and returns the result. s is not modified.
// POST: EndTime is recomputed when StartTime, Duration or Date change
// INVARIANT: ID and CreatedAt are preserved
func (s ScheduledSession) Apply(p Patch) (ScheduledSession, error) {
	out := s
	if p.Member != nil {
		if strings.TrimSpace(*p.Member) == "" {
			return s, ErrEmptyMember
		}
		out.Member = *p.Member
	}
	if p.MemberEmail != nil {
		out.MemberEmail = *p.MemberEmail
	}
	if p.MemberPhone != nil {
		out.MemberPhone = *p.MemberPhone
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return s, ErrInvalidStatus
		}
		out.Status = *p.Status
	}
	if p.Date != nil || p.StartTime != nil || p.Duration != nil {
		if p.Date != nil {
			out.Date = *p.Date
		}
		if p.StartTime != nil {
			out.StartTime = *p.StartTime
		}
		if p.Duration != nil {
			out.Duration = *p.Duration
		}
		end, err := checkSlot(out.Date, out.StartTime, out.Duration)
		if err != nil {
			return s, err
		}
		out.EndTime = end
	}
	return out, nil
}

// Valid reports whether st is a known status.
func (st Status) Valid() bool {
	for _, v := range ValidStatuses {
		if v == st {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves st.
func (st Status) Terminal() bool {
	return st == StatusCompleted || st == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
