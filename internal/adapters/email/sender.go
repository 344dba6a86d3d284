// Package email delivers member notifications about booked and cancelled sessions.
package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipients is returned when a request has no To addresses.
var ErrNoRecipients = errors.New("email has no recipients")

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	ReplyTo string // empty uses the sender's default
	Subject string
	HTML    string
	Text    string // plain-text alternative
	Kind    string // message kind, e.g. "session_confirmation"; sent as a provider tag
}

func (r SendRequest) validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}

// SendResult is what the provider reported for an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender hands messages to a delivery provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
