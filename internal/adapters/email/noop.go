package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender records sends in the log without delivering them.
// The server falls back to it when GYM_RESEND_KEY is unset.
type NoopSender struct {
	now func() time.Time
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{now: time.Now}
}

// Send validates req and logs it.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if err := req.validate(); err != nil {
		return SendResult{}, err
	}
	sentAt := s.now()
	slog.Info("email_skipped", "kind", req.Kind, "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", sentAt.UnixNano()),
		SentAt:    sentAt,
	}, nil
}
