package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gymportal/internal/domain/trainingsession"
)

func sampleSession() trainingsession.ScheduledSession {
	return trainingsession.ScheduledSession{
		ID:          "s1",
		Member:      "John <Doe>",
		MemberEmail: "john@example.com",
		Date:        "2024-07-15",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Type:        "personal",
		Location:    "gym-floor",
	}
}

func TestSessionConfirmation(t *testing.T) {
	req, err := SessionConfirmation(sampleSession(), "Tess Trainer")
	if err != nil {
		t.Fatal(err)
	}
	if len(req.To) != 1 || req.To[0] != "john@example.com" {
		t.Errorf("To = %v", req.To)
	}
	if req.Kind != "session_confirmation" || !strings.Contains(req.Text, "09:00 to 10:00") {
		t.Errorf("Kind/Text = %q %q", req.Kind, req.Text)
	}
	if req.Subject != "Session booked: 2024-07-15 09:00" {
		t.Errorf("Subject = %q", req.Subject)
	}
	for _, want := range []string{"Tess Trainer", "09:00", "10:00", "gym-floor", "John &lt;Doe&gt;"} {
		if !strings.Contains(req.HTML, want) {
			t.Errorf("HTML missing %q:\n%s", want, req.HTML)
		}
	}
}

func TestSessionCancellation_DefaultTrainer(t *testing.T) {
	req, err := SessionCancellation(sampleSession(), "")
	if err != nil {
		t.Fatal(err)
	}
	if req.Kind != "session_cancellation" {
		t.Errorf("Kind = %q", req.Kind)
	}
	if !strings.Contains(req.HTML, "Your trainer") || !strings.Contains(req.HTML, "cancelled") {
		t.Errorf("HTML = %s", req.HTML)
	}
}

func TestMessages_NoRecipient(t *testing.T) {
	s := sampleSession()
	s.MemberEmail = ""
	if _, err := SessionConfirmation(s, "T"); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("err = %v, want ErrNoRecipients", err)
	}
}

func TestNoopSender(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), SendRequest{To: []string{"a@b.c"}, Subject: "x"})
	if err != nil || !strings.HasPrefix(res.MessageID, "noop-") {
		t.Errorf("Send = %+v, %v", res, err)
	}
	if _, err := s.Send(context.Background(), SendRequest{}); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("empty To err = %v", err)
	}
}
