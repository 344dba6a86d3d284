package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gymportal/internal/domain/trainingsession"
)

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(
		`<p>Hi {{.Session.Member}},</p>
<p>{{.Trainer}} has booked you in for a {{if .Session.Type}}{{.Session.Type}} {{end}}session on <strong>{{.Session.Date}}</strong>
from <strong>{{.Session.StartTime}}</strong> to <strong>{{.Session.EndTime}}</strong>{{if .Session.Location}} at {{.Session.Location}}{{end}}.</p>
<p>See you there.</p>`))

	cancellationTmpl = template.Must(template.New("cancellation").Parse(
		`<p>Hi {{.Session.Member}},</p>
<p>Your session with {{.Trainer}} on <strong>{{.Session.Date}}</strong> at <strong>{{.Session.StartTime}}</strong> has been cancelled.</p>`))
)

type sessionMessage struct {
	Session trainingsession.ScheduledSession
	Trainer string
}

// SessionConfirmation builds the booking email for the session's member.
// PRE: s.MemberEmail is non-empty
func SessionConfirmation(s trainingsession.ScheduledSession, trainer string) (SendRequest, error) {
	req, err := render(confirmationTmpl, "Session booked: "+s.Date+" "+s.StartTime, s, trainer)
	req.Kind = "session_confirmation"
	req.Text = fmt.Sprintf("You are booked in on %s from %s to %s.", s.Date, s.StartTime, s.EndTime)
	return req, err
}

// SessionCancellation builds the cancellation email for the session's member.
// PRE: s.MemberEmail is non-empty
func SessionCancellation(s trainingsession.ScheduledSession, trainer string) (SendRequest, error) {
	req, err := render(cancellationTmpl, "Session cancelled: "+s.Date+" "+s.StartTime, s, trainer)
	req.Kind = "session_cancellation"
	req.Text = fmt.Sprintf("Your session on %s at %s has been cancelled.", s.Date, s.StartTime)
	return req, err
}

func render(t *template.Template, subject string, s trainingsession.ScheduledSession, trainer string) (SendRequest, error) {
	if s.MemberEmail == "" {
		return SendRequest{}, ErrNoRecipients
	}
	if trainer == "" {
		trainer = "Your trainer"
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, sessionMessage{Session: s, Trainer: trainer}); err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{s.MemberEmail},
		Subject: subject,
		HTML:    buf.String(),
	}, nil
}
