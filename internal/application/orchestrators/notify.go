package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"

	emailAdapter "gymportal/internal/adapters/email"
)

const notifyTimeout = 10 * time.Second

// Notifier delivers emails without blocking the request that triggered them.
// A failed send is logged and never reported to the caller.
type Notifier struct {
	Sender emailAdapter.Sender
	wg     sync.WaitGroup
}

// NewNotifier wraps sender. A nil sender disables notifications.
func NewNotifier(sender emailAdapter.Sender) *Notifier {
	return &Notifier{Sender: sender}
}

// Notify sends req in the background. Cancelling ctx does not cancel the send.
func (n *Notifier) Notify(ctx context.Context, event string, req emailAdapter.SendRequest) {
	if n == nil || n.Sender == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if _, err := n.Sender.Send(ctx, req); err != nil {
			slog.Warn("notify_event", "event", event, "status", "failed", "to", req.To, "error", err)
			return
		}
		slog.Info("notify_event", "event", event, "status", "sent", "to", req.To)
	}()
}

// Wait blocks until every pending send has finished. Used at shutdown and in tests.
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}
