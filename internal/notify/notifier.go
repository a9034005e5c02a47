// Package notify announces war-room events to chat channels. Every
// registered sender gets every allowed event; a failing sender never blocks
// the others.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scorewire/warroom/internal/domain"
)

// Event types emitted by the trade service.
const (
	EventGradeReceived = "grade.received"
	EventGradeDanger   = "grade.danger"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name identifies the sender in logs (e.g. "telegram").
	Name() string
}

// Notifier fans an event out to all senders. Only events in the allowed set
// are forwarded; an empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// NotifyGrade announces a graded trade. Dangerous grades go out under their
// own event type so operators can subscribe to just those.
func (n *Notifier) NotifyGrade(ctx context.Context, rec domain.TradeRecord) error {
	event := EventGradeReceived
	title := fmt.Sprintf("Trade graded %s", rec.Grade)
	if rec.Danger {
		event = EventGradeDanger
		title = fmt.Sprintf("Risky trade graded %s", rec.Grade)
	}

	body := fmt.Sprintf("%s with %s", rec.HomeTeam, rec.PartnerTeam)
	if rec.PartnerTeam2 != "" {
		body = fmt.Sprintf("%s and %s", body, rec.PartnerTeam2)
	}
	if rec.Reasoning != "" {
		body += "\n" + rec.Reasoning
	}

	return n.Notify(ctx, event, title, body)
}

// Notify sends to all senders if the event type is allowed.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// dispatch delivers to every sender, collecting failures into one error so
// a broken webhook cannot silence the rest.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
