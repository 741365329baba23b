package audit

import (
	"context"
	"log/slog"
)

// Notifier stands in for email/SMS delivery: customer-facing events are
// logged as outgoing notifications.
type Notifier struct {
	log     *slog.Logger
	actions map[string]string
}

func NewNotifier(log *slog.Logger) *Notifier {
	return &Notifier{
		log: log,
		actions: map[string]string{
			ActionOrderCreated:         "order_confirmation",
			ActionOrderCancelled:       "order_cancellation",
			ActionAppointmentBooked:    "appointment_request_received",
			ActionAppointmentStatus:    "appointment_status_update",
			ActionAppointmentCancelled: "appointment_cancellation",
			ActionPointsAwarded:        "loyalty_points_awarded",
		},
	}
}

func (n *Notifier) Name() string { return "notifier" }

func (n *Notifier) Handle(ctx context.Context, ev Event) error {
	template, ok := n.actions[ev.Action]
	if !ok {
		return nil
	}

	attrs := []slog.Attr{slog.String("template", template)}
	if ev.UserID != nil {
		attrs = append(attrs, slog.String("user_id", ev.UserID.String()))
	}
	if ev.EntityID != nil {
		attrs = append(attrs, slog.String("entity_id", ev.EntityID.String()))
	}
	n.log.LogAttrs(ctx, slog.LevelInfo, "notification queued", attrs...)

	return nil
}
