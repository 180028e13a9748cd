// Package notify stores in-app notifications for users.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/erazemk/findersfee/internal/apperr"
	"github.com/erazemk/findersfee/internal/metrics"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/store"
)

// Dispatcher creates and reads notifications.
type Dispatcher struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// New returns a dispatcher backed by db.
func New(db *sql.DB, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{DB: db, Logger: logger}
}

func render(kind model.NotificationType, p model.NotificationPayload) (title, body string) {
	name := p.ItemName
	if name == "" {
		name = "your item"
	}
	switch kind {
	case model.NotificationClaimApproved:
		return "Claim approved",
			fmt.Sprintf("Your claim for %q has been approved. Complete the payment to see the contact details.", name)
	case model.NotificationClaimRejected:
		return "Claim rejected",
			fmt.Sprintf("Your claim for %q was not approved.", name)
	}
	if p.Message != "" {
		return "Notice", p.Message
	}
	return "Notice", "You have a new notification."
}

// Notify stores a notification for recipientID. Failures are logged and
// counted before being returned; callers treat delivery as best effort.
func (d *Dispatcher) Notify(ctx context.Context, recipientID int64, kind model.NotificationType, payload model.NotificationPayload) (*model.Notification, error) {
	title, body := render(kind, payload)
	n, err := store.CreateNotification(ctx, d.DB, &model.Notification{
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		Type:        kind,
		Payload:     payload,
	})
	if err != nil {
		metrics.Notifications.WithLabelValues(string(kind), "failed").Inc()
		d.Logger.Warn("notification failed", "recipient_id", recipientID, "type", kind, "error", err)
		return nil, apperr.External("storing notification", err)
	}

	metrics.Notifications.WithLabelValues(string(kind), "sent").Inc()
	return n, nil
}

// ListFor returns the reader's notifications, most recent first.
func (d *Dispatcher) ListFor(ctx context.Context, reader *model.Identity, unreadOnly bool) ([]model.Notification, error) {
	if reader == nil {
		return nil, apperr.Unauthorized("sign in required")
	}
	list, err := store.ListNotifications(ctx, d.DB, reader.UserID, unreadOnly)
	if err != nil {
		return nil, apperr.External("listing notifications", err)
	}
	if list == nil {
		list = []model.Notification{}
	}
	return list, nil
}

// MarkRead marks one of the reader's notifications as read. Marking an
// already read notification keeps its original read time.
func (d *Dispatcher) MarkRead(ctx context.Context, id int64, reader *model.Identity) error {
	if reader == nil {
		return apperr.Unauthorized("sign in required")
	}
	n, err := store.GetNotification(ctx, d.DB, id)
	if err != nil {
		return apperr.External("loading notification", err)
	}
	if n == nil || n.RecipientID != reader.UserID {
		return apperr.NotFound("notification not found")
	}
	if n.ReadAt != nil {
		return nil
	}
	if err := store.MarkNotificationRead(ctx, d.DB, id); err != nil {
		return apperr.External("marking notification read", err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the reader as read.
func (d *Dispatcher) MarkAllRead(ctx context.Context, reader *model.Identity) (int64, error) {
	if reader == nil {
		return 0, apperr.Unauthorized("sign in required")
	}
	n, err := store.MarkAllNotificationsRead(ctx, d.DB, reader.UserID)
	if err != nil {
		return 0, apperr.External("marking notifications read", err)
	}
	return n, nil
}
