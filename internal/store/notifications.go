package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/findersfee/internal/model"
)

const notificationColumns = `id, recipient_id, title, body, type, payload, created_at, read_at`

func scanNotification(s scanner) (*model.Notification, error) {
	n := &model.Notification{}
	var payload string
	err := s.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Body, &n.Type, &payload, &n.CreatedAt, &n.ReadAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &n.Payload); err != nil {
		return nil, fmt.Errorf("decoding notification payload: %w", err)
	}
	return n, nil
}

// CreateNotification stores a notification for its recipient.
func CreateNotification(ctx context.Context, db *sql.DB, n *model.Notification) (*model.Notification, error) {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return nil, fmt.Errorf("encoding notification payload: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, title, body, type, payload) VALUES (?, ?, ?, ?, ?)`,
		n.RecipientID, n.Title, n.Body, n.Type, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	return GetNotification(ctx, db, id)
}

// GetNotification returns a notification by ID.
func GetNotification(ctx context.Context, db *sql.DB, id int64) (*model.Notification, error) {
	n, err := scanNotification(db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns a recipient's notifications, newest first.
func ListNotifications(ctx context.Context, db *sql.DB, recipientID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var list []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		list = append(list, *n)
	}
	return list, rows.Err()
}

// MarkNotificationRead sets the read time once; later calls keep the first.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE notifications SET read_at = COALESCE(read_at, CURRENT_TIMESTAMP) WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a recipient as read.
func MarkAllNotificationsRead(ctx context.Context, db *sql.DB, recipientID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read_at = CURRENT_TIMESTAMP WHERE recipient_id = ? AND read_at IS NULL`,
		recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	return result.RowsAffected()
}
