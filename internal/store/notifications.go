package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/founditapp/foundit/internal/model"
)

// CreateNotification records a claim lifecycle event for one user.
func CreateNotification(ctx context.Context, db *sql.DB, n *model.Notification) (*model.Notification, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, claim_id, item_id, item_title,
		                            sender_name, sender_email, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.UserID, n.Type, n.ClaimID, n.ItemID, n.ItemTitle,
		n.SenderName, n.SenderEmail, n.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	return GetNotification(ctx, db, id)
}

// GetNotification returns a notification by ID.
func GetNotification(ctx context.Context, db *sql.DB, id string) (*model.Notification, error) {
	n := &model.Notification{}
	var claimID, itemID, itemTitle, senderName, senderEmail sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, type, claim_id, item_id, item_title, sender_name, sender_email,
		        message, read, created_at
		 FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.UserID, &n.Type, &claimID, &itemID, &itemTitle,
		&senderName, &senderEmail, &n.Message, &n.Read, &n.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	n.ClaimID = claimID.String
	n.ItemID = itemID.String
	n.ItemTitle = itemTitle.String
	n.SenderName = senderName.String
	n.SenderEmail = senderEmail.String
	return n, nil
}

// ListNotifications returns a user's notifications newest first.
func ListNotifications(ctx context.Context, db *sql.DB, userID string) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, type, claim_id, item_id, item_title, sender_name, sender_email,
		        message, read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var claimID, itemID, itemTitle, senderName, senderEmail sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &claimID, &itemID, &itemTitle,
			&senderName, &senderEmail, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.ClaimID = claimID.String
		n.ItemID = itemID.String
		n.ItemTitle = itemTitle.String
		n.SenderName = senderName.String
		n.SenderEmail = senderEmail.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks a notification as read. Idempotent: marking an
// already-read notification succeeds without error. Returns false if no
// notification with that ID belongs to the user.
func MarkNotificationRead(ctx context.Context, db *sql.DB, id, userID string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking notification update: %w", err)
	}
	return affected > 0, nil
}

// CountUnreadNotifications returns the user's unread badge count.
func CountUnreadNotifications(ctx context.Context, db *sql.DB, userID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}
