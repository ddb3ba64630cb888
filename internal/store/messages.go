package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/founditapp/foundit/internal/model"
)

// parseTimestamp reads the text form SQLite uses for CURRENT_TIMESTAMP
// defaults, falling back to RFC 3339.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CreateMessage appends a message to a claim's conversation.
func CreateMessage(ctx context.Context, db *sql.DB, m *model.Message) (*model.Message, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO messages (id, claim_id, sender_email, receiver_email, content)
		 VALUES (?, ?, ?, ?, ?)`,
		id, m.ClaimID, m.SenderEmail, m.ReceiverEmail, m.Content,
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	msg := &model.Message{}
	err = db.QueryRowContext(ctx,
		`SELECT id, claim_id, sender_email, receiver_email, content, read, created_at
		 FROM messages WHERE id = ?`, id,
	).Scan(&msg.ID, &msg.ClaimID, &msg.SenderEmail, &msg.ReceiverEmail, &msg.Content, &msg.Read, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	return msg, nil
}

// ListMessagesForClaim returns a claim's messages oldest first.
func ListMessagesForClaim(ctx context.Context, db *sql.DB, claimID string) ([]model.Message, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, claim_id, sender_email, receiver_email, content, read, created_at
		 FROM messages WHERE claim_id = ? ORDER BY created_at, rowid`, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ClaimID, &m.SenderEmail, &m.ReceiverEmail, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListConversations returns one conversation summary per accepted or done
// claim the user is a party to, most recently active first.
func ListConversations(ctx context.Context, db *sql.DB, email string) ([]model.Conversation, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.item_title,
		        CASE WHEN c.claimer_email = ? THEN i.reporter_name ELSE c.claimer_name END,
		        CASE WHEN c.claimer_email = ? THEN i.reporter_email ELSE c.claimer_email END,
		        COALESCE((SELECT content FROM messages m WHERE m.claim_id = c.id
		                  ORDER BY m.created_at DESC, m.rowid DESC LIMIT 1), ''),
		        COALESCE((SELECT m.created_at FROM messages m WHERE m.claim_id = c.id
		                  ORDER BY m.created_at DESC, m.rowid DESC LIMIT 1), c.updated_at),
		        (SELECT COUNT(*) FROM messages m WHERE m.claim_id = c.id
		         AND m.receiver_email = ? AND m.read = 0)
		 FROM claims c
		 JOIN items i ON i.id = c.item_id
		 WHERE c.status IN ('accepted', 'done')
		   AND (c.claimer_email = ? OR i.reporter_email = ?)
		 ORDER BY 7 DESC`,
		email, email, email, email, email,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []model.Conversation
	for rows.Next() {
		var c model.Conversation
		// The COALESCE strips the column's DATETIME decltype, so the
		// timestamp arrives as text.
		var lastAt string
		if err := rows.Scan(&c.ClaimID, &c.ItemID, &c.ItemTitle, &c.CounterpartName,
			&c.CounterpartEmail, &c.LastMessage, &lastAt, &c.UnreadCount); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		c.LastMessageAt, err = parseTimestamp(lastAt)
		if err != nil {
			return nil, fmt.Errorf("parsing conversation timestamp: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// MarkConversationRead marks all messages addressed to the reader in one
// claim's conversation as read. Idempotent.
func MarkConversationRead(ctx context.Context, db *sql.DB, claimID, readerEmail string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE messages SET read = 1 WHERE claim_id = ? AND receiver_email = ? AND read = 0`,
		claimID, readerEmail,
	)
	if err != nil {
		return fmt.Errorf("marking conversation read: %w", err)
	}
	return nil
}
