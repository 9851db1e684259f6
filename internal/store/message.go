package store

import (
	"fmt"
	"time"
)

// InsertMessage appends a message to a conversation and bumps the
// conversation's last-activity timestamp in the same transaction.
// Messages are immutable once inserted.
func (db *DB) InsertMessage(conversationID, senderID int64, content string) (*Message, error) {
	now := time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO messages (conversation_id, sender_id, content, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)`,
		conversationID, senderID, content, now)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE conversations SET updated_at = ? WHERE id = ?`, now, conversationID); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}

	return &Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      now,
	}, nil
}

// ListMessages returns a conversation's messages oldest first, totally
// ordered by (created_at, id). beforeID > 0 turns on keyset pagination:
// only messages older than that id are returned. limit <= 0 means all.
func (db *DB) ListMessages(conversationID, beforeID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	args := []any{conversationID}
	query := `
		SELECT id, conversation_id, sender_id, content, is_read, created_at
		FROM messages
		WHERE conversation_id = ?`
	if beforeID > 0 {
		query += ` AND (created_at, id) < (SELECT created_at, id FROM messages WHERE id = ?)`
		args = append(args, beforeID)
	}
	query += ` ORDER BY created_at ASC, id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkConversationRead flips is_read on every unread message the reader did
// not author. The reader's own messages are untouched, and read flags never
// go back to unread, so repeated calls are no-ops. Returns rows changed.
func (db *DB) MarkConversationRead(conversationID, readerID int64) (int64, error) {
	res, err := db.Exec(`
		UPDATE messages SET is_read = 1
		WHERE conversation_id = ? AND sender_id != ? AND is_read = 0`,
		conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
