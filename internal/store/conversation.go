package store

import (
	"database/sql"
	"fmt"
	"time"
)

// FindOrCreateConversation returns the conversation between the two users,
// creating it on first contact. Idempotent for both argument orders: the
// pair is normalized before touching the table, and the UNIQUE constraint
// makes concurrent first contacts converge on one row.
func (db *DB) FindOrCreateConversation(userID, otherID int64) (*Conversation, error) {
	if userID == otherID {
		return nil, fmt.Errorf("conversation requires two distinct users, got %d twice", userID)
	}
	lo, hi := userID, otherID
	if lo > hi {
		lo, hi = hi, lo
	}

	now := time.Now().UnixMilli()
	if _, err := db.Exec(`
		INSERT INTO conversations (user_a_id, user_b_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_a_id, user_b_id) DO NOTHING`,
		lo, hi, now, now); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	var c Conversation
	err := db.QueryRow(`
		SELECT id, user_a_id, user_b_id, created_at, updated_at
		FROM conversations WHERE user_a_id = ? AND user_b_id = ?`, lo, hi).
		Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return &c, nil
}

// GetConversation returns a conversation by id, or nil when missing.
func (db *DB) GetConversation(id int64) (*Conversation, error) {
	var c Conversation
	err := db.QueryRow(`
		SELECT id, user_a_id, user_b_id, created_at, updated_at
		FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.UserAID, &c.UserBID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns the directory for userID: every conversation the
// user participates in, newest activity first, each with the counterpart
// user, the latest message and the unread count.
func (db *DB) ListConversations(userID int64) ([]ConversationListing, error) {
	rows, err := db.Query(`
		SELECT c.id, c.user_a_id, c.user_b_id, c.created_at, c.updated_at,
			u.id, u.first_name, u.last_name,
			lm.id, lm.sender_id, lm.content, lm.is_read, lm.created_at,
			(SELECT COUNT(*) FROM messages m
			 WHERE m.conversation_id = c.id AND m.is_read = 0 AND m.sender_id != ?) AS unread
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.user_a_id = ? THEN c.user_b_id ELSE c.user_a_id END
		LEFT JOIN messages lm ON lm.id = (
			SELECT m.id FROM messages m WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC, m.id DESC LIMIT 1)
		WHERE c.user_a_id = ? OR c.user_b_id = ?
		ORDER BY c.updated_at DESC, c.id DESC`,
		userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var listings []ConversationListing
	for rows.Next() {
		var l ConversationListing
		var lmID, lmSender, lmCreated sql.NullInt64
		var lmContent sql.NullString
		var lmRead sql.NullBool
		if err := rows.Scan(
			&l.Conversation.ID, &l.Conversation.UserAID, &l.Conversation.UserBID,
			&l.Conversation.CreatedAt, &l.Conversation.UpdatedAt,
			&l.Other.ID, &l.Other.FirstName, &l.Other.LastName,
			&lmID, &lmSender, &lmContent, &lmRead, &lmCreated,
			&l.UnreadCount,
		); err != nil {
			return nil, err
		}
		if lmID.Valid {
			l.LastMessage = &Message{
				ID:             lmID.Int64,
				ConversationID: l.Conversation.ID,
				SenderID:       lmSender.Int64,
				Content:        lmContent.String,
				IsRead:         lmRead.Bool,
				CreatedAt:      lmCreated.Int64,
			}
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
