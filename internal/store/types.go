package store

// User is owned by the authentication subsystem; messaging reads it only.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	APIToken  string
	CreatedAt int64
}

// Conversation pairs two distinct users. Participants are stored normalized
// (user_a_id < user_b_id) so the unordered pair is unique by construction.
type Conversation struct {
	ID        int64
	UserAID   int64
	UserBID   int64
	CreatedAt int64
	UpdatedAt int64
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the counterpart of userID.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Message is an append-only unit of text in one conversation. Content and
// sender never change after insert; only is_read moves, and only 0 -> 1.
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	Content        string
	IsRead         bool
	CreatedAt      int64
}

// ConversationListing is a directory row: the conversation, the counterpart
// of the requesting user, the newest message and the unread badge count.
type ConversationListing struct {
	Conversation Conversation
	Other        User
	LastMessage  *Message
	UnreadCount  int
}
