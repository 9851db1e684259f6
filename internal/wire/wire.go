// Package wire defines the JSON shapes exchanged over the REST API.
// Timestamps marshal as ISO-8601 via time.Time.
package wire

import "time"

// User is the participant summary embedded in directory listings.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Conversation is the canonical conversation shape.
type Conversation struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"userAID"`
	UserBID   int64     `json:"userBID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is the canonical message shape.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationID"`
	SenderID       int64     `json:"senderID"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationListing is one directory row.
type ConversationListing struct {
	Conversation Conversation `json:"conversation"`
	OtherUser    User         `json:"otherUser"`
	LastMessage  *Message     `json:"lastMessage,omitempty"`
	UnreadCount  int          `json:"unreadCount"`
}

// ConversationsResponse is the wrapped GET /conversations body. The legacy
// backend wrapped list responses in a status envelope while returning single
// entities bare; clients must accept both (see internal/client).
type ConversationsResponse struct {
	Status        string                `json:"status"`
	Conversations []ConversationListing `json:"conversations"`
}

// MessagesResponse is the wrapped GET /conversations/{id}/messages body.
type MessagesResponse struct {
	Status   string    `json:"status"`
	Messages []Message `json:"messages"`
}

// SendMessageRequest is the POST /conversations/{id}/messages body.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MarkReadResponse reports how many messages a mark-as-read call flipped.
type MarkReadResponse struct {
	Status  string `json:"status"`
	Updated int64  `json:"updated"`
}

// RegisterRequest is the POST /users body (auth-collaborator stub).
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterResponse returns the new user and its opaque bearer token.
type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
