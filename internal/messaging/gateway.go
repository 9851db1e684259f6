package messaging

import (
	"context"

	"github.com/placette/messaging/internal/wire"
)

// Gateway is the backend boundary the messaging core talks through.
// internal/client implements it over REST; tests substitute fakes.
type Gateway interface {
	ListConversations(ctx context.Context) ([]wire.ConversationListing, error)
	StartConversation(ctx context.Context, targetUserID int64) (*wire.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64) ([]wire.Message, error)
	SendMessage(ctx context.Context, conversationID int64, content string) (*wire.Message, error)
	MarkConversationRead(ctx context.Context, conversationID int64) error
}

// Session is the explicit authentication context for messaging operations:
// who the current user is. The credential itself lives in the gateway.
type Session struct {
	UserID int64
}
