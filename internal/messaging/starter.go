package messaging

import (
	"context"

	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/wire"
)

// Starter begins (or resumes) a conversation with another user. The backend
// find-or-creates, so starting twice in either direction lands on the same
// conversation.
type Starter struct {
	gw      Gateway
	session Session
}

// NewStarter creates a starter for the given session.
func NewStarter(gw Gateway, session Session) *Starter {
	return &Starter{gw: gw, session: session}
}

// Start returns the conversation with targetUserID, creating it on first
// contact. Self-conversations are rejected before touching the network.
func (s *Starter) Start(ctx context.Context, targetUserID int64) (*wire.Conversation, error) {
	if targetUserID <= 0 {
		return nil, apierr.New(apierr.InvalidArgument, "invalid target user id %d", targetUserID)
	}
	if targetUserID == s.session.UserID {
		return nil, apierr.New(apierr.InvalidArgument, "cannot start a conversation with yourself")
	}

	conv, err := s.gw.StartConversation(ctx, targetUserID)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeOf(err), err, "start conversation with user %d", targetUserID)
	}
	return conv, nil
}
