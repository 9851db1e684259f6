package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/store"
	"github.com/placette/messaging/internal/wire"
	"go.uber.org/zap"
)

type handlers struct {
	db     *store.DB
	logger *zap.Logger
}

const localsUserKey = "placette_user"

// RequireAuth resolves the bearer credential to a user and stashes it in the
// request context. Credential issuance/refresh is the auth collaborator's
// problem; here a token either resolves or the request is unauthorized.
func (h *handlers) RequireAuth(c *fiber.Ctx) error {
	auth := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return writeError(c, apierr.Unauthorized, "missing bearer token")
	}
	user, err := h.db.UserByToken(token)
	if err != nil {
		h.logger.Error("token lookup failed", zap.Error(err))
		return writeError(c, apierr.Internal, "token lookup failed")
	}
	if user == nil {
		return writeError(c, apierr.Unauthorized, "unknown or expired token")
	}
	c.Locals(localsUserKey, user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *store.User {
	return c.Locals(localsUserKey).(*store.User)
}

// Healthz is a liveness probe.
func (h *handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Register creates a user and issues an opaque API token. This stands in for
// the out-of-scope authentication collaborator so the system runs end to end.
func (h *handlers) Register(c *fiber.Ctx) error {
	var req wire.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apierr.InvalidArgument, "malformed body")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" {
		return writeError(c, apierr.InvalidArgument, "firstName is required")
	}

	token := uuid.NewString()
	user, err := h.db.CreateUser(req.FirstName, req.LastName, token)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		return writeError(c, apierr.Internal, "create user failed")
	}

	h.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(wire.RegisterResponse{
		User:  userToWire(user),
		Token: token,
	})
}

// ListConversations returns the caller's directory, newest activity first.
func (h *handlers) ListConversations(c *fiber.Ctx) error {
	user := currentUser(c)

	listings, err := h.db.ListConversations(user.ID)
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err), zap.Int64("user_id", user.ID))
		return writeError(c, apierr.Internal, "list conversations failed")
	}

	out := make([]wire.ConversationListing, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingToWire(&l))
	}
	return c.JSON(wire.ConversationsResponse{Status: "success", Conversations: out})
}

// StartConversation finds or creates the conversation with the target user.
func (h *handlers) StartConversation(c *fiber.Ctx) error {
	user := currentUser(c)

	targetID, err := c.ParamsInt("targetUserID")
	if err != nil || targetID <= 0 {
		return writeError(c, apierr.InvalidArgument, "invalid target user id")
	}
	if int64(targetID) == user.ID {
		return writeError(c, apierr.InvalidArgument, "cannot start a conversation with yourself")
	}

	target, err := h.db.GetUser(int64(targetID))
	if err != nil {
		h.logger.Error("target lookup failed", zap.Error(err))
		return writeError(c, apierr.Internal, "target lookup failed")
	}
	if target == nil {
		return writeError(c, apierr.NotFound, "user %d not found", targetID)
	}

	conv, err := h.db.FindOrCreateConversation(user.ID, target.ID)
	if err != nil {
		h.logger.Error("find-or-create conversation failed", zap.Error(err))
		return writeError(c, apierr.Internal, "start conversation failed")
	}
	return c.JSON(conversationToWire(conv))
}

// ListMessages returns a conversation's full thread, oldest first.
// Supports ?before=<messageID>&limit=<n> keyset pagination.
func (h *handlers) ListMessages(c *fiber.Ctx) error {
	user := currentUser(c)
	conv, err := h.loadParticipantConversation(c, user)
	if err != nil {
		return err
	}

	before := int64(c.QueryInt("before"))
	limit := c.QueryInt("limit")

	msgs, err := h.db.ListMessages(conv.ID, before, limit)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		return writeError(c, apierr.Internal, "list messages failed")
	}

	out := make([]wire.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToWire(&m))
	}
	return c.JSON(wire.MessagesResponse{Status: "success", Messages: out})
}

// SendMessage appends a message to the conversation.
func (h *handlers) SendMessage(c *fiber.Ctx) error {
	user := currentUser(c)
	conv, err := h.loadParticipantConversation(c, user)
	if err != nil {
		return err
	}

	var req wire.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, apierr.InvalidArgument, "malformed body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return writeError(c, apierr.InvalidArgument, "content must not be empty")
	}

	msg, err := h.db.InsertMessage(conv.ID, user.ID, content)
	if err != nil {
		h.logger.Error("insert message failed", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		return writeError(c, apierr.Internal, "send message failed")
	}

	return c.Status(fiber.StatusCreated).JSON(messageToWire(msg))
}

// MarkAsRead flips unread messages authored by the other participant.
// Idempotent: a second call changes nothing.
func (h *handlers) MarkAsRead(c *fiber.Ctx) error {
	user := currentUser(c)
	conv, err := h.loadParticipantConversation(c, user)
	if err != nil {
		return err
	}

	updated, err := h.db.MarkConversationRead(conv.ID, user.ID)
	if err != nil {
		h.logger.Error("mark read failed", zap.Error(err), zap.Int64("conversation_id", conv.ID))
		return writeError(c, apierr.Internal, "mark read failed")
	}
	return c.JSON(wire.MarkReadResponse{Status: "success", Updated: updated})
}

// loadParticipantConversation resolves :id and enforces that the caller is a
// participant. On failure it has already written the error response.
func (h *handlers) loadParticipantConversation(c *fiber.Ctx, user *store.User) (*store.Conversation, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, writeError(c, apierr.InvalidArgument, "invalid conversation id")
	}
	conv, err := h.db.GetConversation(int64(id))
	if err != nil {
		h.logger.Error("conversation lookup failed", zap.Error(err))
		return nil, writeError(c, apierr.Internal, "conversation lookup failed")
	}
	if conv == nil {
		return nil, writeError(c, apierr.NotFound, "conversation %d not found", id)
	}
	if !conv.HasParticipant(user.ID) {
		return nil, writeError(c, apierr.Forbidden, "not a participant of conversation %d", id)
	}
	return conv, nil
}

func userToWire(u *store.User) wire.User {
	return wire.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

func conversationToWire(c *store.Conversation) wire.Conversation {
	return wire.Conversation{
		ID:        c.ID,
		UserAID:   c.UserAID,
		UserBID:   c.UserBID,
		CreatedAt: time.UnixMilli(c.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(c.UpdatedAt).UTC(),
	}
}

func listingToWire(l *store.ConversationListing) wire.ConversationListing {
	out := wire.ConversationListing{
		Conversation: conversationToWire(&l.Conversation),
		OtherUser:    userToWire(&l.Other),
		UnreadCount:  l.UnreadCount,
	}
	if l.LastMessage != nil {
		last := messageToWire(l.LastMessage)
		out.LastMessage = &last
	}
	return out
}

func messageToWire(m *store.Message) wire.Message {
	return wire.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      time.UnixMilli(m.CreatedAt).UTC(),
	}
}
