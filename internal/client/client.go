// Package client is the REST gateway used by the messaging core. It carries
// the opaque bearer credential, bounds every request with a timeout and
// normalizes the backend's response shapes into the canonical wire structs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/placette/messaging/internal/apierr"
	"github.com/placette/messaging/internal/wire"
)

// Client talks to the placette messaging backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a gateway. token may be empty for unauthenticated calls
// (registration); timeout <= 0 falls back to 10s.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of the client using the given credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Register creates a user on the backend and returns it with its token.
func (c *Client) Register(ctx context.Context, firstName, lastName string) (*wire.RegisterResponse, error) {
	var resp wire.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/users", wire.RegisterRequest{
		FirstName: firstName,
		LastName:  lastName,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListConversations fetches the caller's conversation directory.
func (c *Client) ListConversations(ctx context.Context) ([]wire.ConversationListing, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/conversations", nil)
	if err != nil {
		return nil, err
	}
	return normalizeList[wire.ConversationListing](raw, "conversations")
}

// StartConversation asks the backend to find or create the conversation with
// the target user.
func (c *Client) StartConversation(ctx context.Context, targetUserID int64) (*wire.Conversation, error) {
	var conv wire.Conversation
	path := fmt.Sprintf("/conversations/start/%d", targetUserID)
	if err := c.do(ctx, http.MethodPost, path, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListMessages fetches a conversation's thread, oldest first.
func (c *Client) ListMessages(ctx context.Context, conversationID int64) ([]wire.Message, error) {
	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	raw, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return normalizeList[wire.Message](raw, "messages")
}

// SendMessage submits a new message and returns the canonical server copy.
func (c *Client) SendMessage(ctx context.Context, conversationID int64, content string) (*wire.Message, error) {
	var msg wire.Message
	path := fmt.Sprintf("/conversations/%d/messages", conversationID)
	if err := c.do(ctx, http.MethodPost, path, wire.SendMessageRequest{Content: content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkConversationRead flips the other participant's unread messages.
func (c *Client) MarkConversationRead(ctx context.Context, conversationID int64) error {
	path := fmt.Sprintf("/conversations/%d/mark-as-read", conversationID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apierr.Wrap(apierr.Internal, err, "decode %s %s response", method, path)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, apierr.Wrap(apierr.Internal, err, "encode request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apierr.Wrap(apierr.Transient, err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Wrap(apierr.Transient, err, "read %s %s response", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, raw)
	}
	return raw, nil
}

// errorFromResponse prefers the error code in the body and falls back to the
// HTTP status when the body is not the expected envelope.
func errorFromResponse(status int, raw []byte) error {
	var body wire.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		return apierr.New(apierr.Code(body.Code), "%s", body.Message)
	}
	return apierr.New(codeForStatus(status), "backend returned HTTP %d", status)
}

func codeForStatus(status int) apierr.Code {
	switch status {
	case http.StatusUnauthorized:
		return apierr.Unauthorized
	case http.StatusForbidden:
		return apierr.Forbidden
	case http.StatusNotFound:
		return apierr.NotFound
	case http.StatusBadRequest:
		return apierr.InvalidArgument
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return apierr.Transient
	default:
		return apierr.Internal
	}
}

// normalizeList accepts both shapes the two legacy clients saw from the
// backend: a bare JSON array, or an envelope like {"status":..., "<key>":[...]}.
func normalizeList[T any](raw []byte, key string) ([]T, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, apierr.Wrap(apierr.Internal, err, "decode %s array", key)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "decode %s envelope", key)
	}
	inner, ok := envelope[key]
	if !ok {
		return nil, apierr.New(apierr.Internal, "response envelope has no %q field", key)
	}
	var items []T
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, apierr.Wrap(apierr.Internal, err, "decode %s list", key)
	}
	return items, nil
}
