package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/placette/messaging/internal/apierr"
)

func TestListMessagesAcceptsBothShapes(t *testing.T) {
	bodies := map[string]string{
		"bare array": `[
			{"id":1,"conversationID":7,"senderID":1,"content":"Bonjour","isRead":false,"createdAt":"2024-05-01T10:00:00Z"},
			{"id":2,"conversationID":7,"senderID":2,"content":"Salut","isRead":false,"createdAt":"2024-05-01T10:01:00Z"}
		]`,
		"status envelope": `{"status":"success","messages":[
			{"id":1,"conversationID":7,"senderID":1,"content":"Bonjour","isRead":false,"createdAt":"2024-05-01T10:00:00Z"},
			{"id":2,"conversationID":7,"senderID":2,"content":"Salut","isRead":false,"createdAt":"2024-05-01T10:01:00Z"}
		]}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/conversations/7/messages" {
					t.Errorf("path = %q", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := New(srv.URL, "tok", time.Second)
			msgs, err := c.ListMessages(context.Background(), 7)
			if err != nil {
				t.Fatal(err)
			}
			if len(msgs) != 2 {
				t.Fatalf("got %d messages, want 2", len(msgs))
			}
			if msgs[0].ID != 1 || msgs[1].ID != 2 {
				t.Errorf("order = [%d %d], want [1 2]", msgs[0].ID, msgs[1].ID)
			}
			if msgs[0].Content != "Bonjour" {
				t.Errorf("content = %q", msgs[0].Content)
			}
		})
	}
}

func TestListConversationsAcceptsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","conversations":[
			{"conversation":{"id":7,"userAID":1,"userBID":2,"createdAt":"2024-05-01T09:00:00Z","updatedAt":"2024-05-01T10:01:00Z"},
			 "otherUser":{"id":2,"firstName":"Bob","lastName":"Dupont"},
			 "lastMessage":{"id":2,"conversationID":7,"senderID":2,"content":"Salut","isRead":false,"createdAt":"2024-05-01T10:01:00Z"},
			 "unreadCount":1}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	listings, err := c.ListConversations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if listings[0].OtherUser.FirstName != "Bob" {
		t.Errorf("other = %q", listings[0].OtherUser.FirstName)
	}
	if listings[0].UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", listings[0].UnreadCount)
	}
}

func TestBearerTokenIsSent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token", time.Second)
	if _, err := c.ListConversations(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want Bearer secret-token", got)
	}
}

func TestErrorCodeFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":"error","code":"FORBIDDEN","message":"not a participant"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	_, err := c.ListMessages(context.Background(), 7)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierr.IsCode(err, apierr.Forbidden) {
		t.Errorf("code = %v, want Forbidden", apierr.CodeOf(err))
	}
}

func TestErrorCodeFromStatusFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`no such page`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	_, err := c.StartConversation(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierr.IsCode(err, apierr.NotFound) {
		t.Errorf("code = %v, want NotFound", apierr.CodeOf(err))
	}
}

func TestNetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, "tok", time.Second)
	_, err := c.ListConversations(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !apierr.IsCode(err, apierr.Transient) {
		t.Errorf("code = %v, want Transient", apierr.CodeOf(err))
	}
}

func TestSendMessageReturnsCanonicalCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":101,"conversationID":7,"senderID":1,"content":"Bonjour","isRead":false,"createdAt":"2024-05-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", time.Second)
	msg, err := c.SendMessage(context.Background(), 7, "Bonjour")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID != 101 || msg.ConversationID != 7 {
		t.Errorf("msg = %+v, want id 101 in conversation 7", msg)
	}
}
