package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

func TestRESTStoreSendMessage_DecodesAndAuthorizes(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.Message{
			ID:         "msg-1",
			SenderID:   "user-a",
			ReceiverID: "user-b",
			Content:    "hola",
		})
	}))
	defer server.Close()

	store := NewRESTMessageStore(server.URL, "svc-token", 0, server.Client())
	msg, err := store.SendMessage(context.Background(), "user-a", "user-b", "hola", "")
	if err != nil {
		t.Fatalf("send message failed: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/internal/messages" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer svc-token" {
		t.Fatalf("expected service token auth header, got %q", gotAuth)
	}
	if gotBody["senderId"] != "user-a" || gotBody["receiverId"] != "user-b" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if _, ok := gotBody["replyTo"]; ok {
		t.Fatalf("empty replyTo must be omitted, got %v", gotBody)
	}
	if msg.ID != "msg-1" || msg.ReceiverID != "user-b" {
		t.Fatalf("unexpected decoded message: %+v", msg)
	}
}

func TestRESTStoreStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{name: "not found", status: http.StatusNotFound, want: port.ErrMessageNotFound},
		{name: "forbidden", status: http.StatusForbidden, want: port.ErrNotParticipant},
		{name: "server error", status: http.StatusInternalServerError, want: port.ErrStoreUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, want: port.ErrStoreUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer server.Close()

			store := NewRESTMessageStore(server.URL, "", 0, server.Client())
			if _, err := store.GetMessage(context.Background(), "msg-1"); !errors.Is(err, tc.want) {
				t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
			}
		})
	}
}

func TestRESTStoreBadRequest_IsNotASentinel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "content too long", http.StatusBadRequest)
	}))
	defer server.Close()

	store := NewRESTMessageStore(server.URL, "", 0, server.Client())
	_, err := store.EditMessage(context.Background(), "msg-1", "user-a", "x")
	if err == nil {
		t.Fatal("expected an error for a 400 response")
	}
	if errors.Is(err, port.ErrStoreUnavailable) || errors.Is(err, port.ErrMessageNotFound) || errors.Is(err, port.ErrNotParticipant) {
		t.Fatalf("a 400 must not map to a store sentinel, got %v", err)
	}
}

func TestRESTStoreNetworkError_MapsToUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := NewRESTMessageStore(server.URL, "", 0, nil)
	if _, err := store.GetMessage(context.Background(), "msg-1"); !errors.Is(err, port.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable on connection failure, got %v", err)
	}
}

func TestRESTStoreListConversation_SendsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("userA") != "user-a" || q.Get("userB") != "user-b" {
			t.Errorf("unexpected participants: %v", q)
		}
		if q.Get("page") != "2" || q.Get("limit") != "10" {
			t.Errorf("unexpected pagination: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]domain.Message{{ID: "msg-1"}, {ID: "msg-2"}})
	}))
	defer server.Close()

	store := NewRESTMessageStore(server.URL, "", 0, server.Client())
	messages, err := store.ListConversation(context.Background(), "user-a", "user-b", domain.ConversationQuery{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("list conversation failed: %v", err)
	}
	if len(messages) != 2 || messages[0].ID != "msg-1" {
		t.Fatalf("unexpected conversation page: %+v", messages)
	}
}

func TestRESTStoreMarkRead_DecodesCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/messages/read" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"updated": 3})
	}))
	defer server.Close()

	store := NewRESTMessageStore(server.URL, "", 0, server.Client())
	updated, err := store.MarkRead(context.Background(), "user-a", "user-b")
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if updated != 3 {
		t.Fatalf("expected 3 updated rows, got %d", updated)
	}
}
