package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateOutgoing(t *testing.T) {
	cases := map[string]struct {
		receiverID string
		content    string
		expected   error
	}{
		"valid":               {"user-2", "hola", nil},
		"missing receiver":    {"", "hola", ErrMissingReceiver},
		"whitespace receiver": {"   ", "hola", ErrMissingReceiver},
		"empty content":       {"user-2", "", ErrEmptyContent},
		"whitespace content":  {"user-2", "   \t  ", ErrEmptyContent},
		"too long":            {"user-2", strings.Repeat("a", MaxContentLength+1), ErrContentTooLong},
		"exactly max":         {"user-2", strings.Repeat("a", MaxContentLength), nil},
	}

	for name, tc := range cases {
		err := ValidateOutgoing(tc.receiverID, tc.content)
		if !errors.Is(err, tc.expected) {
			t.Fatalf("%s: expected %v got %v", name, tc.expected, err)
		}
	}
}

func TestMessageParticipants(t *testing.T) {
	msg := &Message{SenderID: "user-1", ReceiverID: "user-2"}
	participants := msg.Participants()
	if len(participants) != 2 || participants[0] != "user-1" || participants[1] != "user-2" {
		t.Fatalf("unexpected participants: %v", participants)
	}

	self := &Message{SenderID: "user-1", ReceiverID: "user-1"}
	if got := self.Participants(); len(got) != 1 {
		t.Fatalf("expected self conversation deduplicated, got %v", got)
	}

	if !msg.IsParticipant("user-2") {
		t.Fatalf("expected receiver to be a participant")
	}
	if msg.IsParticipant("user-3") {
		t.Fatalf("expected stranger to be rejected")
	}
	if !msg.IsSender("user-1") || msg.IsSender("user-2") {
		t.Fatalf("unexpected sender resolution")
	}
}

func TestMessageReactions(t *testing.T) {
	msg := &Message{ID: "m1", SenderID: "user-1", ReceiverID: "user-2"}

	msg.AddReaction("🔥", "user-2")
	msg.AddReaction("🔥", "user-2")
	msg.AddReaction("🔥", "user-1")
	if got := msg.Reactions["🔥"]; len(got) != 2 {
		t.Fatalf("expected duplicate reaction ignored, got %v", got)
	}

	msg.RemoveReaction("🔥", "user-2")
	if got := msg.Reactions["🔥"]; len(got) != 1 || got[0] != "user-1" {
		t.Fatalf("expected only user-1 left, got %v", got)
	}

	msg.RemoveReaction("🔥", "user-1")
	if _, ok := msg.Reactions["🔥"]; ok {
		t.Fatalf("expected emoji entry removed once empty")
	}

	// removing something that never existed must be a no-op
	msg.RemoveReaction("👍", "user-1")
	msg.RemoveReaction("", "user-1")
	msg.AddReaction("", "user-1")
	if len(msg.Reactions) != 0 {
		t.Fatalf("expected no reactions, got %v", msg.Reactions)
	}
}

func TestConversationQueryNormalize(t *testing.T) {
	cases := map[string]struct {
		query          ConversationQuery
		expectedPage   int
		expectedLimit  int
		expectedOffset int
	}{
		"defaults":    {ConversationQuery{}, 1, 50, 0},
		"negative":    {ConversationQuery{Page: -3, Limit: -1}, 1, 50, 0},
		"second page": {ConversationQuery{Page: 2, Limit: 25}, 2, 25, 25},
		"capped":      {ConversationQuery{Page: 1, Limit: 9999}, 1, 200, 0},
	}

	for name, tc := range cases {
		normalized := tc.query.Normalize()
		if normalized.Page != tc.expectedPage || normalized.Limit != tc.expectedLimit {
			t.Fatalf("%s: expected page=%d limit=%d got page=%d limit=%d", name, tc.expectedPage, tc.expectedLimit, normalized.Page, normalized.Limit)
		}
		if offset := tc.query.Offset(); offset != tc.expectedOffset {
			t.Fatalf("%s: expected offset %d got %d", name, tc.expectedOffset, offset)
		}
	}
}
