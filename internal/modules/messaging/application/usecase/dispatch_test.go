package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"chambaYaWs/internal/modules/messaging/domain"
)

type fakeNotifier struct {
	pushes     map[string][][]byte
	broadcasts [][]byte
	online     map[string]int
}

func newFakeNotifier(online map[string]int) *fakeNotifier {
	if online == nil {
		online = map[string]int{}
	}
	return &fakeNotifier{pushes: make(map[string][][]byte), online: online}
}

func (f *fakeNotifier) Push(userID string, data []byte) int {
	f.pushes[userID] = append(f.pushes[userID], data)
	return f.online[userID]
}

func (f *fakeNotifier) PushAll(data []byte) int {
	f.broadcasts = append(f.broadcasts, data)
	total := 0
	for _, n := range f.online {
		total += n
	}
	return total
}

func TestDispatchNewMessageTargetsReceiverOnly(t *testing.T) {
	notifier := newFakeNotifier(map[string]int{"user-b": 2})
	uc := NewDispatchUseCase(notifier)

	msg := &domain.Message{ID: "m1", SenderID: "user-a", ReceiverID: "user-b", Content: "hola"}
	uc.Execute(context.Background(), domain.NewMessageEvent(msg))

	if len(notifier.pushes["user-b"]) != 1 {
		t.Fatalf("expected one push to receiver, got %d", len(notifier.pushes["user-b"]))
	}
	if len(notifier.pushes["user-a"]) != 0 {
		t.Fatalf("sender must not receive new_message, got %d pushes", len(notifier.pushes["user-a"]))
	}
	if len(notifier.broadcasts) != 0 {
		t.Fatalf("resolved event must not broadcast")
	}

	var frame map[string]any
	if err := json.Unmarshal(notifier.pushes["user-b"][0], &frame); err != nil {
		t.Fatalf("pushed frame is not JSON: %v", err)
	}
	if frame["type"] != domain.FrameNewMessage {
		t.Fatalf("expected type %q got %v", domain.FrameNewMessage, frame["type"])
	}
}

func TestDispatchLifecycleEventTargetsBothParticipants(t *testing.T) {
	notifier := newFakeNotifier(map[string]int{"user-a": 1, "user-b": 1})
	uc := NewDispatchUseCase(notifier)

	msg := &domain.Message{ID: "m1", SenderID: "user-a", ReceiverID: "user-b", Edited: true}
	uc.Execute(context.Background(), domain.EditEvent(msg))

	if len(notifier.pushes["user-a"]) != 1 || len(notifier.pushes["user-b"]) != 1 {
		t.Fatalf("expected one push per participant, got %v", notifier.pushes)
	}
}

func TestDispatchUnresolvedEventBroadcasts(t *testing.T) {
	notifier := newFakeNotifier(map[string]int{"user-x": 1})
	uc := NewDispatchUseCase(notifier)

	partial := &domain.Message{ID: "m9"}
	uc.Execute(context.Background(), domain.ReactionAddedEvent(partial, "user-z", "🔥"))

	if len(notifier.broadcasts) != 1 {
		t.Fatalf("unresolved participants must broadcast, got %d broadcasts", len(notifier.broadcasts))
	}
	if len(notifier.pushes) != 0 {
		t.Fatalf("broadcast fallback must not push individually, got %v", notifier.pushes)
	}
}

func TestDispatchOfflineReceiverIsSilent(t *testing.T) {
	notifier := newFakeNotifier(nil)
	uc := NewDispatchUseCase(notifier)

	msg := &domain.Message{ID: "m1", SenderID: "user-a", ReceiverID: "ghost"}
	// Must not panic nor broadcast; zero deliveries is a normal outcome.
	uc.Execute(context.Background(), domain.NewMessageEvent(msg))

	if len(notifier.broadcasts) != 0 {
		t.Fatalf("offline receiver must not trigger broadcast")
	}
}

func TestDispatchNilEventIsIgnored(t *testing.T) {
	notifier := newFakeNotifier(nil)
	uc := NewDispatchUseCase(notifier)
	uc.Execute(context.Background(), nil)
	uc.Execute(context.Background(), &domain.Event{Type: domain.FrameNewMessage})

	if len(notifier.pushes) != 0 || len(notifier.broadcasts) != 0 {
		t.Fatalf("events without frames must not be dispatched")
	}
}
