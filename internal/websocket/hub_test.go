package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"support-desk-be/internal/constant"
	"support-desk-be/internal/dto"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error {
	return nil
}

func newTestClient(hub *Hub) *Client {
	return newClient(hub, nil, uuid.New(), "candidate")
}

func TestSubscribeIdempotent(t *testing.T) {
	hub := NewHub(nopLogger{})
	convID := uuid.New()
	client := newTestClient(hub)

	hub.Subscribe(convID, client)
	hub.Subscribe(convID, client)

	if got := hub.RoomSize(convID); got != 1 {
		t.Errorf("RoomSize = %d, want 1", got)
	}
}

func TestUnsubscribeRemovesEmptyRoom(t *testing.T) {
	hub := NewHub(nopLogger{})
	convID := uuid.New()
	a := newTestClient(hub)
	b := newTestClient(hub)

	hub.Subscribe(convID, a)
	hub.Subscribe(convID, b)
	hub.Unsubscribe(convID, a)

	if got := hub.RoomSize(convID); got != 1 {
		t.Fatalf("RoomSize = %d, want 1", got)
	}

	hub.Unsubscribe(convID, b)
	hub.mu.RLock()
	_, exists := hub.rooms[convID]
	hub.mu.RUnlock()
	if exists {
		t.Error("room entry still present after last member left")
	}
}

func TestBroadcastExcludesSender(t *testing.T) {
	hub := NewHub(nopLogger{})
	convID := uuid.New()
	sender := newTestClient(hub)
	receiver := newTestClient(hub)

	hub.Subscribe(convID, sender)
	hub.Subscribe(convID, receiver)

	payload := []byte(`{"event":"NEW_MESSAGE"}`)
	hub.Broadcast(convID, payload, sender.SessionID)

	select {
	case got := <-receiver.Send:
		if string(got) != string(payload) {
			t.Errorf("receiver got %q, want %q", got, payload)
		}
	default:
		t.Fatal("receiver got no frame")
	}

	select {
	case <-sender.Send:
		t.Error("sender received its own frame")
	default:
	}
}

func TestBroadcastSkipsFullBuffer(t *testing.T) {
	hub := NewHub(nopLogger{})
	convID := uuid.New()

	slow := newTestClient(hub)
	slow.Send = make(chan []byte, 1)
	slow.Send <- []byte("stuck")

	healthy := newTestClient(hub)

	hub.Subscribe(convID, slow)
	hub.Subscribe(convID, healthy)

	// Must not block even though the slow client cannot take the frame.
	done := make(chan struct{})
	go func() {
		hub.Broadcast(convID, []byte("frame"), uuid.Nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full client buffer")
	}

	select {
	case got := <-healthy.Send:
		if string(got) != "frame" {
			t.Errorf("healthy got %q, want %q", got, "frame")
		}
	default:
		t.Error("healthy client got no frame")
	}
}

func TestNotifyClosedBroadcastsAndTearsDown(t *testing.T) {
	hub := NewHub(nopLogger{})
	convID := uuid.New()
	closer := newTestClient(hub)
	other := newTestClient(hub)

	hub.Subscribe(convID, closer)
	hub.Subscribe(convID, other)

	hub.NotifyClosed(convID, closer.SessionID)

	select {
	case raw := <-other.Send:
		var envelope dto.Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if envelope.Event != constant.EventConversationClosed {
			t.Errorf("event = %q, want %q", envelope.Event, constant.EventConversationClosed)
		}
		var data dto.ConversationClosedData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			t.Fatalf("bad data: %v", err)
		}
		if data.ConversationId != convID {
			t.Errorf("conversationId = %s, want %s", data.ConversationId, convID)
		}
	default:
		t.Fatal("other member got no CONVERSATION_CLOSED frame")
	}

	select {
	case <-closer.Send:
		t.Error("closer received the broadcast it was excluded from")
	default:
	}

	if got := hub.RoomSize(convID); got != 0 {
		t.Errorf("RoomSize after teardown = %d, want 0", got)
	}
	if len(closer.rooms) != 0 || len(other.rooms) != 0 {
		t.Error("client room sets not cleared after teardown")
	}
}

func TestUnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub(nopLogger{})
	go hub.Run()

	convA := uuid.New()
	convB := uuid.New()
	client := newTestClient(hub)

	hub.Subscribe(convA, client)
	hub.Subscribe(convB, client)

	hub.unregister <- client

	deadline := time.After(time.Second)
	for hub.RoomSize(convA) != 0 || hub.RoomSize(convB) != 0 {
		select {
		case <-deadline:
			t.Fatal("rooms not emptied after unregister")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, open := <-client.Send; open {
		t.Error("Send channel still open after unregister")
	}
}
