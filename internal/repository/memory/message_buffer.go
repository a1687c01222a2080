package memory

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"support-desk-be/internal/entity"
)

// ErrNoEntry is returned by Append when the conversation has no buffer
// entry. That happens before the first join, and again after Drain, so a
// send racing a close loses cleanly instead of resurrecting the buffer.
var ErrNoEntry = errors.New("no buffer entry for conversation")

// MessageBuffer holds the volatile, ordered message sequence of every
// non-closed conversation. Entries live from the first join until the
// conversation is drained at close. A process restart loses the buffer;
// that durability gap for non-closed conversations is accepted.
//
// A single mutex guards the map. Appends to one conversation therefore
// have exactly one linearization point, which is what gives the
// buffered == broadcast == persisted ordering guarantee.
type MessageBuffer struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]*entity.Message
}

func NewMessageBuffer() *MessageBuffer {
	return &MessageBuffer{
		entries: make(map[uuid.UUID][]*entity.Message),
	}
}

// EnsureEntry creates an empty sequence for the conversation if absent.
// Idempotent; called on every join.
func (b *MessageBuffer) EnsureEntry(conversationID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[conversationID]; !ok {
		b.entries[conversationID] = []*entity.Message{}
	}
}

// Append adds a message in arrival order. The entry must already exist.
func (b *MessageBuffer) Append(conversationID uuid.UUID, msg *entity.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	seq, ok := b.entries[conversationID]
	if !ok {
		return ErrNoEntry
	}
	b.entries[conversationID] = append(seq, msg)
	return nil
}

// Drain returns the full ordered sequence and removes the entry in one
// step. Used exactly once per conversation, under the lifecycle engine's
// per-conversation lock.
func (b *MessageBuffer) Drain(conversationID uuid.UUID) ([]*entity.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seq, ok := b.entries[conversationID]
	if !ok {
		return nil, false
	}
	delete(b.entries, conversationID)
	return seq, true
}

// Restore puts a drained sequence back after a failed flush, so the close
// can be retried without losing messages.
func (b *MessageBuffer) Restore(conversationID uuid.UUID, messages []*entity.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[conversationID] = append(messages, b.entries[conversationID]...)
}

// Peek returns a copied snapshot for read-only display.
func (b *MessageBuffer) Peek(conversationID uuid.UUID) []*entity.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	seq := b.entries[conversationID]
	out := make([]*entity.Message, len(seq))
	copy(out, seq)
	return out
}

// Len reports the number of live entries. Test helper and metrics hook.
func (b *MessageBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
