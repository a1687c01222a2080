package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"support-desk-be/internal/entity"
)

func newTestMessage(conversationID uuid.UUID, content string) *entity.Message {
	return &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationID,
		SenderId:       uuid.New(),
		SenderRole:     "candidate",
		Content:        content,
	}
}

func TestAppendWithoutEntry(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()

	if err := b.Append(convID, newTestMessage(convID, "hello")); err != ErrNoEntry {
		t.Errorf("Append = %v, want ErrNoEntry", err)
	}
}

func TestEnsureEntryIdempotent(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()

	b.EnsureEntry(convID)
	if err := b.Append(convID, newTestMessage(convID, "first")); err != nil {
		t.Fatalf("Append = %v, want nil", err)
	}

	// A second join must not reset the sequence.
	b.EnsureEntry(convID)
	if got := len(b.Peek(convID)); got != 1 {
		t.Errorf("Peek len = %d, want 1", got)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)

	for i := 0; i < 10; i++ {
		if err := b.Append(convID, newTestMessage(convID, fmt.Sprintf("msg-%d", i))); err != nil {
			t.Fatalf("Append = %v, want nil", err)
		}
	}

	messages, ok := b.Drain(convID)
	if !ok {
		t.Fatal("Drain ok = false, want true")
	}
	for i, msg := range messages {
		if want := fmt.Sprintf("msg-%d", i); msg.Content != want {
			t.Errorf("messages[%d].Content = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestDrainRemovesEntry(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)
	b.Append(convID, newTestMessage(convID, "hello"))

	if _, ok := b.Drain(convID); !ok {
		t.Fatal("first Drain ok = false, want true")
	}

	// Second drain sees nothing: the entry is gone.
	if _, ok := b.Drain(convID); ok {
		t.Error("second Drain ok = true, want false")
	}

	// And a late send now fails instead of landing nowhere.
	if err := b.Append(convID, newTestMessage(convID, "late")); err != ErrNoEntry {
		t.Errorf("Append after Drain = %v, want ErrNoEntry", err)
	}
}

func TestRestoreAfterFailedFlush(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)
	b.Append(convID, newTestMessage(convID, "one"))
	b.Append(convID, newTestMessage(convID, "two"))

	drained, _ := b.Drain(convID)
	b.Restore(convID, drained)

	messages := b.Peek(convID)
	if len(messages) != 2 {
		t.Fatalf("Peek len = %d, want 2", len(messages))
	}
	if messages[0].Content != "one" || messages[1].Content != "two" {
		t.Errorf("order after restore = [%q, %q], want [one, two]", messages[0].Content, messages[1].Content)
	}
}

func TestRestoreKeepsRacingAppendsOrdered(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)
	b.Append(convID, newTestMessage(convID, "early"))

	drained, _ := b.Drain(convID)

	// A send that re-enters between drain and restore. EnsureEntry on a
	// fresh join recreates the entry; the restored prefix must still come
	// first.
	b.EnsureEntry(convID)
	b.Append(convID, newTestMessage(convID, "racer"))

	b.Restore(convID, drained)

	messages := b.Peek(convID)
	if len(messages) != 2 {
		t.Fatalf("Peek len = %d, want 2", len(messages))
	}
	if messages[0].Content != "early" || messages[1].Content != "racer" {
		t.Errorf("order = [%q, %q], want [early, racer]", messages[0].Content, messages[1].Content)
	}
}

func TestPeekReturnsCopy(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)
	b.Append(convID, newTestMessage(convID, "hello"))

	snapshot := b.Peek(convID)
	snapshot[0] = newTestMessage(convID, "mutated")

	if got := b.Peek(convID)[0].Content; got != "hello" {
		t.Errorf("buffer content = %q, want %q", got, "hello")
	}
}

func TestConcurrentAppends(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				b.Append(convID, newTestMessage(convID, fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}
	wg.Wait()

	messages, ok := b.Drain(convID)
	if !ok {
		t.Fatal("Drain ok = false, want true")
	}
	if len(messages) != writers*perWriter {
		t.Errorf("drained %d messages, want %d", len(messages), writers*perWriter)
	}
}

func TestConcurrentDrainExactlyOne(t *testing.T) {
	b := NewMessageBuffer()
	convID := uuid.New()
	b.EnsureEntry(convID)
	b.Append(convID, newTestMessage(convID, "hello"))

	const attempts = 8
	results := make(chan bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := b.Drain(convID)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}
