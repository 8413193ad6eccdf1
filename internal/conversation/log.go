package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medmentor/backend/internal/model/chat"
)

// MessageLog is an ordered, append-only sequence of chat turns. Entries are
// only ever mutated through Replace (placeholder conversion) or dropped
// through RemoveWhere (placeholder resolution); ids and senders are stable
// once assigned.
type MessageLog struct {
	mu   sync.Mutex
	msgs []chat.Message
}

// NewMessageLog returns an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{msgs: make([]chat.Message, 0, 16)}
}

// Append adds a message to the end of the log and returns its assigned id.
func (l *MessageLog) Append(msg chat.Message) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg.ID = uuid.NewString()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	l.msgs = append(l.msgs, msg)
	return msg.ID
}

// Replace overwrites the content of the message with the given id. A
// non-empty sender also replaces the message's sender, which converts a
// processing placeholder into a bot-authored result or error. Returns false
// without mutating anything when no such id exists.
func (l *MessageLog) Replace(id, content, sender string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.msgs {
		if l.msgs[i].ID != id {
			continue
		}
		l.msgs[i].Content = content
		if sender != "" {
			l.msgs[i].Sender = sender
		}
		return true
	}
	return false
}

// RemoveWhere drops every message matching the predicate and returns how
// many were removed. Zero matches is a no-op.
func (l *MessageLog) RemoveWhere(pred func(chat.Message) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.msgs[:0]
	removed := 0
	for _, msg := range l.msgs {
		if pred(msg) {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	l.msgs = kept
	return removed
}

// Messages returns a copy of the log in display order.
func (l *MessageLog) Messages() []chat.Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make([]chat.Message, len(l.msgs))
	copy(copied, l.msgs)
	return copied
}

// Find returns the message with the given id.
func (l *MessageLog) Find(id string) (chat.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range l.msgs {
		if msg.ID == id {
			return msg, true
		}
	}
	return chat.Message{}, false
}

// Len reports the number of messages in the log.
func (l *MessageLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}
