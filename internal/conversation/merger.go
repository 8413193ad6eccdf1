package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/medmentor/backend/internal/model/chat"
	"github.com/medmentor/backend/internal/model/notes"
)

// PlaceholderContent is the content of the transient "request in flight"
// log entry inserted by Submit calls.
const PlaceholderContent = "Processing..."

// User-visible error messages appended when a request fails. The two cases
// stay distinguishable so the patient knows whether the server was reached.
const (
	ErrMsgUnreachable = "Error: Server not reachable."
	ErrMsgRejected    = "Error: The server could not process the request."
)

// Handle correlates a pending request with its placeholder message. It is
// the placeholder's message id.
type Handle string

// ChatBackend sends one chat message and returns the bot reply.
type ChatBackend interface {
	SendMessage(ctx context.Context, message string) (string, error)
}

// TranscriptionBackend uploads one audio payload and returns processed
// visit notes.
type TranscriptionBackend interface {
	Transcribe(ctx context.Context, audio []byte) (*notes.VisitNotes, error)
}

// Merger bridges optimistic local appends to eventual backend results.
// Every Submit inserts exactly one placeholder, and every placeholder is
// resolved, by success or failure, exactly once. Resolutions apply in
// completion order and only ever touch their own placeholder.
type Merger struct {
	log         *MessageLog
	chat        ChatBackend
	transcriber TranscriptionBackend

	mu      sync.Mutex
	pending map[Handle]struct{}
	wg      sync.WaitGroup
}

// NewMerger builds a merger over the given log and backends. Either backend
// may be nil when the corresponding feature is unused.
func NewMerger(msgLog *MessageLog, chatBackend ChatBackend, transcriber TranscriptionBackend) *Merger {
	return &Merger{
		log:         msgLog,
		chat:        chatBackend,
		transcriber: transcriber,
		pending:     make(map[Handle]struct{}),
	}
}

// Log exposes the underlying message log.
func (m *Merger) Log() *MessageLog {
	return m.log
}

// SubmitChat appends the user message and a processing placeholder, then
// issues the chat call asynchronously. Returns the pending handle.
func (m *Merger) SubmitChat(ctx context.Context, message string) Handle {
	m.log.Append(chat.Message{Sender: chat.SenderUser, Content: message})
	handle := m.insertPlaceholder()

	if m.chat == nil {
		m.fail(handle, fmt.Errorf("no chat backend configured: %w", ErrBackendRejected))
		return handle
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		reply, err := m.chat.SendMessage(ctx, message)
		if err != nil {
			m.fail(handle, err)
			return
		}
		m.resolve(handle, []chat.Message{
			{Sender: chat.SenderBot, Content: reply},
		})
	}()

	return handle
}

// SubmitRecording uploads a finalized audio payload for transcription. On
// success the placeholder is replaced by the transcript, then summary and
// action items, then suggested questions flagged as prompts, in that order.
func (m *Merger) SubmitRecording(ctx context.Context, audio []byte) Handle {
	handle := m.insertPlaceholder()

	if m.transcriber == nil {
		m.fail(handle, fmt.Errorf("no transcription backend configured: %w", ErrBackendRejected))
		return handle
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		result, err := m.transcriber.Transcribe(ctx, audio)
		if err != nil {
			m.fail(handle, err)
			return
		}
		m.resolve(handle, notesMessages(result))
	}()

	return handle
}

// SelectPrompt re-enters SubmitChat with the text of a suggested-question
// message. Returns false when the id does not name a prompt message.
func (m *Merger) SelectPrompt(ctx context.Context, id string) (Handle, bool) {
	msg, ok := m.log.Find(id)
	if !ok || !msg.IsPrompt {
		return "", false
	}
	return m.SubmitChat(ctx, msg.Content), true
}

// Wait blocks until every outstanding submission has resolved.
func (m *Merger) Wait() {
	m.wg.Wait()
}

func (m *Merger) insertPlaceholder() Handle {
	id := m.log.Append(chat.Message{Sender: chat.SenderBot, Content: PlaceholderContent})

	m.mu.Lock()
	m.pending[Handle(id)] = struct{}{}
	m.mu.Unlock()

	return Handle(id)
}

// resolve removes the handle's placeholder and appends the result messages.
// A handle that was already resolved, or never issued, is a no-op.
func (m *Merger) resolve(handle Handle, results []chat.Message) {
	m.mu.Lock()
	if _, ok := m.pending[handle]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.pending, handle)
	m.mu.Unlock()

	m.log.RemoveWhere(func(msg chat.Message) bool { return msg.ID == string(handle) })
	for _, msg := range results {
		m.log.Append(msg)
	}
}

func (m *Merger) fail(handle Handle, err error) {
	switch {
	case errors.Is(err, ErrNetworkUnreachable):
		log.Printf("[conversation] request %s failed: network unreachable: %v", handle, err)
	case errors.Is(err, ErrMalformedResponse):
		log.Printf("[conversation] request %s failed: malformed response: %v", handle, err)
	default:
		log.Printf("[conversation] request %s failed: backend rejected: %v", handle, err)
	}

	content := ErrMsgRejected
	if errors.Is(err, ErrNetworkUnreachable) {
		content = ErrMsgUnreachable
	}
	m.resolve(handle, []chat.Message{
		{Sender: chat.SenderBot, Content: content},
	})
}

// notesMessages flattens visit notes into log entries: primary content
// first, metadata second, prompts last.
func notesMessages(result *notes.VisitNotes) []chat.Message {
	msgs := make([]chat.Message, 0, 3+len(result.SuggestedQuestions))

	msgs = append(msgs, chat.Message{Sender: chat.SenderBot, Content: result.Transcription})
	if result.Summary != "" {
		msgs = append(msgs, chat.Message{Sender: chat.SenderBot, Content: result.Summary})
	}
	for _, item := range result.ActionItems {
		msgs = append(msgs, chat.Message{Sender: chat.SenderBot, Content: item})
	}
	for _, question := range result.SuggestedQuestions {
		msgs = append(msgs, chat.Message{Sender: chat.SenderBot, Content: question, IsPrompt: true})
	}
	return msgs
}
