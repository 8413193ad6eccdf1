package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/medmentor/backend/internal/model/chat"
)

var (
	ErrPatientRequired = errors.New("patient id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Store persists sessions and their message history.
type Store interface {
	SaveSession(ctx context.Context, session chat.Session) error
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	AppendMessage(ctx context.Context, message chat.Message) error
	Messages(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// Service encapsulates conversation state management on top of a Store.
type Service struct {
	store Store
}

// NewService wraps the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateSession provisions a session bound to a patient.
func (s *Service) CreateSession(ctx context.Context, patientID string) (chat.Session, error) {
	if patientID == "" {
		return chat.Session{}, ErrPatientRequired
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		PatientID: patientID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// SaveMessage appends a message to the session history, assigning its id.
func (s *Service) SaveMessage(ctx context.Context, message chat.Message) error {
	if message.SessionID == "" {
		return ErrSessionNotFound
	}
	if _, err := s.store.GetSession(ctx, message.SessionID); err != nil {
		return err
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return s.store.AppendMessage(ctx, message)
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	return s.store.Messages(ctx, sessionID)
}

// History returns at most limit of the session's most recent messages.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]chat.Message, error) {
	messages, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}
