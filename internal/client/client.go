package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/medmentor/backend/internal/conversation"
	"github.com/medmentor/backend/internal/model/notes"
)

// Client talks to the MedMentor API. It implements the chat and transcription
// backends used by the conversation merger, translating transport failures
// into the merger's error taxonomy. Safe for concurrent use: the merger fires
// SendMessage from per-submit goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	patientID string
	sessionID string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPatient attaches a patient id to outgoing chat requests.
func WithPatient(patientID string) Option {
	return func(c *Client) {
		c.patientID = patientID
	}
}

// New creates a client against the given base URL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendMessage posts one chat message and returns the assistant reply. The
// session id returned by the server is remembered so follow-up messages stay
// in the same conversation.
func (c *Client) SendMessage(ctx context.Context, message string) (string, error) {
	c.mu.Lock()
	sessionID, patientID := c.sessionID, c.patientID
	c.mu.Unlock()

	payload, err := json.Marshal(map[string]string{
		"message":   message,
		"sessionId": sessionID,
		"patientId": patientID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w: %v", conversation.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat backend returned status %d: %w", resp.StatusCode, conversation.ErrBackendRejected)
	}

	var parsed struct {
		Response  string `json:"response"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", conversation.ErrMalformedResponse)
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("chat response missing reply text: %w", conversation.ErrMalformedResponse)
	}

	if parsed.SessionID != "" {
		c.mu.Lock()
		c.sessionID = parsed.SessionID
		c.mu.Unlock()
	}
	return parsed.Response, nil
}

// setIdentity swaps the patient attached to chat requests. An empty id also
// drops the current session so the next message starts a fresh conversation.
func (c *Client) setIdentity(patientID string) {
	c.mu.Lock()
	c.patientID = patientID
	if patientID == "" {
		c.sessionID = ""
	}
	c.mu.Unlock()
}

// Transcribe uploads a visit recording and returns the processed notes.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (*notes.VisitNotes, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "recording.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcription", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w: %v", conversation.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcription backend returned status %d: %w", resp.StatusCode, conversation.ErrBackendRejected)
	}

	var result notes.VisitNotes
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", conversation.ErrMalformedResponse)
	}
	if result.Transcription == "" {
		return nil, fmt.Errorf("transcription response missing transcript: %w", conversation.ErrMalformedResponse)
	}

	return &result, nil
}

var (
	_ conversation.ChatBackend          = (*Client)(nil)
	_ conversation.TranscriptionBackend = (*Client)(nil)
)
