package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	notesservice "github.com/medmentor/backend/internal/service/notes"
)

type fakeProvider struct {
	text string
	err  error
}

func (p fakeProvider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return p.text, p.err
}

func setupRouter(provider notesservice.TranscriptionProvider) *chi.Mux {
	handler := New(notesservice.NewService(provider, nil))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestTranscriptionUpload(t *testing.T) {
	r := setupRouter(fakeProvider{text: "The doctor said my insulin dose looks right."})

	body, contentType := multipartUpload(t, "file", "visit.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcription", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var parsed struct {
		Transcription      string   `json:"transcription"`
		SuggestedQuestions []string `json:"suggested_questions"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if parsed.Transcription != "The doctor said my insulin dose looks right." {
		t.Errorf("unexpected transcription: %q", parsed.Transcription)
	}
	if len(parsed.SuggestedQuestions) == 0 {
		t.Error("expected suggested questions for an insulin transcript")
	}
}

func TestTranscriptionMissingFile(t *testing.T) {
	r := setupRouter(fakeProvider{text: "ignored"})

	body, contentType := multipartUpload(t, "wrong-field", "visit.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcription", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTranscriptionEmptyTranscript(t *testing.T) {
	r := setupRouter(fakeProvider{text: "  "})

	body, contentType := multipartUpload(t, "file", "visit.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcription", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
}

func TestTranscriptionProviderFailure(t *testing.T) {
	r := setupRouter(fakeProvider{err: errors.New("provider down")})

	body, contentType := multipartUpload(t, "file", "visit.wav", []byte("fake audio"))
	req := httptest.NewRequest(http.MethodPost, "/transcription", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
