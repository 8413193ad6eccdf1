package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medmentor/backend/internal/config"
	aiservice "github.com/medmentor/backend/internal/service/ai"
	chatservice "github.com/medmentor/backend/internal/service/chat"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
	t.Helper()

	chatSvc := chatservice.NewService(chatservice.NewMemoryStore())
	aiSvc, err := aiservice.NewService(context.Background(), config.AIConfig{})
	if err != nil {
		t.Fatalf("failed to create assistant service: %v", err)
	}

	handler := New(chatSvc, aiSvc, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func TestChatMissingMessage(t *testing.T) {
	r, _ := setupRouter(t)
	payload := []byte(`{"patientId":"p-1"}`)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatCreatesSessionAndResponds(t *testing.T) {
	r, _ := setupRouter(t)
	payload := []byte(`{"message":"How do I lower my blood sugar?","patientId":"p-1"}`)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Response  string `json:"response"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Response == "" {
		t.Error("expected a non-empty assistant response")
	}
	if body.SessionID == "" {
		t.Error("expected a session id in the response")
	}
}

func TestChatUnknownSession(t *testing.T) {
	r, _ := setupRouter(t)
	payload := []byte(`{"message":"hello","sessionId":"missing"}`)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestChatNewSessionRequiresPatient(t *testing.T) {
	r, _ := setupRouter(t)
	payload := []byte(`{"message":"hello"}`)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestListMessagesAfterChat(t *testing.T) {
	r, chatSvc := setupRouter(t)

	session, err := chatSvc.CreateSession(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{
		"message":   "I feel great today",
		"sessionId": session.ID,
	})

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/session/"+session.ID+"/messages", nil)
	listResp := httptest.NewRecorder()
	r.ServeHTTP(listResp, listReq)

	if listResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.Code)
	}

	var body struct {
		Messages []struct {
			Sender  string `json:"sender"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(listResp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("expected user and bot messages, got %d", len(body.Messages))
	}
	if body.Messages[0].Sender != "user" || body.Messages[1].Sender != "bot" {
		t.Errorf("unexpected message order: %+v", body.Messages)
	}
}
