package notifyhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	notifyservice "github.com/medmentor/backend/internal/service/notify"
)

type fakeProvider struct{}

func (fakeProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return []byte("mp3"), nil
}

func setupRouter(t *testing.T) (*chi.Mux, *notifyservice.Service) {
	t.Helper()

	svc := notifyservice.NewService(fakeProvider{}, t.TempDir())
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func TestNotifyEnqueues(t *testing.T) {
	r, svc := setupRouter(t)

	payload := []byte(`{"text":"Time to take your medication."}`)
	req := httptest.NewRequest(http.MethodPost, "/notify", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.TaskID == "" || body.Status != notifyservice.StatusProcessing {
		t.Fatalf("unexpected enqueue response: %+v", body)
	}

	svc.Wait()

	statusReq := httptest.NewRequest(http.MethodGet, "/notify/"+body.TaskID, nil)
	statusResp := httptest.NewRecorder()
	r.ServeHTTP(statusResp, statusReq)

	if statusResp.Code != http.StatusOK {
		t.Fatalf("status lookup failed with %d", statusResp.Code)
	}

	var task notifyservice.Task
	if err := json.Unmarshal(statusResp.Body.Bytes(), &task); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}
	if task.Status != notifyservice.StatusComplete {
		t.Errorf("expected complete task, got %s", task.Status)
	}
}

func TestNotifyMissingText(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/notify", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestNotifyStatusUnknownTask(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/notify/nope", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
