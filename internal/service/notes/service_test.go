package notes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medmentor/backend/internal/config"
)

type staticProvider struct {
	text string
	err  error
}

func (p staticProvider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return p.text, p.err
}

func TestParseSummary(t *testing.T) {
	content := `The doctor reviewed your glucose log and adjusted your insulin dose.
*** Action Items ***
- Check blood sugar before every meal
- Schedule a follow-up in two weeks
`

	summary, items := ParseSummary(content)
	if summary != "The doctor reviewed your glucose log and adjusted your insulin dose." {
		t.Errorf("unexpected summary: %q", summary)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 action items, got %d", len(items))
	}
	if items[0] != "Check blood sugar before every meal" {
		t.Errorf("unexpected first item: %q", items[0])
	}
	if items[1] != "Schedule a follow-up in two weeks" {
		t.Errorf("unexpected second item: %q", items[1])
	}
}

func TestParseSummaryWithoutMarker(t *testing.T) {
	summary, items := ParseSummary("Just a plain summary with no tasks.")
	if summary != "Just a plain summary with no tasks." {
		t.Errorf("unexpected summary: %q", summary)
	}
	if items != nil {
		t.Errorf("expected no action items, got %v", items)
	}
}

func TestProcessWithoutModel(t *testing.T) {
	svc := NewService(staticProvider{text: "My blood sugar has been high after meals."}, nil)

	result, err := svc.Process(context.Background(), []byte("audio"), "visit.wav")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if result.Transcription != "My blood sugar has been high after meals." {
		t.Errorf("unexpected transcription: %q", result.Transcription)
	}
	if result.Summary != "" {
		t.Errorf("expected empty summary without a model, got %q", result.Summary)
	}
	if len(result.SuggestedQuestions) == 0 {
		t.Error("expected diabetes-related suggested questions")
	}
}

func TestProcessEmptyTranscript(t *testing.T) {
	svc := NewService(staticProvider{text: "   "}, nil)

	if _, err := svc.Process(context.Background(), []byte("audio"), ""); !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
}

func TestProcessProviderError(t *testing.T) {
	svc := NewService(staticProvider{err: errors.New("boom")}, nil)

	if _, err := svc.Process(context.Background(), []byte("audio"), ""); err == nil {
		t.Fatal("expected an error from the provider")
	}
}

func TestWhisperProviderTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("unexpected model field: %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello from the clinic"}`))
	}))
	defer server.Close()

	provider := NewWhisperProvider(config.TranscriptionConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "whisper-1",
	})

	text, err := provider.Transcribe(context.Background(), []byte("fake audio"), "visit.wav")
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello from the clinic" {
		t.Errorf("unexpected transcript: %q", text)
	}
}

func TestWhisperProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer server.Close()

	provider := NewWhisperProvider(config.TranscriptionConfig{BaseURL: server.URL, Model: "whisper-1"})

	if _, err := provider.Transcribe(context.Background(), []byte("fake"), ""); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
