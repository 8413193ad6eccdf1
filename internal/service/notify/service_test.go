package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/medmentor/backend/internal/config"
)

type staticProvider struct {
	audio []byte
	err   error
}

func (p staticProvider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return p.audio, p.err
}

func TestEnqueueWritesAudioFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(staticProvider{audio: []byte("mp3 bytes")}, dir)

	taskID := svc.Enqueue(context.Background(), "Time to check your glucose.")
	svc.Wait()

	task, ok := svc.Status(taskID)
	if !ok {
		t.Fatal("task not found after enqueue")
	}
	if task.Status != StatusComplete {
		t.Fatalf("expected complete, got %s (%s)", task.Status, task.Error)
	}

	audio, err := os.ReadFile(task.AudioFile)
	if err != nil {
		t.Fatalf("failed to read audio file: %v", err)
	}
	if string(audio) != "mp3 bytes" {
		t.Errorf("unexpected audio content: %q", audio)
	}
}

func TestEnqueueProviderFailure(t *testing.T) {
	svc := NewService(staticProvider{err: errors.New("provider down")}, t.TempDir())

	taskID := svc.Enqueue(context.Background(), "hello")
	svc.Wait()

	task, ok := svc.Status(taskID)
	if !ok {
		t.Fatal("task not found after enqueue")
	}
	if task.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", task.Status)
	}
	if task.AudioFile != "" {
		t.Errorf("failed task should not carry an audio file, got %q", task.AudioFile)
	}
}

func TestEnqueueOutlivesCanceledContext(t *testing.T) {
	svc := NewService(staticProvider{audio: []byte("mp3")}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	taskID := svc.Enqueue(ctx, "reminder")
	cancel()
	svc.Wait()

	task, _ := svc.Status(taskID)
	if task.Status != StatusComplete {
		t.Fatalf("expected job to finish after caller cancel, got %s", task.Status)
	}
}

func TestStatusUnknownTask(t *testing.T) {
	svc := NewService(staticProvider{}, t.TempDir())

	if _, ok := svc.Status("missing"); ok {
		t.Error("expected unknown task to report not found")
	}
}

func TestElevenLabsProviderSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.HasPrefix(r.URL.Path, "/v1/text-to-speech/voice-1") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("xi-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header: %q", got)
		}

		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	provider := NewElevenLabsProvider(config.TTSConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		VoiceID: "voice-1",
		Model:   "eleven_multilingual_v2",
	})

	audio, err := provider.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "audio-bytes" {
		t.Errorf("unexpected audio: %q", audio)
	}
}

func TestElevenLabsProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewElevenLabsProvider(config.TTSConfig{BaseURL: server.URL, VoiceID: "v"})

	if _, err := provider.Synthesize(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
