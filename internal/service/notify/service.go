package notify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Task states reported by Status.
const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)

// Task is one text-to-speech notification job.
type Task struct {
	ID        string `json:"task_id"`
	Status    string `json:"status"`
	AudioFile string `json:"audio_file,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Service turns notification texts into spoken audio files asynchronously.
// Enqueue returns immediately; the synthesis runs on its own goroutine and
// the result is visible through Status.
type Service struct {
	provider TTSProvider
	audioDir string

	mu    sync.Mutex
	tasks map[string]Task
	wg    sync.WaitGroup
}

// NewService creates a notification service writing audio under audioDir.
func NewService(provider TTSProvider, audioDir string) *Service {
	return &Service{
		provider: provider,
		audioDir: audioDir,
		tasks:    make(map[string]Task),
	}
}

// Enqueue starts a synthesis job for the text and returns its task id. The
// job outlives the caller's request, so it runs detached from its context.
func (s *Service) Enqueue(ctx context.Context, text string) string {
	task := Task{ID: uuid.NewString(), Status: StatusProcessing}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(context.WithoutCancel(ctx), task.ID, text)
	}()

	return task.ID
}

// Status reports the state of a task. The second return is false for an
// unknown id.
func (s *Service) Status(taskID string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	return task, ok
}

// Wait blocks until every enqueued job has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context, taskID, text string) {
	audio, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		log.Printf("[notify] synthesis failed for task=%s: %v", taskID, err)
		s.finish(taskID, Task{ID: taskID, Status: StatusFailed, Error: "synthesis failed"})
		return
	}

	path := filepath.Join(s.audioDir, fmt.Sprintf("notification-%s.mp3", taskID))
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		log.Printf("[notify] failed to create audio directory: %v", err)
		s.finish(taskID, Task{ID: taskID, Status: StatusFailed, Error: "could not store audio"})
		return
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		log.Printf("[notify] failed to write audio file for task=%s: %v", taskID, err)
		s.finish(taskID, Task{ID: taskID, Status: StatusFailed, Error: "could not store audio"})
		return
	}

	log.Printf("[notify] task=%s complete, audio=%s", taskID, path)
	s.finish(taskID, Task{ID: taskID, Status: StatusComplete, AudioFile: path})
}

func (s *Service) finish(taskID string, done Task) {
	s.mu.Lock()
	s.tasks[taskID] = done
	s.mu.Unlock()
}
