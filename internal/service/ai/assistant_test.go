package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/medmentor/backend/internal/config"
	"github.com/medmentor/backend/internal/model/chat"
	"github.com/medmentor/backend/internal/model/patient"
)

func newFallbackService(t *testing.T) *Service {
	t.Helper()

	svc, err := NewService(context.Background(), config.AIConfig{})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestGenerateResponseFallback(t *testing.T) {
	svc := newFallbackService(t)

	reply, err := svc.GenerateResponse(context.Background(), "sess-1", nil, nil, "what should I eat for breakfast?")
	if err != nil {
		t.Fatalf("GenerateResponse failed: %v", err)
	}
	if reply == "" {
		t.Fatal("expected a non-empty fallback reply")
	}
}

func TestGenerateResponseFallbackAdjustsTone(t *testing.T) {
	svc := newFallbackService(t)

	reply, err := svc.GenerateResponse(context.Background(), "sess-1", nil, nil,
		"I feel sad and worried, my feet hurt and I am exhausted")
	if err != nil {
		t.Fatalf("GenerateResponse failed: %v", err)
	}
	if !strings.Contains(reply, "feeling a bit down") {
		t.Errorf("expected an empathetic preamble for a negative message, got %q", reply)
	}
}

func TestStreamingDisabledWithoutModel(t *testing.T) {
	svc := newFallbackService(t)

	if svc.StreamingEnabled() {
		t.Error("streaming should be disabled without a configured model")
	}
	if _, err := svc.StreamResponse(context.Background(), nil, nil, "hi"); err == nil {
		t.Error("expected StreamResponse to fail without a configured model")
	}
}

func TestBuildHistoryMessagesLimits(t *testing.T) {
	svc := newFallbackService(t)

	var messages []chat.Message
	for i := 0; i < 15; i++ {
		sender := chat.SenderUser
		if i%2 == 1 {
			sender = chat.SenderBot
		}
		messages = append(messages, chat.Message{Sender: sender, Content: "msg"})
	}

	history := svc.buildHistoryMessages(messages)
	if len(history) != 10 {
		t.Errorf("expected history capped at 10, got %d", len(history))
	}
}

func TestBuildSystemPromptIncludesProfile(t *testing.T) {
	svc := newFallbackService(t)

	profile := &patient.Profile{
		Name:                "Jordan Reyes",
		DiabetesType:        "Type 2",
		YearsSinceDiagnosis: 4,
		Medications:         []patient.Medication{{Name: "Metformin"}},
	}

	prompt := svc.buildSystemPrompt(profile, 0)
	for _, want := range []string{"Jordan Reyes", "Type 2", "Metformin"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
