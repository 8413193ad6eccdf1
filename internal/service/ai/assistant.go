package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/medmentor/backend/internal/analysis/sentiment"
	"github.com/medmentor/backend/internal/config"
	"github.com/medmentor/backend/internal/model/chat"
	"github.com/medmentor/backend/internal/model/patient"
)

const fallbackReply = "I'm here to help you manage your diabetes. Could you tell me a bit more about what's on your mind?"

// Service encapsulates the AI assistant chat functionality.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates a new assistant service. When the model credentials are
// absent the service still works and answers with a canned reply, so local
// development does not require an API key.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		log.Printf("[ai] assistant model not configured, falling back to canned replies")
		return &Service{cfg: cfg}, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// StreamingEnabled indicates whether SSE streaming output is on.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse && s.chain != nil
}

// GenerateResponse produces the assistant reply for a patient conversation.
// The reply is tone-adjusted to the user's sentiment and filtered for unsafe
// medical claims before it is returned.
func (s *Service) GenerateResponse(ctx context.Context, sessionID string, profile *patient.Profile, messages []chat.Message, userMessage string) (string, error) {
	score := sentiment.Score(userMessage)

	if s.chain == nil {
		return sentiment.Adjust(fallbackReply, score), nil
	}

	input := s.buildChainInput(profile, messages, userMessage, score)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	reply := sentiment.Refine(response.Content)
	reply = sentiment.Adjust(reply, score)

	log.Printf("[ai] generated response for session=%s, length=%d, polarity=%.2f", sessionID, len(reply), score)
	return reply, nil
}

// StreamResponse streams raw reply chunks via the configured chain. Sentiment
// adjustment is skipped in streaming mode since the full text is not known
// until the stream ends.
func (s *Service) StreamResponse(ctx context.Context, profile *patient.Profile, messages []chat.Message, userMessage string) (*schema.StreamReader[*schema.Message], error) {
	if !s.StreamingEnabled() {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	score := sentiment.Score(userMessage)
	input := s.buildChainInput(profile, messages, userMessage, score)

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}

	return stream, nil
}

// GetChatModel returns the underlying chat model, or nil when unconfigured.
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

func (s *Service) buildChainInput(profile *patient.Profile, messages []chat.Message, userMessage string, score sentiment.Polarity) map[string]any {
	return map[string]any{
		"system":  s.buildSystemPrompt(profile, score),
		"history": s.buildHistoryMessages(messages),
		"query":   userMessage,
	}
}

// buildSystemPrompt assembles the assistant instructions, personalized with
// the patient profile when one is known.
func (s *Service) buildSystemPrompt(profile *patient.Profile, score sentiment.Polarity) string {
	var builder strings.Builder
	builder.WriteString("You are MedMentor, a supportive assistant for people managing diabetes. ")
	builder.WriteString("Give practical lifestyle, diet and glucose-monitoring guidance in plain language. ")
	builder.WriteString("Never diagnose conditions, never promise cures, and remind the user to consult their healthcare provider for medical decisions.")

	if profile != nil {
		builder.WriteString("\n\nPatient context:")
		if profile.Name != "" {
			builder.WriteString(fmt.Sprintf("\n- Name: %s", profile.Name))
		}
		if profile.DiabetesType != "" {
			builder.WriteString(fmt.Sprintf("\n- Diabetes type: %s", profile.DiabetesType))
		}
		if profile.YearsSinceDiagnosis > 0 {
			builder.WriteString(fmt.Sprintf("\n- Years since diagnosis: %d", profile.YearsSinceDiagnosis))
		}
		if len(profile.Medications) > 0 {
			names := make([]string, 0, len(profile.Medications))
			for _, med := range profile.Medications {
				names = append(names, med.Name)
			}
			builder.WriteString(fmt.Sprintf("\n- Current medications: %s", strings.Join(names, ", ")))
		}
	}

	switch {
	case score < -0.3:
		builder.WriteString("\n\nThe user sounds distressed. Lead with empathy and keep the tone gentle.")
	case score > 0.3:
		builder.WriteString("\n\nThe user sounds upbeat. Acknowledge their progress and keep the momentum.")
	}

	return builder.String()
}

func (s *Service) buildHistoryMessages(messages []chat.Message) []*schema.Message {
	const historyLimit = 10

	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderBot:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
