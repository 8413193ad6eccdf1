package notes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/medmentor/backend/internal/analysis/suggest"
	notesmodel "github.com/medmentor/backend/internal/model/notes"
)

// ErrNoTranscript is returned when the provider produced no usable text.
var ErrNoTranscript = errors.New("transcription produced no text")

const summaryPrompt = `Summarize the following doctor's visit transcript for the patient, then list the concrete follow-up tasks.

Respond in exactly this format:
<one-paragraph summary>
*** Action Items ***
- <first action item>
- <second action item>

Transcript:
%s`

// Service turns a visit recording into structured visit notes.
type Service struct {
	provider  TranscriptionProvider
	chatModel model.ChatModel
}

// NewService creates a visit-notes service. chatModel may be nil, in which
// case the raw transcript doubles as the summary.
func NewService(provider TranscriptionProvider, chatModel model.ChatModel) *Service {
	return &Service{provider: provider, chatModel: chatModel}
}

// Process transcribes the audio, derives a summary with action items, and
// attaches suggested follow-up questions based on the transcript content.
func (s *Service) Process(ctx context.Context, audio []byte, filename string) (*notesmodel.VisitNotes, error) {
	transcript, err := s.provider.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrNoTranscript
	}

	summary, actionItems := s.summarize(ctx, transcript)

	result := &notesmodel.VisitNotes{
		Transcription:      transcript,
		Summary:            summary,
		ActionItems:        actionItems,
		SuggestedQuestions: suggest.Questions(transcript),
		CreatedAt:          time.Now(),
	}

	log.Printf("[notes] processed visit recording: transcript=%d chars, actions=%d, questions=%d",
		len(transcript), len(result.ActionItems), len(result.SuggestedQuestions))
	return result, nil
}

// summarize asks the chat model for a summary plus action items. Model
// failures degrade to an empty summary rather than failing the whole upload,
// so the patient still gets their transcript back.
func (s *Service) summarize(ctx context.Context, transcript string) (string, []string) {
	if s.chatModel == nil {
		return "", nil
	}

	response, err := s.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(fmt.Sprintf(summaryPrompt, transcript)),
	})
	if err != nil {
		log.Printf("[notes] summary generation failed: %v", err)
		return "", nil
	}

	return ParseSummary(response.Content)
}
