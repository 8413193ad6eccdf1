package notes

import "time"

// VisitNotes is the processed output of one clinical-visit recording.
type VisitNotes struct {
	Transcription      string    `json:"transcription"`
	Summary            string    `json:"summary"`
	ActionItems        []string  `json:"action_items"`
	SuggestedQuestions []string  `json:"suggested_questions"`
	CreatedAt          time.Time `json:"created_at"`
}

// TranscriptSegment is one line of a live transcript stream.
type TranscriptSegment struct {
	SessionID string    `json:"sessionId,omitempty"`
	Text      string    `json:"text"`
	IsFinal   bool      `json:"isFinal"`
	CreatedAt time.Time `json:"createdAt"`
}
