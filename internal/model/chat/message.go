package chat

import "time"

// Sender values used throughout the conversation log.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is a single turn in a conversation log.
//
// IsPrompt marks bot-authored suggested follow-up questions that the
// client renders as clickable controls rather than plain transcript text.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId,omitempty"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	IsPrompt  bool      `json:"isPrompt,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
