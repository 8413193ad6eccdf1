package sentiment

import "strings"

// Polarity is a sentiment score in [-1, 1].
type Polarity float64

// Bands used when reframing a reply around the patient's mood.
const (
	strongNegative Polarity = -0.3
	strongPositive Polarity = 0.3
)

var positiveKeywords = []string{
	"great", "good", "better", "improved", "happy", "glad", "thanks",
	"thank you", "awesome", "relieved", "stable", "progress", "excited",
	"proud", "well", "energetic",
}

var negativeKeywords = []string{
	"worried", "worse", "bad", "tired", "scared", "afraid", "frustrated",
	"frustrating", "sad", "depressed", "anxious", "pain", "hurts",
	"exhausted", "hopeless", "struggling", "can't cope", "overwhelmed",
}

// Claims that a health assistant must never echo back.
var unsafeKeywords = []string{"cure", "miracle", "unproven", "unsafe"}

const consultNotice = "Please consult a licensed healthcare provider for medical guidance."

// Score estimates sentiment polarity from keyword hits. Each hit moves the
// score by 0.25 in its direction, clamped to [-1, 1].
func Score(text string) Polarity {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return 0
	}

	var score Polarity
	for _, word := range positiveKeywords {
		if strings.Contains(normalized, word) {
			score += 0.25
		}
	}
	for _, word := range negativeKeywords {
		if strings.Contains(normalized, word) {
			score -= 0.25
		}
	}

	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// Adjust reframes the assistant reply around the patient's sentiment.
func Adjust(reply string, score Polarity) string {
	switch {
	case score < strongNegative:
		return "I sense you're feeling a bit down. You're not alone, and managing diabetes can be tough. " +
			"But you're doing your best! " + reply + " Let me know how I can support you."
	case score < 0:
		return "I understand this can be frustrating. " + reply +
			" If you need encouragement or more guidance, I'm here for you."
	case score > strongPositive:
		return "That's great to hear! " + reply +
			" Keep up the good work, and let me know if you need any help."
	default:
		return reply
	}
}

// Refine filters replies containing unsafe medical claims.
func Refine(reply string) string {
	lowered := strings.ToLower(reply)
	for _, word := range unsafeKeywords {
		if strings.Contains(lowered, word) {
			return consultNotice
		}
	}
	return reply
}
