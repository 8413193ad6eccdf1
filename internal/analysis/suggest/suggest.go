// Package suggest derives follow-up questions a patient may want to ask
// their doctor, keyed on keywords found in a visit transcript.
package suggest

import "strings"

type bucket struct {
	keywords  []string
	questions []string
}

// Buckets are matched in a fixed order so output is deterministic.
var buckets = []bucket{
	{
		keywords: []string{"blood sugar", "glucose", "insulin", "a1c", "diabetes"},
		questions: []string{
			"What lifestyle changes should I make to better manage my blood sugar?",
			"Are there any new treatment options available?",
			"How often should I check my blood sugar levels?",
			"What are the warning signs of complications I should watch for?",
		},
	},
	{
		keywords: []string{"medication", "prescription", "dose", "pill", "metformin"},
		questions: []string{
			"Are there any side effects I should be aware of?",
			"Can I take this medication with my other prescriptions?",
			"What should I do if I miss a dose?",
			"How will I know if the medication is working?",
		},
	},
	{
		keywords: []string{"symptom", "pain", "dizzy", "numbness", "fatigue"},
		questions: []string{
			"Could these symptoms be related to my current medication?",
			"How urgent are these symptoms?",
			"What testing might be needed?",
			"Should I make any immediate changes to my routine?",
		},
	},
}

// Questions returns the suggested follow-up questions for a transcript.
// Every matching bucket contributes its questions, bucket order preserved.
func Questions(transcript string) []string {
	normalized := strings.ToLower(transcript)
	var out []string
	for _, b := range buckets {
		for _, keyword := range b.keywords {
			if strings.Contains(normalized, keyword) {
				out = append(out, b.questions...)
				break
			}
		}
	}
	return out
}
