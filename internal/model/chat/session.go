package chat

import "time"

// Session captures one patient conversation.
type Session struct {
	ID        string    `json:"id"`
	PatientID string    `json:"patientId"`
	CreatedAt time.Time `json:"createdAt"`
}
