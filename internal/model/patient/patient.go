package patient

import "time"

// Profile is the patient document persisted in the profile store.
// PasswordHash never leaves the server.
type Profile struct {
	PatientID           string       `json:"patient_id"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	PasswordHash        string       `json:"-"`
	DOB                 string       `json:"dob"` // YYYY-MM-DD
	Gender              string       `json:"gender"`
	ChronicDisease      string       `json:"chronic_disease"`
	DiabetesType        string       `json:"diabetes_type,omitempty"`
	YearsSinceDiagnosis int          `json:"years_since_diagnosis"`
	Diagnoses           []Diagnosis  `json:"diagnoses,omitempty"`
	Medications         []Medication `json:"medications,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// Diagnosis is one entry in the patient's diagnosis history.
type Diagnosis struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Diagnosis string `json:"diagnosis"`
	Doctor    string `json:"doctor"`
}

// Medication describes one scheduled medication.
type Medication struct {
	Name     string `json:"name"`
	Dosage   string `json:"dosage"`
	Schedule string `json:"schedule"`
}
