package patient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medmentor/backend/internal/model/patient"
	"github.com/medmentor/backend/internal/storage/profilestore"
)

var (
	ErrValidation      = errors.New("invalid registration payload")
	ErrEmailTaken      = errors.New("patient with this email already exists")
	ErrPatientNotFound = errors.New("patient not found")
	ErrBadCredentials  = errors.New("incorrect password")
)

const (
	patientKeyPrefix = "patient/"
	emailKeyPrefix   = "email/"
)

// RegisterRequest is the payload accepted by Register.
type RegisterRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	DOB                 string `json:"dob"`
	Gender              string `json:"gender"`
	ChronicDisease      string `json:"chronic_disease"`
	DiabetesType        string `json:"diabetes_type"`
	YearsSinceDiagnosis int    `json:"years_since_diagnosis"`
}

// Service owns patient registration, login and profile management.
type Service struct {
	store *profilestore.Store
}

// NewService wraps the profile store.
func NewService(store *profilestore.Store) *Service {
	return &Service{store: store}
}

// Register creates a new patient document and returns its id.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var missing []string
	for field, value := range map[string]string{
		"name":            req.Name,
		"email":           req.Email,
		"password":        req.Password,
		"dob":             req.DOB,
		"chronic_disease": req.ChronicDisease,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if !strings.EqualFold(req.ChronicDisease, "Diabetes") {
		return "", fmt.Errorf("%w: chronic disease must be 'Diabetes' for this registration", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", req.DOB); err != nil {
		return "", fmt.Errorf("%w: invalid date format for dob, expected YYYY-MM-DD", ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing string
	if err := s.store.Get(emailKeyPrefix+email, &existing); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, profilestore.ErrNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	gender := req.Gender
	if gender == "" {
		gender = "Not Specified"
	}
	years := req.YearsSinceDiagnosis
	if years < 0 {
		years = 0
	}

	now := time.Now().UTC()
	profile := patient.Profile{
		PatientID:           uuid.NewString(),
		Name:                req.Name,
		Email:               email,
		PasswordHash:        string(hash),
		DOB:                 req.DOB,
		Gender:              gender,
		ChronicDisease:      req.ChronicDisease,
		DiabetesType:        req.DiabetesType,
		YearsSinceDiagnosis: years,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.store.Put(patientKeyPrefix+profile.PatientID, storedProfile(profile)); err != nil {
		return "", err
	}
	if err := s.store.Put(emailKeyPrefix+email, profile.PatientID); err != nil {
		return "", err
	}
	return profile.PatientID, nil
}

// Login verifies the credentials and returns the patient profile.
func (s *Service) Login(ctx context.Context, email, password string) (patient.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var patientID string
	if err := s.store.Get(emailKeyPrefix+email, &patientID); err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			// Unknown emails look like bad credentials so the API does
			// not reveal which addresses are registered.
			return patient.Profile{}, ErrBadCredentials
		}
		return patient.Profile{}, err
	}

	profile, hash, err := s.load(patientID)
	if err != nil {
		return patient.Profile{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return patient.Profile{}, ErrBadCredentials
	}
	return profile, nil
}

// Profile returns the patient document without credential material.
func (s *Service) Profile(ctx context.Context, patientID string) (patient.Profile, error) {
	profile, _, err := s.load(patientID)
	return profile, err
}

// UpdateProfile merges the given fields into the patient document.
// Credential fields cannot be changed through this path.
func (s *Service) UpdateProfile(ctx context.Context, patientID string, fields map[string]any) error {
	delete(fields, "patient_id")
	delete(fields, "password_hash")
	delete(fields, "email")
	fields["updated_at"] = time.Now().UTC()

	err := s.store.Merge(patientKeyPrefix+patientID, fields)
	if errors.Is(err, profilestore.ErrNotFound) {
		return ErrPatientNotFound
	}
	return err
}

// AddDiagnosis appends a diagnosis entry (array-union, no duplicates).
func (s *Service) AddDiagnosis(ctx context.Context, patientID string, diag patient.Diagnosis) error {
	if strings.TrimSpace(diag.Diagnosis) == "" {
		return fmt.Errorf("%w: diagnosis text is required", ErrValidation)
	}
	err := s.store.AppendUnique(patientKeyPrefix+patientID, "diagnoses", diag)
	if errors.Is(err, profilestore.ErrNotFound) {
		return ErrPatientNotFound
	}
	return err
}

// Dashboard summarizes what the dashboard page renders.
type Dashboard struct {
	Diagnoses   []patient.Diagnosis  `json:"diagnoses"`
	Medications []patient.Medication `json:"medications"`
}

// Dashboard returns diagnoses sorted most recent first, plus the medication
// schedule.
func (s *Service) Dashboard(ctx context.Context, patientID string) (Dashboard, error) {
	profile, _, err := s.load(patientID)
	if err != nil {
		return Dashboard{}, err
	}

	diagnoses := append([]patient.Diagnosis(nil), profile.Diagnoses...)
	sort.SliceStable(diagnoses, func(i, j int) bool {
		return diagnoses[i].Date > diagnoses[j].Date
	})

	return Dashboard{
		Diagnoses:   diagnoses,
		Medications: append([]patient.Medication(nil), profile.Medications...),
	}, nil
}

func (s *Service) load(patientID string) (patient.Profile, string, error) {
	var doc profileDoc
	if err := s.store.Get(patientKeyPrefix+patientID, &doc); err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			return patient.Profile{}, "", ErrPatientNotFound
		}
		return patient.Profile{}, "", err
	}
	return doc.Profile, doc.PasswordHash, nil
}

// profileDoc carries the password hash alongside the profile inside the
// store; Profile's own JSON tags keep the hash out of API responses.
type profileDoc struct {
	patient.Profile
	PasswordHash string `json:"password_hash"`
}

func storedProfile(p patient.Profile) profileDoc {
	doc := profileDoc{Profile: p, PasswordHash: p.PasswordHash}
	doc.Profile.PasswordHash = ""
	return doc
}
