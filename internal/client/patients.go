package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/medmentor/backend/internal/conversation"
	"github.com/medmentor/backend/internal/model/patient"
	patientservice "github.com/medmentor/backend/internal/service/patient"
)

// Register creates a patient account and returns the new patient id.
func (c *Client) Register(ctx context.Context, req patientservice.RegisterRequest) (string, error) {
	var parsed struct {
		PatientID string `json:"patientId"`
	}
	if err := c.postJSON(ctx, "/patients/register", req, &parsed); err != nil {
		return "", err
	}
	if parsed.PatientID == "" {
		return "", fmt.Errorf("register response missing patient id: %w", conversation.ErrMalformedResponse)
	}
	return parsed.PatientID, nil
}

// LoginResult identifies the signed-in patient.
type LoginResult struct {
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
}

// Login verifies credentials and returns the patient identity.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var parsed LoginResult
	err := c.postJSON(ctx, "/patients/login", map[string]string{
		"email":    email,
		"password": password,
	}, &parsed)
	if err != nil {
		return LoginResult{}, err
	}
	if parsed.PatientID == "" {
		return LoginResult{}, fmt.Errorf("login response missing patient id: %w", conversation.ErrMalformedResponse)
	}
	return parsed, nil
}

// Profile fetches a patient profile.
func (c *Client) Profile(ctx context.Context, patientID string) (patient.Profile, error) {
	var profile patient.Profile

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/patients/"+patientID, nil)
	if err != nil {
		return profile, fmt.Errorf("failed to create profile request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return profile, fmt.Errorf("profile request failed: %w: %v", conversation.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return profile, fmt.Errorf("profile request returned status %d: %w", resp.StatusCode, conversation.ErrBackendRejected)
	}

	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, fmt.Errorf("failed to decode profile response: %w", conversation.ErrMalformedResponse)
	}
	return profile, nil
}

// UpdateProfile merges the given fields into the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, patientID string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode profile update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/patients/"+patientID, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create profile update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("profile update failed: %w: %v", conversation.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("profile update returned status %d: %w", resp.StatusCode, conversation.ErrBackendRejected)
	}
	return nil
}

// AddDiagnosis records a diagnosis for the patient.
func (c *Client) AddDiagnosis(ctx context.Context, patientID string, diag patient.Diagnosis) error {
	return c.postJSON(ctx, "/patients/"+patientID+"/diagnoses", diag, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %v", conversation.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend returned status %d: %w", resp.StatusCode, conversation.ErrBackendRejected)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", conversation.ErrMalformedResponse)
	}
	return nil
}
