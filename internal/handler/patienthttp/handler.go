package patienthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	patientmodel "github.com/medmentor/backend/internal/model/patient"
	patientservice "github.com/medmentor/backend/internal/service/patient"
	"github.com/medmentor/backend/pkg/utils"
)

// Handler serves the patient account and profile endpoints.
type Handler struct {
	patientSvc *patientservice.Service
}

// New creates the patient handler.
func New(patientSvc *patientservice.Service) *Handler {
	return &Handler{patientSvc: patientSvc}
}

// RegisterRoutes registers the patient routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/patients", func(pr chi.Router) {
		pr.Post("/register", h.handleRegister)
		pr.Post("/login", h.handleLogin)
		pr.Get("/{patientID}", h.handleProfile)
		pr.Patch("/{patientID}", h.handleUpdateProfile)
		pr.Post("/{patientID}/diagnoses", h.handleAddDiagnosis)
		pr.Get("/{patientID}/dashboard", h.handleDashboard)
	})
	r.Post("/glucose", h.handleGlucose)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req patientservice.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patientID, err := h.patientSvc.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, patientservice.ErrValidation):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, patientservice.ErrEmailTaken):
			utils.RespondError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"patientId": patientID})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	profile, err := h.patientSvc.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, patientservice.ErrBadCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"patientId": profile.PatientID,
		"name":      profile.Name,
	})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	profile, err := h.patientSvc.Profile(r.Context(), patientID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, profile)
}

// handleUpdateProfile merges the provided fields into the stored profile.
// Fields not present in the request are left untouched.
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(fields) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.patientSvc.UpdateProfile(r.Context(), patientID, fields); err != nil {
		h.respondLookupError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleAddDiagnosis appends a diagnosis entry; duplicates are ignored.
func (h *Handler) handleAddDiagnosis(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var diag patientmodel.Diagnosis
	if err := json.NewDecoder(r.Body).Decode(&diag); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if diag.Diagnosis == "" {
		utils.RespondError(w, http.StatusBadRequest, "diagnosis is required")
		return
	}

	if err := h.patientSvc.AddDiagnosis(r.Context(), patientID, diag); err != nil {
		h.respondLookupError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	dashboard, err := h.patientSvc.Dashboard(r.Context(), patientID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, dashboard)
}

// handleGlucose returns advice for a single glucose reading.
func (h *Handler) handleGlucose(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Reading *float64 `json:"reading"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Reading == nil {
		utils.RespondError(w, http.StatusBadRequest, "reading is required")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"reading": *payload.Reading,
		"advice":  patientservice.GlucoseAdvice(*payload.Reading),
	})
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, patientservice.ErrPatientNotFound) {
		utils.RespondError(w, http.StatusNotFound, "patient not found")
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, err.Error())
}
