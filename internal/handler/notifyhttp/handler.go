package notifyhttp

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	notifyservice "github.com/medmentor/backend/internal/service/notify"
	"github.com/medmentor/backend/pkg/utils"
)

// Handler serves the spoken-notification endpoints.
type Handler struct {
	notifySvc *notifyservice.Service
}

// New creates the notification handler.
func New(notifySvc *notifyservice.Service) *Handler {
	return &Handler{notifySvc: notifySvc}
}

// RegisterRoutes registers the notification routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/notify", h.handleNotify)
	r.Get("/notify/{taskID}", h.handleStatus)
}

// handleNotify enqueues a text-to-speech job and returns its task id.
func (h *Handler) handleNotify(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "No text provided")
		return
	}

	taskID := h.notifySvc.Enqueue(r.Context(), payload.Text)

	utils.RespondJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  notifyservice.StatusProcessing,
	})
}

// handleStatus reports the state of an enqueued job.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, ok := h.notifySvc.Status(taskID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "task not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, task)
}
