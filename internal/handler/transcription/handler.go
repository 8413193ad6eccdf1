package transcription

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	notesservice "github.com/medmentor/backend/internal/service/notes"
	"github.com/medmentor/backend/pkg/utils"
)

const maxUploadBytes = 32 << 20 // 32MB max

// Handler serves the visit recording endpoints.
type Handler struct {
	notesSvc *notesservice.Service
}

// New creates the transcription handler.
func New(notesSvc *notesservice.Service) *Handler {
	return &Handler{notesSvc: notesSvc}
}

// RegisterRoutes registers the transcription routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcription", h.handleTranscription)

	wsHandler := NewWebSocketHandler(h.notesSvc)
	wsHandler.RegisterWebSocketRoutes(r)
}

// handleTranscription accepts an uploaded visit recording and returns the
// transcript, summary, action items and suggested questions.
func (h *Handler) handleTranscription(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.notesSvc.Process(r.Context(), audio, header.Filename)
	if err != nil {
		if errors.Is(err, notesservice.ErrNoTranscript) {
			utils.RespondError(w, http.StatusUnprocessableEntity, "no speech detected in the recording")
			return
		}
		log.Printf("[transcription] processing error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to process the recording")
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}
