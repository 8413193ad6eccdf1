package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/medmentor/backend/internal/model/chat"
	"github.com/medmentor/backend/internal/model/patient"
	aiservice "github.com/medmentor/backend/internal/service/ai"
	chatservice "github.com/medmentor/backend/internal/service/chat"
	"github.com/medmentor/backend/pkg/utils"
)

// ProfileLoader resolves a patient profile for assistant personalization.
type ProfileLoader interface {
	Profile(ctx context.Context, patientID string) (patient.Profile, error)
}

// Handler serves the conversational endpoints.
type Handler struct {
	chatSvc  *chatservice.Service
	aiSvc    *aiservice.Service
	profiles ProfileLoader
}

// New creates the chat handler. profiles may be nil.
func New(chatSvc *chatservice.Service, aiSvc *aiservice.Service, profiles ProfileLoader) *Handler {
	return &Handler{
		chatSvc:  chatSvc,
		aiSvc:    aiSvc,
		profiles: profiles,
	}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleListMessages)
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	PatientID string `json:"patientId"`
}

// handleChat answers one user message. With ?stream=1 and streaming enabled
// the reply is delivered as SSE chunks instead of a single JSON object.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		if payload.PatientID == "" {
			utils.RespondError(w, http.StatusBadRequest, "patientId is required to start a new session")
			return
		}
		session, err := h.chatSvc.CreateSession(r.Context(), payload.PatientID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		sessionID = session.ID
	}

	history, err := h.chatSvc.History(r.Context(), sessionID, 10)
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	profile := h.loadProfile(r.Context(), payload.PatientID)

	if err := h.chatSvc.SaveMessage(r.Context(), chatmodel.Message{
		SessionID: sessionID,
		Sender:    chatmodel.SenderUser,
		Content:   payload.Message,
	}); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	if r.URL.Query().Get("stream") == "1" && h.aiSvc.StreamingEnabled() {
		h.streamReply(w, r, sessionID, profile, history, payload.Message)
		return
	}

	reply, err := h.aiSvc.GenerateResponse(r.Context(), sessionID, profile, history, payload.Message)
	if err != nil {
		log.Printf("[chat] assistant error for session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "assistant failed to respond")
		return
	}

	if err := h.chatSvc.SaveMessage(r.Context(), chatmodel.Message{
		SessionID: sessionID,
		Sender:    chatmodel.SenderBot,
		Content:   reply,
	}); err != nil {
		log.Printf("[chat] failed to archive reply for session=%s: %v", sessionID, err)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"response":  reply,
		"sessionId": sessionID,
	})
}

// streamReply forwards model chunks as SSE and archives the full reply at the
// end of the stream.
func (h *Handler) streamReply(w http.ResponseWriter, r *http.Request, sessionID string, profile *patient.Profile, history []chatmodel.Message, userMessage string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stream, err := h.aiSvc.StreamResponse(r.Context(), profile, history, userMessage)
	if err != nil {
		log.Printf("[chat] stream error for session=%s: %v", sessionID, err)
		utils.RespondError(w, http.StatusInternalServerError, "assistant failed to respond")
		return
	}
	defer stream.Close()

	utils.SetupSSEHeaders(w)

	var full strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("[chat] stream recv error for session=%s: %v", sessionID, err)
			break
		}
		full.WriteString(chunk.Content)
		utils.SendSSEChunk(w, flusher, map[string]string{"delta": chunk.Content})
	}

	utils.SendSSEEvent(w, flusher, "done", map[string]string{"sessionId": sessionID})

	if full.Len() > 0 {
		if err := h.chatSvc.SaveMessage(r.Context(), chatmodel.Message{
			SessionID: sessionID,
			Sender:    chatmodel.SenderBot,
			Content:   full.String(),
		}); err != nil {
			log.Printf("[chat] failed to archive streamed reply for session=%s: %v", sessionID, err)
		}
	}
}

// handleCreateSession creates a conversation session.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PatientID string `json:"patientId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.PatientID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleListMessages returns the archived transcript of a session.
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chatservice.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

func (h *Handler) loadProfile(ctx context.Context, patientID string) *patient.Profile {
	if h.profiles == nil || patientID == "" {
		return nil
	}

	profile, err := h.profiles.Profile(ctx, patientID)
	if err != nil {
		return nil
	}
	return &profile
}
