package transcription

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	notesmodel "github.com/medmentor/backend/internal/model/notes"
	notesservice "github.com/medmentor/backend/internal/service/notes"
)

// WebSocketHandler streams visit recordings over a long-lived connection. The
// client pushes binary audio chunks while recording and a "stop" control
// message to finalize; the processed notes come back as a JSON message.
type WebSocketHandler struct {
	notesSvc *notesservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket transcription handler.
func NewWebSocketHandler(notesSvc *notesservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		notesSvc: notesSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes registers the websocket route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/transcription/ws", h.handleWebSocket)
}

type controlMessage struct {
	Type     string `json:"type"`
	Filename string `json:"filename"`
}

type wsError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[transcription] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var buffer []byte
	filename := ""

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[transcription] websocket read error: %v", err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			buffer = append(buffer, payload...)

		case websocket.TextMessage:
			var ctrl controlMessage
			if err := json.Unmarshal(payload, &ctrl); err != nil {
				h.writeError(conn, "invalid control message")
				continue
			}

			switch ctrl.Type {
			case "start":
				buffer = buffer[:0]
				filename = ctrl.Filename

			case "stop":
				if len(buffer) == 0 {
					h.writeError(conn, "no audio received")
					continue
				}

				result, err := h.notesSvc.Process(r.Context(), buffer, filename)
				if err != nil {
					log.Printf("[transcription] websocket processing error: %v", err)
					h.writeError(conn, "failed to process the recording")
					buffer = buffer[:0]
					continue
				}

				segment := notesmodel.TranscriptSegment{
					Text:      result.Transcription,
					IsFinal:   true,
					CreatedAt: time.Now(),
				}
				if err := conn.WriteJSON(map[string]any{
					"type":    "transcript",
					"segment": segment,
				}); err != nil {
					log.Printf("[transcription] websocket write error: %v", err)
					return
				}

				if err := conn.WriteJSON(map[string]any{
					"type":  "notes",
					"notes": result,
				}); err != nil {
					log.Printf("[transcription] websocket write error: %v", err)
					return
				}
				buffer = buffer[:0]

			default:
				h.writeError(conn, "unknown control type: "+ctrl.Type)
			}
		}
	}
}

func (h *WebSocketHandler) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(wsError{Type: "error", Error: message}); err != nil {
		log.Printf("[transcription] failed to send websocket error: %v", err)
	}
}
