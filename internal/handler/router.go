package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/medmentor/backend/internal/handler/chat"
	"github.com/medmentor/backend/internal/handler/notifyhttp"
	"github.com/medmentor/backend/internal/handler/patienthttp"
	"github.com/medmentor/backend/internal/handler/transcription"
	middlewarePkg "github.com/medmentor/backend/internal/middleware"
	aiservice "github.com/medmentor/backend/internal/service/ai"
	chatservice "github.com/medmentor/backend/internal/service/chat"
	notesservice "github.com/medmentor/backend/internal/service/notes"
	notifyservice "github.com/medmentor/backend/internal/service/notify"
	patientservice "github.com/medmentor/backend/internal/service/patient"
	"github.com/medmentor/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatservice.Service, aiSvc *aiservice.Service, notesSvc *notesservice.Service, patientSvc *patientservice.Service, notifySvc *notifyservice.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chathandler.New(chatSvc, aiSvc, patientSvc)
	patientHandler := patienthttp.New(patientSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		patientHandler.RegisterRoutes(api)

		if notesSvc != nil {
			transcriptionHandler := transcription.New(notesSvc)
			transcriptionHandler.RegisterRoutes(api)
		} else {
			api.Post("/transcription", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "transcription not configured")
			})
		}

		if notifySvc != nil {
			notifyHandler := notifyhttp.New(notifySvc)
			notifyHandler.RegisterRoutes(api)
		} else {
			api.Post("/notify", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "notifications not configured")
			})
		}

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})
	})

	return r
}
