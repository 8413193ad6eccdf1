package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/joho/godotenv"
	"github.com/medmentor/backend/internal/config"
	"github.com/medmentor/backend/internal/handler"
	aiservice "github.com/medmentor/backend/internal/service/ai"
	chatservice "github.com/medmentor/backend/internal/service/chat"
	notesservice "github.com/medmentor/backend/internal/service/notes"
	notifyservice "github.com/medmentor/backend/internal/service/notify"
	patientservice "github.com/medmentor/backend/internal/service/patient"
	"github.com/medmentor/backend/internal/storage/profilestore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Chat archive
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.ChatArchivePath), 0o755); err != nil {
		log.Fatalf("failed to create chat archive directory: %v", err)
	}
	chatStore, err := chatservice.NewSQLiteStore(cfg.Storage.ChatArchivePath)
	if err != nil {
		log.Fatalf("failed to open chat archive: %v", err)
	}
	defer chatStore.Close()
	chatSvc := chatservice.NewService(chatStore)

	// Patient profiles
	profileStore, err := profilestore.Open(cfg.Storage.ProfileDir)
	if err != nil {
		log.Fatalf("failed to open profile store: %v", err)
	}
	defer profileStore.Close()
	patientSvc := patientservice.NewService(profileStore)

	// AI assistant
	aiSvc, err := aiservice.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize assistant service: %v", err)
	}
	if cfg.AI.Enabled() {
		log.Println("assistant model initialized successfully")
	}

	// Visit notes pipeline
	var notesSvc *notesservice.Service
	if cfg.Transcription.Enabled {
		var chatModel model.ChatModel
		if aiSvc != nil {
			chatModel = aiSvc.GetChatModel()
		}
		notesSvc = notesservice.NewService(notesservice.NewWhisperProvider(cfg.Transcription), chatModel)
		log.Println("transcription service initialized successfully")
	} else {
		log.Println("transcription credentials not configured, visit notes disabled")
	}

	// Spoken notifications
	var notifySvc *notifyservice.Service
	if cfg.TTS.Enabled {
		notifySvc = notifyservice.NewService(notifyservice.NewElevenLabsProvider(cfg.TTS), cfg.TTS.AudioDir)
		log.Println("notification service initialized successfully")
	} else {
		log.Println("tts credentials not configured, spoken notifications disabled")
	}

	router := handler.NewRouter(chatSvc, aiSvc, notesSvc, patientSvc, notifySvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MedMentor backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
