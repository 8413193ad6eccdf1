package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every service setting.
type Config struct {
	Server        ServerConfig
	AI            AIConfig
	Transcription TranscriptionConfig
	TTS           TTSConfig
	Storage       StorageConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:        server,
		AI:            ai,
		Transcription: loadTranscriptionConfig(),
		TTS:           loadTTSConfig(),
		Storage:       loadStorageConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	// Accept ":5000" or "127.0.0.1:5000" as-is.
	if strings.Contains(port, ":") {
		return ServerConfig{Addr: port}, nil
	}
	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the assistant chat model.
type AIConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	StreamResponse bool
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("assistant model credentials missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	stream, err := parseBoolEnv("ARK_STREAM", false)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		StreamResponse: stream,
	}, nil
}

// TranscriptionConfig describes the external speech-to-text provider.
type TranscriptionConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Enabled bool
}

func loadTranscriptionConfig() TranscriptionConfig {
	apiKey := strings.TrimSpace(os.Getenv("TRANSCRIPTION_API_KEY"))
	baseURL := getEnvOrDefault("TRANSCRIPTION_BASE_URL", "https://api.openai.com/v1")

	return TranscriptionConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   getEnvOrDefault("TRANSCRIPTION_MODEL", "whisper-1"),
		Enabled: apiKey != "",
	}
}

// TTSConfig describes the text-to-speech provider used for spoken
// notifications.
type TTSConfig struct {
	BaseURL  string
	APIKey   string
	VoiceID  string
	Model    string
	AudioDir string
	Enabled  bool
}

func loadTTSConfig() TTSConfig {
	apiKey := strings.TrimSpace(os.Getenv("TTS_API_KEY"))

	return TTSConfig{
		BaseURL:  getEnvOrDefault("TTS_BASE_URL", "https://api.elevenlabs.io"),
		APIKey:   apiKey,
		VoiceID:  getEnvOrDefault("TTS_VOICE_ID", "JBFqnCBsd6RMkjVDRZzb"),
		Model:    getEnvOrDefault("TTS_MODEL", "eleven_multilingual_v2"),
		AudioDir: getEnvOrDefault("TTS_AUDIO_DIR", "data/audio"),
		Enabled:  apiKey != "",
	}
}

// StorageConfig locates the on-disk stores.
type StorageConfig struct {
	ChatArchivePath string
	ProfileDir      string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		ChatArchivePath: getEnvOrDefault("CHAT_ARCHIVE_PATH", "data/chat.db"),
		ProfileDir:      getEnvOrDefault("PROFILE_STORE_DIR", "data/profiles"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
