package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config collects everything the service reads from the environment.
type Config struct {
	Port          string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	WhisperModel  string
	ChatModel     string
	FFmpegPath    string
	TempDir       string
	MaxUploadMB   int
	Workers       int
	JobQueueSize  int
}

// Load reads configuration from the environment, with a best-effort .env
// file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		WhisperModel:  os.Getenv("WHISPER_MODEL"),
		ChatModel:     os.Getenv("CHAT_MODEL"),
		FFmpegPath:    getenv("FFMPEG_PATH", "ffmpeg"),
		TempDir:       os.Getenv("TEMP_DIR"),
		MaxUploadMB:   getenvInt("MAX_UPLOAD_MB", 200),
		Workers:       getenvInt("PIPELINE_WORKERS", 4),
		JobQueueSize:  getenvInt("PIPELINE_QUEUE_SIZE", 32),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// MaxUploadBytes is the upload cap in bytes, used for both the Fiber body
// limit and the pre-pipeline input gate.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
