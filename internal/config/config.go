// ABOUTME: Centralized configuration for the studyrag backend
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"studyrag/internal/storage"
)

// Config holds all configuration for the backend and CLI.
type Config struct {
	// HTTP settings
	Port               string
	CorsAllowedOrigins string
	Environment        string
	LogFilePath        string

	// Mistral (OpenAI-compatible) API settings
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration

	// Retrieval settings
	MaxDocChunks     int
	ChunkMaxChars    int
	AutoWikiArticles int

	// Storage
	DBPath string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("APP_PORT", "8000"),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		Environment:        getEnv("GO_ENV", "development"),
		LogFilePath:        getEnv("LOG_FILE_PATH", "logs/studyrag.log"),
		APIKey:             os.Getenv("MISTRAL_API_KEY"),
		BaseURL:            getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "mistral-embed"),
		ChatModel:          getEnv("CHAT_MODEL", "mistral-small-latest"),
		Timeout:            getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		MaxDocChunks:       getEnvInt("MAX_DOC_CHUNKS", 10),
		ChunkMaxChars:      getEnvInt("CHUNK_MAX_CHARS", 500),
		AutoWikiArticles:   getEnvInt("AUTO_WIKI_ARTICLES", 0),
		DBPath:             getEnv("STUDYRAG_DB", storage.DefaultDBPath()),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxDocChunks < 0 {
		return fmt.Errorf("MAX_DOC_CHUNKS must be >= 0, got %d", c.MaxDocChunks)
	}
	if c.ChunkMaxChars <= 0 {
		return fmt.Errorf("CHUNK_MAX_CHARS must be positive, got %d", c.ChunkMaxChars)
	}
	if c.AutoWikiArticles < 0 {
		return fmt.Errorf("AUTO_WIKI_ARTICLES must be >= 0, got %d", c.AutoWikiArticles)
	}
	return nil
}

// IsProduction reports whether the process runs with a production profile.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
