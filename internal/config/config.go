package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the Memora chat relay bot.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	// Room transport. When RoomURL is empty the bot runs without joining a
	// room; the HTTP API (token issuance, health, metrics) stays available.
	RoomURL     string
	RoomName    string
	RoomToken   string
	BotIdentity string

	// Generative backend. A missing API key selects the template generator.
	GeminiAPIKey    string
	GeminiModel     string
	GenerateTimeout time.Duration

	// Memory backend. A missing DatabaseURL selects the local file store.
	DatabaseURL        string
	MemoryPath         string
	MemoryEmbeddingDim int

	// Token issuance for room clients.
	TokenSigningKey string
	TokenTTL        time.Duration
}

// Load reads environment variables and applies safe defaults.
//
// Absence of generative or memory credentials is not an error: the pipeline
// degrades to its substitute backends instead of refusing to start.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("APP_METRICS_NAMESPACE", "memora"),
		RoomURL:            trimmedEnv("ROOM_URL"),
		RoomName:           envOrDefault("ROOM_NAME", "memora"),
		RoomToken:          trimmedEnv("ROOM_TOKEN"),
		BotIdentity:        envOrDefault("BOT_IDENTITY", "AI-Assistant"),
		GeminiAPIKey:       trimmedEnv("GEMINI_API_KEY"),
		GeminiModel:        envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		DatabaseURL:        trimmedEnv("DATABASE_URL"),
		MemoryPath:         trimmedEnv("MEMORY_PATH"),
		TokenSigningKey:    trimmedEnv("TOKEN_SIGNING_KEY"),
		MemoryEmbeddingDim: 768,
		GenerateTimeout:    10 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		TokenTTL:           6 * time.Hour,
	}

	if cfg.MemoryPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.MemoryPath = filepath.Join(home, ".memora", "memory.json")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GenerateTimeout, err = durationFromEnv("GENERATE_TIMEOUT", cfg.GenerateTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TokenTTL, err = durationFromEnv("TOKEN_TTL", cfg.TokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryEmbeddingDim, err = intFromEnv("MEMORY_EMBEDDING_DIM", cfg.MemoryEmbeddingDim)
	if err != nil {
		return Config{}, err
	}

	if cfg.BotIdentity == "" {
		return Config{}, fmt.Errorf("BOT_IDENTITY must not be empty")
	}
	if cfg.GenerateTimeout < time.Second {
		return Config{}, fmt.Errorf("GENERATE_TIMEOUT must be at least 1s")
	}
	if cfg.MemoryEmbeddingDim <= 0 {
		return Config{}, fmt.Errorf("MEMORY_EMBEDDING_DIM must be positive")
	}
	if cfg.TokenTTL < time.Minute {
		return Config{}, fmt.Errorf("TOKEN_TTL must be at least 1m")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
