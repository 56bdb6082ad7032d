// Package config reads service settings from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"social-dashboard-backend/internal/chat"
)

// Config holds every runtime setting of the service.
type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string
	RedisURL    string
	CORSOrigins []string

	// TrustedProxies lists proxies whose X-Forwarded-For is believed. Empty
	// means the remote address is always the client IP.
	TrustedProxies []string

	LangflowURL     string
	LangflowToken   string
	LangflowPayload chat.Payload
	LangflowTweaks  map[string]map[string]any
	ChatTimeout     time.Duration

	MockCount int
	MockSeed  uint64
}

// LoadDotEnv loads a .env file when present. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}
}

// Load builds a Config from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         os.Getenv("GIN_MODE"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "*")),
		TrustedProxies:  splitList(os.Getenv("TRUSTED_PROXIES")),
		LangflowURL:     os.Getenv("LANGFLOW_URL"),
		LangflowToken:   os.Getenv("LANGFLOW_TOKEN"),
		LangflowPayload: chat.Payload(getEnv("LANGFLOW_PAYLOAD", string(chat.PayloadSimple))),
		ChatTimeout:     30 * time.Second,
		MockCount:       200,
		MockSeed:        uint64(time.Now().UnixNano()),
	}

	switch cfg.LangflowPayload {
	case chat.PayloadSimple, chat.PayloadFlow:
	default:
		return Config{}, fmt.Errorf("invalid LANGFLOW_PAYLOAD %q: must be %q or %q", cfg.LangflowPayload, chat.PayloadSimple, chat.PayloadFlow)
	}

	if raw := os.Getenv("LANGFLOW_TWEAKS"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.LangflowTweaks); err != nil {
			return Config{}, fmt.Errorf("invalid LANGFLOW_TWEAKS: %w", err)
		}
	}

	if raw := os.Getenv("CHAT_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CHAT_TIMEOUT: %w", err)
		}
		cfg.ChatTimeout = d
	}

	if raw := os.Getenv("MOCK_COUNT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid MOCK_COUNT %q", raw)
		}
		cfg.MockCount = n
	}

	if raw := os.Getenv("MOCK_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MOCK_SEED: %w", err)
		}
		cfg.MockSeed = seed
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
