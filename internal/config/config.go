package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	ExtractorURL   string
	ExtractTimeout int
	MaxUploadMB    int
	LogLevel       string
	LogFormat      string
}

func Load() (Config, error) {
	values := map[string]string{}
	if _, err := os.Stat(".env"); err == nil {
		fileValues, err := godotenv.Read(".env")
		if err != nil {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
		values = fileValues
	} else if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat .env: %w", err)
	}

	cfg := Config{
		Port:           8080,
		ExtractTimeout: 120,
		MaxUploadMB:    25,
		LogLevel:       "info",
		LogFormat:      "console",
	}

	if portRaw := firstNonEmpty(os.Getenv("PORT"), values["PORT"]); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	cfg.ExtractorURL = firstNonEmpty(os.Getenv("EXTRACTOR_URL"), values["EXTRACTOR_URL"])

	if raw := firstNonEmpty(os.Getenv("EXTRACT_TIMEOUT_SECONDS"), values["EXTRACT_TIMEOUT_SECONDS"]); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid EXTRACT_TIMEOUT_SECONDS: %q", raw)
		}
		cfg.ExtractTimeout = seconds
	}

	if raw := firstNonEmpty(os.Getenv("MAX_UPLOAD_MB"), values["MAX_UPLOAD_MB"]); raw != "" {
		megabytes, err := strconv.Atoi(raw)
		if err != nil || megabytes <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", raw)
		}
		cfg.MaxUploadMB = megabytes
	}

	if level := firstNonEmpty(os.Getenv("LOG_LEVEL"), values["LOG_LEVEL"]); level != "" {
		cfg.LogLevel = level
	}
	if format := firstNonEmpty(os.Getenv("LOG_FORMAT"), values["LOG_FORMAT"]); format != "" {
		cfg.LogFormat = format
	}

	return cfg, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
