package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"imgtext/pkg/ocr"
	"imgtext/pkg/ocr/libtess"
)

// Config is the process-wide configuration, built once at startup from
// .env, the environment and command-line flags (in increasing priority).
type Config struct {
	Engine       string
	TesseractCmd string
	Language     string
	EngineConfig string
	Output       string
	LogLevel     string
	LogFormat    string
	Addr         string
}

// ExitError carries a process exit code out of run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// loadConfig reads ./.env (without overriding variables already set) and
// returns the environment-derived defaults.
func loadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Engine:       envOr("IMGTEXT_ENGINE", ocr.EngineTesseract),
		TesseractCmd: os.Getenv("IMGTEXT_TESSERACT_CMD"),
		Language:     envOr("IMGTEXT_LANG", ocr.DefaultLanguage),
		LogLevel:     envOr("IMGTEXT_LOG_LEVEL", "warn"),
		LogFormat:    envOr("IMGTEXT_LOG_FORMAT", "text"),
		Addr:         envOr("IMGTEXT_ADDR", ":8081"),
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// validate checks the values that are not passed through to tesseract.
func (c *Config) validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch c.Engine {
	case ocr.EngineTesseract, ocr.EngineGosseract:
	default:
		return &ExitError{Code: 2, Message: fmt.Errorf("%w: %q", ocr.ErrUnknownEngine, c.Engine).Error()}
	}
	return nil
}

// newEngine builds the OCR backend named by cfg.Engine.
func newEngine(cfg Config) (ocr.Engine, error) {
	switch cfg.Engine {
	case ocr.EngineTesseract:
		return ocr.NewCLIEngine(cfg.TesseractCmd), nil
	case ocr.EngineGosseract:
		return libtess.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", ocr.ErrUnknownEngine, cfg.Engine)
}

// newLogger creates a slog.Logger writing to w at the given level and
// format. It does not touch the global logger.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
