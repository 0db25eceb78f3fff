// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInputExtRequired is returned when LOUDNORM_INPUT_EXT is empty.
	ErrInputExtRequired = errors.New("config: LOUDNORM_INPUT_EXT must not be empty")
	// ErrOutputExtRequired is returned when LOUDNORM_OUTPUT_EXT is empty.
	ErrOutputExtRequired = errors.New("config: LOUDNORM_OUTPUT_EXT must not be empty")
	// ErrResultDirRequired is returned when LOUDNORM_RESULT_DIR is empty.
	ErrResultDirRequired = errors.New("config: LOUDNORM_RESULT_DIR must not be empty")
	// ErrNegativeTimeout is returned when LOUDNORM_TIMEOUT is below zero.
	ErrNegativeTimeout = errors.New("config: LOUDNORM_TIMEOUT must not be negative")
)

// Config holds all configuration for the application.
type Config struct {
	// Tool settings
	FFmpegPath string `env:"LOUDNORM_FFMPEG_PATH" json:"ffmpeg_path,omitempty"`

	// Batch settings
	InputExt  string        `env:"LOUDNORM_INPUT_EXT, default=mp3" json:"input_ext"`
	OutputExt string        `env:"LOUDNORM_OUTPUT_EXT, default=mp3" json:"output_ext"`
	ResultDir string        `env:"LOUDNORM_RESULT_DIR, default=result" json:"result_dir"`
	Timeout   time.Duration `env:"LOUDNORM_TIMEOUT, default=0s" json:"timeout"`
	Strict    bool          `env:"LOUDNORM_STRICT, default=false" json:"strict"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	S3Prefix           string `env:"S3_PREFIX, default=loudnorm" json:"s3_prefix"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=warn" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// The result is not validated; callers apply their overrides and then call
// Validate.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the batch settings are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputExt) == "" {
		return ErrInputExtRequired
	}
	if strings.TrimSpace(c.OutputExt) == "" {
		return ErrOutputExtRequired
	}
	if strings.TrimSpace(c.ResultDir) == "" {
		return ErrResultDirRequired
	}
	if c.Timeout < 0 {
		return ErrNegativeTimeout
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// Logs go to stderr; stdout belongs to the interactive prompts.
func (c *Config) NewLogger() *slog.Logger {
	return c.newLogger(os.Stderr)
}

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{FFmpegPath: %s, InputExt: %s, OutputExt: %s, ResultDir: %s, Timeout: %s, Strict: %t, S3Bucket: %s, S3Region: %s, S3Prefix: %s, LogFormat: %s, LogLevel: %s}",
		c.FFmpegPath,
		c.InputExt,
		c.OutputExt,
		c.ResultDir,
		c.Timeout,
		c.Strict,
		c.S3Bucket,
		c.S3Region,
		c.S3Prefix,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
