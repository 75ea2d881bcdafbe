// Package config loads and validates the assistant's configuration from
// defaults, an optional JSON config file, and environment overrides.
package config

import "fmt"

// Config is the full application configuration.
type Config struct {
	API      APIConfig      `json:"api"`
	Store    StoreConfig    `json:"store"`
	Chat     ChatConfig     `json:"chat"`
	Pipeline PipelineConfig `json:"pipeline"`
	Log      LogConfig      `json:"log"`
}

// APIConfig configures the model gateway.
type APIConfig struct {
	APIKey    string `json:"api_key,omitempty"`
	BaseURL   string `json:"base_url,omitempty" validate:"omitempty,url"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=200000"`
}

// StoreConfig configures the object store backend.
type StoreConfig struct {
	Backend string `json:"backend,omitempty" validate:"omitempty,store_backend"`
	Path    string `json:"path,omitempty"`
}

// ChatConfig configures conversation turn handling.
type ChatConfig struct {
	MaxAttempts int `json:"max_attempts,omitempty" validate:"omitempty,min=1,max=10"`
	BaseDelayMS int `json:"base_delay_ms,omitempty" validate:"omitempty,min=1"`
}

// PipelineConfig configures how long to wait for pipeline output.
type PipelineConfig struct {
	PollIntervalMS int `json:"poll_interval_ms,omitempty" validate:"omitempty,min=1"`
	TimeoutMS      int `json:"timeout_ms,omitempty" validate:"omitempty,min=1"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `json:"level,omitempty" validate:"omitempty,log_level"`
	Format string `json:"format,omitempty" validate:"omitempty,log_format"`
}

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			MaxTokens: 5000,
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    DefaultStorePath(),
		},
		Chat: ChatConfig{
			MaxAttempts: 4,
			BaseDelayMS: 1000,
		},
		Pipeline: PipelineConfig{
			PollIntervalMS: 3000,
			TimeoutMS:      120000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}
