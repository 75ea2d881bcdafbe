package anthropic

import "log/slog"

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-3-haiku-20240307"
	defaultMaxTokens = 5000
	apiVersion       = "2023-06-01"
)

// Config holds the gateway client configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Logger    *slog.Logger
}
