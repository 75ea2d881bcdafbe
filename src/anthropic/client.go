// Package anthropic implements the language-model gateway over the Anthropic
// messages API. The client performs one request per call; retry and backoff
// policy belongs to the conversation controller.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/reefbound/diveagent/src/aisdk"
)

const defaultTimeout = 60 * time.Second

var _ aisdk.ModelClient = (*Client)(nil)

// Client is the messages API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new messages API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "anthropic_client")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// messagesRequest is the wire format of a messages API request. Tool choice
// is an object on the wire, not a bare string.
type messagesRequest struct {
	Model     string           `json:"model"`
	System    string           `json:"system,omitempty"`
	Messages  []*aisdk.Message `json:"messages"`
	MaxTokens int              `json:"max_tokens"`
	Tools     []*aisdk.ToolDef `json:"tools,omitempty"`
	ToolChoice *toolChoice     `json:"tool_choice,omitempty"`
}

type toolChoice struct {
	Type string `json:"type"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke sends the transcript and exposed tools to the model and returns the
// ordered content blocks of its reply.
func (c *Client) Invoke(ctx context.Context, req *aisdk.InvokeRequest) (*aisdk.InvokeResponse, error) {
	logger := c.logger.With("method", "Invoke", "model", c.config.Model)

	wireReq := &messagesRequest{
		Model:     c.config.Model,
		System:    req.System,
		Messages:  wireMessages(req.Messages),
		MaxTokens: req.MaxTokens,
	}
	if wireReq.MaxTokens == 0 {
		wireReq.MaxTokens = c.config.MaxTokens
	}
	if len(req.Tools) > 0 && req.ToolChoice != aisdk.ToolChoiceNone {
		wireReq.Tools = req.Tools
		choice := req.ToolChoice
		if choice == "" {
			choice = aisdk.ToolChoiceAuto
		}
		wireReq.ToolChoice = &toolChoice{Type: choice}
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/messages", body)
	if err != nil {
		return nil, err
	}

	logger.Debug("sending model invocation", "messages", len(req.Messages), "tools", len(wireReq.Tools))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	var result aisdk.InvokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	logger.Info("model invocation successful",
		"stop_reason", result.StopReason,
		"usage_output", result.Usage.OutputTokens)
	return &result, nil
}

// wireMessages maps the internal tool_result role onto the user role the API
// expects; the transcript itself is never rewritten.
func wireMessages(messages []*aisdk.Message) []*aisdk.Message {
	out := make([]*aisdk.Message, 0, len(messages))
	for _, m := range messages {
		if m == nil {
			continue
		}
		if m.Role == aisdk.RoleToolResult {
			out = append(out, &aisdk.Message{Role: aisdk.RoleUser, Content: m.Content})
			continue
		}
		out = append(out, m)
	}
	return out
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RequestID:  resp.Header.Get("request-id"),
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
		RequestID:  resp.Header.Get("request-id"),
	}
}
