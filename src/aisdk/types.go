// Package aisdk defines the provider-neutral types for the language-model
// gateway boundary: transcript messages, tool definitions, and the
// request/response shapes of a single model invocation.
package aisdk

import (
	"encoding/json"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Recognized transcript roles.
const (
	RoleUser       = "user"
	RoleAssistant  = "assistant"
	RoleToolResult = "tool_result"
)

// Content block types returned by the gateway.
const (
	BlockTypeText    = "text"
	BlockTypeToolUse = "tool_use"
)

// Tool choice policies.
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// Message represents a single entry in a conversation transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock is one ordered element of a model response: either plain text
// or a structured tool-invocation request.
type ContentBlock struct {
	Type string `json:"type"`
	// Text is set when Type is "text".
	Text string `json:"text,omitempty"`
	// ID, Name and Input are set when Type is "tool_use".
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// ToolDef describes a callable capability offered to the model.
type ToolDef struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"input_schema"`
}

// InvokeRequest is a single model invocation: system instructions, the
// ordered transcript, and the tools currently exposed.
type InvokeRequest struct {
	System     string     `json:"system,omitempty"`
	Messages   []*Message `json:"messages"`
	MaxTokens  int        `json:"max_tokens,omitempty"`
	Tools      []*ToolDef `json:"tools,omitempty"`
	ToolChoice string     `json:"tool_choice,omitempty"`
}

// InvokeResponse carries the ordered content blocks of a model reply.
type InvokeResponse struct {
	ID         string         `json:"id,omitempty"`
	Model      string         `json:"model,omitempty"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason,omitempty"`
	Usage      Usage          `json:"usage,omitempty"`
}

// Usage reports token accounting for an invocation.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
}

// FirstText returns the first text block's content, or "".
func (r *InvokeResponse) FirstText() string {
	for _, b := range r.Content {
		if b.Type == BlockTypeText {
			return b.Text
		}
	}
	return ""
}

// FirstToolUse returns the first tool-use block, or nil.
func (r *InvokeResponse) FirstToolUse() *ContentBlock {
	for i := range r.Content {
		if r.Content[i].Type == BlockTypeToolUse {
			return &r.Content[i]
		}
	}
	return nil
}

// ValidRole reports whether role is one of the recognized transcript roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleAssistant, RoleToolResult:
		return true
	}
	return false
}
