package agent

import (
	"context"
	"encoding/json"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Tool is the interface that all tools must implement
type Tool interface {
	// GetName returns the tool's name
	GetName() string

	// GetDescription returns the tool's description, used only for model guidance
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters
	GetParameters() *jsonschema.Schema

	// Execute runs the tool with the given raw arguments. Argument and domain
	// failures are reported through ToolResponse.IsError; a non-nil error is
	// reserved for broken tool plumbing.
	Execute(ctx context.Context, input json.RawMessage) (*ToolResponse, error)
}

// ToolResponse is the structured outcome of one tool execution.
type ToolResponse struct {
	Content []byte `json:"content"`
	IsError bool   `json:"is_error"`
}
