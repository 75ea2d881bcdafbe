package agent

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolExecutor is a function type for tool execution
type ToolExecutor func(ctx context.Context, name string, input json.RawMessage) (*ToolResponse, error)

// ToolMiddleware is a function that wraps a ToolExecutor to add functionality.
type ToolMiddleware func(next ToolExecutor) ToolExecutor

// Toolbox handles tool registration and dispatch.
type Toolbox struct {
	tools      map[string]Tool
	order      []string
	middleware []ToolMiddleware
}

// NewToolbox creates a new tool manager.
func NewToolbox() *Toolbox {
	return &Toolbox{
		tools: make(map[string]Tool),
	}
}

// RegisterTool registers a tool. Tool names are unique; a definition is
// immutable once registered.
func (tb *Toolbox) RegisterTool(tool Tool) error {
	if tool.GetName() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if _, exists := tb.tools[tool.GetName()]; exists {
		return fmt.Errorf("tool %s is already registered", tool.GetName())
	}

	tb.tools[tool.GetName()] = tool
	tb.order = append(tb.order, tool.GetName())
	return nil
}

// RegisterMiddleware registers middleware that will be applied to all tool
// executions. Middleware is applied in the order it's registered
// (first registered = outermost layer).
func (tb *Toolbox) RegisterMiddleware(middleware ToolMiddleware) {
	tb.middleware = append(tb.middleware, middleware)
}

// Tools returns the registered tools in registration order.
func (tb *Toolbox) Tools() []Tool {
	out := make([]Tool, 0, len(tb.order))
	for _, name := range tb.order {
		out = append(out, tb.tools[name])
	}
	return out
}

// GetTool returns a specific tool by name.
func (tb *Toolbox) GetTool(name string) (Tool, bool) {
	tool, exists := tb.tools[name]
	return tool, exists
}

// HasTool checks if a tool is available.
func (tb *Toolbox) HasTool(name string) bool {
	_, exists := tb.tools[name]
	return exists
}

// ExecuteTool executes a tool by name with middleware applied. An unknown
// tool name produces an error result, never a Go error.
func (tb *Toolbox) ExecuteTool(ctx context.Context, name string, input json.RawMessage) (*ToolResponse, error) {
	executor := ToolExecutor(func(ctx context.Context, name string, input json.RawMessage) (*ToolResponse, error) {
		tool, exists := tb.tools[name]
		if !exists {
			return errorResponse(NewFault(CodeUnknownTool, "", fmt.Sprintf("unknown tool: %s", name)))
		}
		return tool.Execute(ctx, input)
	})

	for i := len(tb.middleware) - 1; i >= 0; i-- {
		executor = tb.middleware[i](executor)
	}

	return executor(ctx, name, input)
}

// LoggingMiddleware logs tool execution details.
func LoggingMiddleware(logger interface {
	Info(msg string, args ...interface{})
}) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, name string, input json.RawMessage) (*ToolResponse, error) {
			logger.Info("executing tool", "tool", name, "params", string(input))
			result, err := next(ctx, name, input)
			if err != nil {
				logger.Info("tool execution failed", "error", err)
			} else if result != nil && result.IsError {
				logger.Info("tool returned error result", "tool", name)
			} else {
				logger.Info("tool execution completed successfully")
			}
			return result, err
		}
	}
}
