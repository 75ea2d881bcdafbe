package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNamedTool(t *testing.T, name string) Tool {
	t.Helper()
	tool, err := NewGenericTool(name, "test tool", func(ctx context.Context, in struct{}) (struct{}, error) {
		return struct{}{}, nil
	})
	require.NoError(t, err)
	return tool
}

func TestToolboxRegistration(t *testing.T) {
	tb := NewToolbox()

	require.NoError(t, tb.RegisterTool(newNamedTool(t, "alpha")))
	require.NoError(t, tb.RegisterTool(newNamedTool(t, "beta")))

	assert.True(t, tb.HasTool("alpha"))
	assert.False(t, tb.HasTool("gamma"))

	tool, ok := tb.GetTool("beta")
	require.True(t, ok)
	assert.Equal(t, "beta", tool.GetName())
}

func TestToolboxDuplicateName(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.RegisterTool(newNamedTool(t, "alpha")))
	assert.Error(t, tb.RegisterTool(newNamedTool(t, "alpha")))
}

func TestToolboxOrderPreserved(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.RegisterTool(newNamedTool(t, "zeta")))
	require.NoError(t, tb.RegisterTool(newNamedTool(t, "alpha")))

	tools := tb.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "zeta", tools[0].GetName())
	assert.Equal(t, "alpha", tools[1].GetName())
}

func TestToolboxUnknownToolIsErrorResult(t *testing.T) {
	tb := NewToolbox()

	resp, err := tb.ExecuteTool(context.Background(), "ghost", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)

	var env faultEnvelope
	require.NoError(t, json.Unmarshal(resp.Content, &env))
	assert.Equal(t, CodeUnknownTool, env.Error.Code)
}

func TestToolboxMiddlewareOrder(t *testing.T) {
	tb := NewToolbox()
	require.NoError(t, tb.RegisterTool(newNamedTool(t, "alpha")))

	var calls []string
	mw := func(label string) ToolMiddleware {
		return func(next ToolExecutor) ToolExecutor {
			return func(ctx context.Context, name string, input json.RawMessage) (*ToolResponse, error) {
				calls = append(calls, label)
				return next(ctx, name, input)
			}
		}
	}

	tb.RegisterMiddleware(mw("outer"))
	tb.RegisterMiddleware(mw("inner"))

	_, err := tb.ExecuteTool(context.Background(), "alpha", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, calls)
}
