package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Value string `json:"value" required:"true"`
	Count int    `json:"count,omitempty"`
}

type echoOutput struct {
	Echoed string `json:"echoed"`
}

func newEchoTool(t *testing.T) *GenericTool[echoInput, echoOutput] {
	t.Helper()
	tool, err := NewGenericTool("echo", "echoes its input", func(ctx context.Context, in echoInput) (echoOutput, error) {
		return echoOutput{Echoed: in.Value}, nil
	})
	require.NoError(t, err)
	return tool
}

func TestGenericToolExecute(t *testing.T) {
	tool := newEchoTool(t)

	resp, err := tool.Execute(context.Background(), json.RawMessage(`{"value":"hello"}`))
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.JSONEq(t, `{"echoed":"hello"}`, string(resp.Content))
}

func TestGenericToolRejectsUnknownFields(t *testing.T) {
	tool := newEchoTool(t)

	resp, err := tool.Execute(context.Background(), json.RawMessage(`{"value":"x","bogus":true}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)

	var env faultEnvelope
	require.NoError(t, json.Unmarshal(resp.Content, &env))
	assert.Equal(t, CodeInvalidArguments, env.Error.Code)
}

func TestGenericToolRejectsMalformedJSON(t *testing.T) {
	tool := newEchoTool(t)

	resp, err := tool.Execute(context.Background(), json.RawMessage(`{"value":`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)
}

func TestGenericToolMissingRequiredField(t *testing.T) {
	tool := newEchoTool(t)

	resp, err := tool.Execute(context.Background(), json.RawMessage(`{"count":2}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)

	var env faultEnvelope
	require.NoError(t, json.Unmarshal(resp.Content, &env))
	assert.Equal(t, CodeSchemaViolation, env.Error.Code)
	assert.Equal(t, "value", env.Error.Field)
}

func TestGenericToolFaultPassthrough(t *testing.T) {
	tool, err := NewGenericTool("failing", "always fails", func(ctx context.Context, in echoInput) (echoOutput, error) {
		return echoOutput{}, NewFault(CodeNotFound, "", "nothing here")
	})
	require.NoError(t, err)

	resp, err := tool.Execute(context.Background(), json.RawMessage(`{"value":"x"}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)

	var env faultEnvelope
	require.NoError(t, json.Unmarshal(resp.Content, &env))
	assert.Equal(t, CodeNotFound, env.Error.Code)
	assert.Equal(t, "nothing here", env.Error.Message)
}

func TestGenericToolWrapsPlainErrors(t *testing.T) {
	tool, err := NewGenericTool("failing", "always fails", func(ctx context.Context, in echoInput) (echoOutput, error) {
		return echoOutput{}, errors.New("boom")
	})
	require.NoError(t, err)

	resp, err := tool.Execute(context.Background(), json.RawMessage(`{"value":"x"}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)

	var env faultEnvelope
	require.NoError(t, json.Unmarshal(resp.Content, &env))
	assert.Equal(t, CodeToolError, env.Error.Code)
}

func TestNewGenericToolRejectsNonStructInput(t *testing.T) {
	_, err := NewGenericTool("bad", "bad input type", func(ctx context.Context, in string) (echoOutput, error) {
		return echoOutput{}, nil
	})
	assert.Error(t, err)
}

func TestGenericToolSchema(t *testing.T) {
	tool := newEchoTool(t)

	schema := tool.GetParameters()
	require.NotNil(t, schema)
	assert.Contains(t, schema.Required, "value")
	assert.Equal(t, "echo", tool.GetName())
	assert.Equal(t, "echoes its input", tool.GetDescription())
}
