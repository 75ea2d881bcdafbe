package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/swaggest/jsonschema-go"
)

// GenericTool is a type-safe tool whose parameter schema is reflected from
// its input struct. Validation is performed locally against the schema; the
// model's own judgment is never trusted.
type GenericTool[TInput any, TOutput any] struct {
	Name        string
	Description string
	InputType   reflect.Type
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput, TOutput]
}

// GenericToolHandler is a type-safe handler function. Returning a *Fault
// produces a structured error result; any other error produces a generic one.
type GenericToolHandler[TInput any, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

// GetName returns the tool's name
func (gt *GenericTool[TInput, TOutput]) GetName() string {
	return gt.Name
}

// GetDescription returns the tool's description
func (gt *GenericTool[TInput, TOutput]) GetDescription() string {
	return gt.Description
}

// GetParameters returns the JSON schema for the tool's parameters
func (gt *GenericTool[TInput, TOutput]) GetParameters() *jsonschema.Schema {
	return gt.Schema
}

// Execute runs the tool with the given raw arguments. Unknown argument
// fields are rejected rather than silently ignored.
func (gt *GenericTool[TInput, TOutput]) Execute(ctx context.Context, raw json.RawMessage) (*ToolResponse, error) {
	var input TInput
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		return errorResponse(NewFault(CodeInvalidArguments, "", fmt.Sprintf("failed to parse input: %v", err)))
	}

	if err := gt.validateRequired(input); err != nil {
		return errorResponse(err)
	}

	output, err := gt.Handler(ctx, input)
	if err != nil {
		return errorResponse(err)
	}

	content, err := json.Marshal(output)
	if err != nil {
		return errorResponse(NewFault(CodeToolError, "", fmt.Sprintf("failed to marshal result: %v", err)))
	}

	return &ToolResponse{Content: content}, nil
}

// errorResponse packages a handler failure as a structured error result.
// Tool failures never cross the executor boundary as Go errors.
func errorResponse(err error) (*ToolResponse, error) {
	var fault *Fault
	if !errors.As(err, &fault) {
		fault = NewFault(CodeToolError, "", err.Error())
	}
	content, mErr := json.Marshal(faultEnvelope{Error: fault})
	if mErr != nil {
		content = []byte(`{"error":{"code":"tool_error","message":"unreportable tool failure"}}`)
	}
	return &ToolResponse{Content: content, IsError: true}, nil
}

// validateRequired checks that required fields are present in the input.
func (gt *GenericTool[TInput, TOutput]) validateRequired(input TInput) error {
	if gt.Schema == nil || gt.Schema.Required == nil {
		return nil
	}

	val := reflect.ValueOf(input)
	typ := val.Type()

	for _, requiredField := range gt.Schema.Required {
		found := false
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			fieldName := strings.Split(field.Tag.Get("json"), ",")[0]

			if fieldName == requiredField {
				found = true
				if val.Field(i).IsZero() {
					return NewFault(CodeSchemaViolation, requiredField, "required field is missing")
				}
				break
			}
		}

		if !found {
			return NewFault(CodeSchemaViolation, requiredField, "required field not found in input struct")
		}
	}

	return nil
}

// NewGenericTool creates a new generic tool with automatic schema generation.
func NewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) (*GenericTool[TInput, TOutput], error) {
	var input TInput
	inputType := reflect.TypeOf(input)

	if inputType.Kind() == reflect.Ptr {
		if inputType.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Elem().Kind())
		}
	} else if inputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool input type must be a struct, got %s", inputType.Kind())
	}

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &GenericTool[TInput, TOutput]{
		Name:        name,
		Description: description,
		InputType:   inputType,
		Schema:      &schema,
		Handler:     handler,
	}, nil
}

// MustNewGenericTool creates a new generic tool and panics on error.
func MustNewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) Tool {
	tool, err := NewGenericTool(name, description, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to create generic tool: %v", err))
	}
	return tool
}

// Ensure GenericTool implements the Tool interface
var _ Tool = (*GenericTool[struct{}, struct{}])(nil)
