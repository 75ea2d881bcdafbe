package agent

import "fmt"

// Machine-readable fault codes. Validation failures are distinct from
// persistence failures so the caller knows whether to re-enter data.
const (
	CodeInvalidArguments      = "invalid_arguments"
	CodeSchemaViolation       = "schema_violation"
	CodeIncompleteInitialData = "incomplete_initial_data"
	CodeNotFound              = "not_found"
	CodePersistenceFailure    = "persistence_failure"
	CodeUnknownTool           = "unknown_tool"
	CodeToolError             = "tool_error"
)

// Fault is a structured tool failure fed back into the conversation. Code is
// machine-readable; Field names the offending parameter when one exists.
type Fault struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", f.Code, f.Field, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// NewFault creates a structured tool failure.
func NewFault(code, field, message string) *Fault {
	return &Fault{Code: code, Field: field, Message: message}
}

// faultEnvelope is the wire shape of an error result.
type faultEnvelope struct {
	Error *Fault `json:"error"`
}
