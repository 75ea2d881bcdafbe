package controller

import "errors"

// Fixed user-facing replies. Gateway failures never escape a turn; they
// surface as one of these.
const (
	ApologyBusy    = "🤖 Sorry, I'm currently experiencing high demand. Please try again."
	ApologyError   = "🤖 Sorry, I experienced an error. Please try again."
	ApologyNoReply = "🤖 Sorry, I didn't catch that."
)

var (
	// Config validation errors
	ErrModelClientRequired = errors.New("model client is required")
	ErrToolboxRequired     = errors.New("toolbox is required")
	ErrSessionRequired     = errors.New("session is required")
)
