package controller

// TurnState represents where a turn is within its lifecycle. A turn moves
// Idle → AwaitingModel → Responding and, when the model requests a tool,
// on through DispatchingTool → AwaitingFollowUp before producing the
// terminal reply.
type TurnState int

const (
	// StateIdle means no work has started for this turn.
	StateIdle TurnState = iota
	// StateAwaitingModel means a gateway request is in flight.
	StateAwaitingModel
	// StateResponding means the model returned content being examined.
	StateResponding
	// StateDispatchingTool means a requested tool call is executing.
	StateDispatchingTool
	// StateAwaitingFollowUp means the model is being re-invoked with the
	// tool result and tool use disabled.
	StateAwaitingFollowUp
)

// String returns the state name for logging.
func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingModel:
		return "awaiting_model"
	case StateResponding:
		return "responding"
	case StateDispatchingTool:
		return "dispatching_tool"
	case StateAwaitingFollowUp:
		return "awaiting_follow_up"
	default:
		return "unknown"
	}
}
