// Package tools assembles the dive agent's toolbox.
package tools

import (
	"log/slog"

	"github.com/reefbound/diveagent/src/agent"
	"github.com/reefbound/diveagent/src/diveagent/tools/tool_fetchanalysis"
	"github.com/reefbound/diveagent/src/diveagent/tools/tool_updatedive"
	"github.com/reefbound/diveagent/src/session"
	"github.com/reefbound/diveagent/src/store"
)

// NewToolbox builds the toolbox for one session. Which of these tools the
// model actually sees on a given turn is decided by the session's exposure
// policy, not by registration.
func NewToolbox(sess *session.Session, objects store.ObjectStore, logger *slog.Logger) (*agent.Toolbox, error) {
	tb := agent.NewToolbox()
	tb.RegisterMiddleware(agent.LoggingMiddleware(logger.With("component", "toolbox")))

	updateTool, err := tool_updatedive.Tool(sess, objects, logger)
	if err != nil {
		return nil, err
	}
	if err := tb.RegisterTool(updateTool); err != nil {
		return nil, err
	}

	fetchTool, err := tool_fetchanalysis.Tool(sess, objects, logger)
	if err != nil {
		return nil, err
	}
	if err := tb.RegisterTool(fetchTool); err != nil {
		return nil, err
	}

	return tb, nil
}
