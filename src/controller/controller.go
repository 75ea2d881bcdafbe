// Package controller orchestrates one conversation turn at a time: prompt
// assembly, tool exposure, response parsing, single tool dispatch with a
// follow-up invocation, and retry-on-throttle behavior.
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reefbound/diveagent/src/agent"
	"github.com/reefbound/diveagent/src/aisdk"
	"github.com/reefbound/diveagent/src/diveagent"
	"github.com/reefbound/diveagent/src/session"
)

const (
	defaultMaxAttempts = 4
	defaultBaseDelay   = time.Second
)

// Config configures a Controller.
type Config struct {
	Model   aisdk.ModelClient
	Toolbox *agent.Toolbox
	Logger  *slog.Logger

	// MaxAttempts is the total invocation attempt cap under throttling.
	MaxAttempts int
	// BaseDelay is the first backoff delay; it doubles per attempt.
	BaseDelay time.Duration
	// Sleep is the backoff sleep function, replaceable in tests.
	Sleep func(time.Duration)
}

// Controller drives conversation turns for one or more sessions. It has no
// per-session mutable state of its own, so independent sessions may run
// turns in parallel.
type Controller struct {
	model       aisdk.ModelClient
	toolbox     *agent.Toolbox
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

// New creates a conversation controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Model == nil {
		return nil, ErrModelClientRequired
	}
	if cfg.Toolbox == nil {
		return nil, ErrToolboxRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}

	return &Controller{
		model:       cfg.Model,
		toolbox:     cfg.Toolbox,
		logger:      logger.With("component", "controller"),
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       cfg.Sleep,
	}, nil
}

// StartChat opens a conversation by injecting the start event and obtaining
// the assistant's greeting.
func (c *Controller) StartChat(ctx context.Context, sess *session.Session) (string, error) {
	return c.Turn(ctx, sess, diveagent.EventStartConversation)
}

// Turn processes one user message (or system notification) and returns the
// assistant's reply. Gateway failures are absorbed into fixed apology
// replies; an error is returned only for local input validation or a
// violated gateway contract.
func (c *Controller) Turn(ctx context.Context, sess *session.Session, text string) (string, error) {
	if sess == nil {
		return "", ErrSessionRequired
	}
	if err := sess.Append(aisdk.RoleUser, text); err != nil {
		return "", err
	}

	return c.step(ctx, sess, true, "")
}

// step runs one model invocation and, when a tool call is requested and
// allowed, exactly one tool dispatch followed by a tool-disabled follow-up
// step. Tool dispatch depth is bounded to one per turn.
func (c *Controller) step(ctx context.Context, sess *session.Session, allowTools bool, toolNotice string) (string, error) {
	state := StateIdle
	logger := c.logger.With("session_id", sess.ID)

	skills := sess.ExposedTools()

	// Tools the policy forbids are never offered, even if the model has
	// seen them on an earlier turn.
	var toolDefs []*aisdk.ToolDef
	if allowTools && len(skills) > 0 {
		for _, name := range skills {
			tool, ok := c.toolbox.GetTool(name)
			if !ok {
				return "", fmt.Errorf("exposure policy names unregistered tool %q", name)
			}
			toolDefs = append(toolDefs, agent.ToToolDef(tool))
		}
	}

	choice := aisdk.ToolChoiceAuto
	if !allowTools {
		choice = aisdk.ToolChoiceNone
	}
	req := &aisdk.InvokeRequest{
		System:     diveagent.BuildSystemPrompt(skills, toolNotice),
		Messages:   sess.Transcript(),
		Tools:      toolDefs,
		ToolChoice: choice,
	}

	state = StateAwaitingModel
	logger.Debug("turn state", "state", state, "tools", len(toolDefs))

	resp, err := c.invokeWithRetry(ctx, req)
	if err != nil {
		if errors.Is(err, aisdk.ErrThrottled) {
			logger.Error("max retries exceeded for throttling")
			return ApologyBusy, nil
		}
		logger.Error("gateway error", "error", err)
		return ApologyError, nil
	}

	state = StateResponding
	logger.Debug("turn state", "state", state, "blocks", len(resp.Content))

	preText := resp.FirstText()
	toolUse := resp.FirstToolUse()

	// The model emitted nothing at all: reply with the fixed fallback and
	// leave the session log untouched past the user's message.
	if preText == "" && toolUse == nil {
		return ApologyNoReply, nil
	}

	if toolUse == nil {
		if err := sess.Append(aisdk.RoleAssistant, preText); err != nil {
			return "", err
		}
		return preText, nil
	}

	// A tool announcement arriving when tools are disabled is fake; it is
	// corrected by appending a notice, never by rewriting history.
	if !allowTools {
		logger.Warn("tool call requested while tools disabled", "tool", toolUse.Name)
		correction := fmt.Sprintf("Tool `%s` was not executed: no tools are available on this turn.", toolUse.Name)
		if err := sess.Append(aisdk.RoleToolResult, correction); err != nil {
			return "", err
		}
		if preText == "" {
			return ApologyNoReply, nil
		}
		if err := sess.Append(aisdk.RoleAssistant, preText); err != nil {
			return "", err
		}
		return preText, nil
	}

	state = StateDispatchingTool
	logger.Info("turn state", "state", state, "tool", toolUse.Name)

	result, err := c.toolbox.ExecuteTool(ctx, toolUse.Name, toolUse.Input)
	if err != nil {
		return "", fmt.Errorf("tool dispatch broke: %w", err)
	}

	outcome := "succeeded"
	if result.IsError {
		outcome = "failed"
	}
	notice := fmt.Sprintf("Tool `%s` %s: %s", toolUse.Name, outcome, result.Content)

	if preText != "" {
		if err := sess.Append(aisdk.RoleAssistant, preText); err != nil {
			return "", err
		}
	}
	if err := sess.Append(aisdk.RoleToolResult, notice); err != nil {
		return "", err
	}

	state = StateAwaitingFollowUp
	logger.Debug("turn state", "state", state)

	followUp, err := c.step(ctx, sess, false, notice)
	if err != nil {
		return "", err
	}

	return concatTurnResult(preText, announceToolCall(toolUse), followUp), nil
}

// invokeWithRetry calls the gateway, retrying throttles with exponential
// backoff. Any other failure is returned immediately.
func (c *Controller) invokeWithRetry(ctx context.Context, req *aisdk.InvokeRequest) (*aisdk.InvokeResponse, error) {
	var lastErr error
	delay := c.baseDelay

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("throttling detected, retrying", "attempt", attempt, "delay", delay)
			c.sleep(delay)
			delay *= 2
		}

		resp, err := c.model.Invoke(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, aisdk.ErrThrottled) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// announceToolCall renders the human-readable notice that a tool ran.
func announceToolCall(block *aisdk.ContentBlock) string {
	args := prettyArgs(block.Input)
	return fmt.Sprintf("🔧 Calling `%s` with arguments:\n```json\n%s\n```", block.Name, args)
}

func prettyArgs(raw json.RawMessage) string {
	var buf map[string]interface{}
	if err := json.Unmarshal(raw, &buf); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}

// concatTurnResult joins the pre-tool text, the tool announcement and the
// follow-up reply into the turn's final result.
func concatTurnResult(preText, announcement, followUp string) string {
	out := announcement
	if preText != "" {
		out = preText + "\n\n" + out
	}
	if followUp != "" {
		out = out + "\n\n" + followUp
	}
	return out
}
