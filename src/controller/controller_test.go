package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefbound/diveagent/src/aisdk"
	"github.com/reefbound/diveagent/src/diveagent/tools"
	"github.com/reefbound/diveagent/src/session"
	"github.com/reefbound/diveagent/src/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptedClient replays a fixed sequence of responses and errors, recording
// every request it receives.
type scriptedClient struct {
	responses []*aisdk.InvokeResponse
	errs      []error
	requests  []*aisdk.InvokeRequest
}

func (s *scriptedClient) Invoke(ctx context.Context, req *aisdk.InvokeRequest) (*aisdk.InvokeResponse, error) {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return nil, err
	}
	var resp *aisdk.InvokeResponse
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	if resp == nil {
		resp = &aisdk.InvokeResponse{}
	}
	return resp, nil
}

func textResponse(text string) *aisdk.InvokeResponse {
	return &aisdk.InvokeResponse{Content: []aisdk.ContentBlock{{Type: aisdk.BlockTypeText, Text: text}}}
}

func newController(t *testing.T, model aisdk.ModelClient, sess *session.Session) (*Controller, *[]time.Duration) {
	t.Helper()
	objects := store.NewFileStore(afero.NewMemMapFs(), "/objects")
	toolbox, err := tools.NewToolbox(sess, objects, discardLogger())
	require.NoError(t, err)

	var sleeps []time.Duration
	ctrl, err := New(Config{
		Model:     model,
		Toolbox:   toolbox,
		Logger:    discardLogger(),
		BaseDelay: time.Second,
		Sleep:     func(d time.Duration) { sleeps = append(sleeps, d) },
	})
	require.NoError(t, err)
	return ctrl, &sleeps
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrModelClientRequired)

	_, err = New(Config{Model: &scriptedClient{}})
	assert.ErrorIs(t, err, ErrToolboxRequired)
}

func TestTurnPlainText(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{responses: []*aisdk.InvokeResponse{textResponse("Howdy! 🤿")}}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, "Howdy! 🤿", reply)

	msgs := sess.Transcript()
	require.Len(t, msgs, 2)
	assert.Equal(t, aisdk.RoleUser, msgs[0].Role)
	assert.Equal(t, aisdk.RoleAssistant, msgs[1].Role)
}

func TestNoToolsOfferedBeforeLink(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{responses: []*aisdk.InvokeResponse{textResponse("hi")}}
	ctrl, _ := newController(t, client, sess)

	_, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	assert.Empty(t, client.requests[0].Tools)
	assert.Contains(t, client.requests[0].System, "Available skills: None")
}

func TestToolsOfferedAfterLink(t *testing.T) {
	sess := session.New()
	sess.Link("dive123")
	client := &scriptedClient{responses: []*aisdk.InvokeResponse{textResponse("hi")}}
	ctrl, _ := newController(t, client, sess)

	_, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	require.Len(t, client.requests[0].Tools, 2)
	assert.Equal(t, session.ToolUpdateDive, client.requests[0].Tools[0].Name)
	assert.Equal(t, session.ToolFetchAnalysis, client.requests[0].Tools[1].Name)
	assert.Contains(t, client.requests[0].System, session.ToolUpdateDive)
}

func TestThrottleRetriesThenSucceeds(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{
		errs:      []error{aisdk.ErrThrottled, aisdk.ErrThrottled, nil},
		responses: []*aisdk.InvokeResponse{nil, nil, textResponse("finally")},
	}
	ctrl, sleeps := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, "finally", reply)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestThrottleExhaustionReturnsBusyApology(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{
		errs: []error{aisdk.ErrThrottled, aisdk.ErrThrottled, aisdk.ErrThrottled, aisdk.ErrThrottled},
	}
	ctrl, sleeps := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, ApologyBusy, reply)
	assert.Len(t, client.requests, 4)
	assert.Len(t, *sleeps, 3)

	// Only the user message landed in the transcript.
	assert.Equal(t, 1, sess.Len())
}

func TestGatewayErrorReturnsErrorApology(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{errs: []error{errors.New("connection reset")}}
	ctrl, sleeps := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, ApologyError, reply)
	assert.Empty(t, *sleeps)
	assert.Len(t, client.requests, 1)
}

func TestEmptyResponseReturnsNoReplyApology(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{responses: []*aisdk.InvokeResponse{{}}}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "hello")
	require.NoError(t, err)
	assert.Equal(t, ApologyNoReply, reply)
	assert.Equal(t, 1, sess.Len())
}

func TestTurnRejectsEmptyInput(t *testing.T) {
	sess := session.New()
	ctrl, _ := newController(t, &scriptedClient{}, sess)

	_, err := ctrl.Turn(context.Background(), sess, "   ")
	assert.Error(t, err)
	assert.Equal(t, 0, sess.Len())
}

func TestToolDispatchEndToEnd(t *testing.T) {
	sess := session.New()
	sess.Link("dive123")

	args, err := json.Marshal(map[string]string{
		"dive_date":     "2024-03-01",
		"dive_number":   "14",
		"dive_location": "Blue Hole",
	})
	require.NoError(t, err)

	client := &scriptedClient{
		responses: []*aisdk.InvokeResponse{
			{Content: []aisdk.ContentBlock{
				{Type: aisdk.BlockTypeText, Text: "Saving your dive details now."},
				{Type: aisdk.BlockTypeToolUse, ID: "tu_1", Name: session.ToolUpdateDive, Input: args},
			}},
			textResponse("✅ Your dive log is updated!"),
		},
	}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "2024-03-01, dive 14, Blue Hole")
	require.NoError(t, err)

	assert.Contains(t, reply, "Saving your dive details now.")
	assert.Contains(t, reply, "🔧 Calling `"+session.ToolUpdateDive+"`")
	assert.Contains(t, reply, "✅ Your dive log is updated!")

	// The tool actually ran.
	rec := sess.Record()
	assert.Equal(t, "2024-03-01", rec.DiveDate)
	assert.Equal(t, 14, *rec.DiveNumber)
	assert.Equal(t, "Blue Hole", rec.DiveLocation)

	// Follow-up request carries the outcome and offers no tools.
	require.Len(t, client.requests, 2)
	assert.Empty(t, client.requests[1].Tools)
	assert.Contains(t, client.requests[1].System, "Tool `"+session.ToolUpdateDive+"` succeeded")

	// Transcript: user, assistant preamble, tool result, follow-up reply.
	msgs := sess.Transcript()
	require.Len(t, msgs, 4)
	assert.Equal(t, aisdk.RoleToolResult, msgs[2].Role)
	assert.True(t, strings.HasPrefix(msgs[2].Content, "Tool `"+session.ToolUpdateDive+"` succeeded"))
}

func TestFailedToolDispatchReportsFailure(t *testing.T) {
	sess := session.New()
	sess.Link("dive123")

	client := &scriptedClient{
		responses: []*aisdk.InvokeResponse{
			{Content: []aisdk.ContentBlock{
				{Type: aisdk.BlockTypeToolUse, ID: "tu_1", Name: session.ToolUpdateDive,
					Input: json.RawMessage(`{"dive_date":"03/01/2024","dive_number":"14","dive_location":"Blue Hole"}`)},
			}},
			textResponse("That date format doesn't work, could you use YYYY-MM-DD?"),
		},
	}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "03/01/2024, dive 14, Blue Hole")
	require.NoError(t, err)
	assert.Contains(t, reply, "YYYY-MM-DD")
	assert.True(t, sess.Record().Empty())

	require.Len(t, client.requests, 2)
	assert.Contains(t, client.requests[1].System, "Tool `"+session.ToolUpdateDive+"` failed")
}

func TestToolCallDuringFollowUpIsCorrected(t *testing.T) {
	sess := session.New()
	sess.Link("dive123")

	args := json.RawMessage(`{"dive_date":"2024-03-01","dive_number":"14","dive_location":"Blue Hole"}`)
	client := &scriptedClient{
		responses: []*aisdk.InvokeResponse{
			{Content: []aisdk.ContentBlock{
				{Type: aisdk.BlockTypeToolUse, ID: "tu_1", Name: session.ToolUpdateDive, Input: args},
			}},
			{Content: []aisdk.ContentBlock{
				{Type: aisdk.BlockTypeText, Text: "Let me save that again."},
				{Type: aisdk.BlockTypeToolUse, ID: "tu_2", Name: session.ToolUpdateDive, Input: args},
			}},
		},
	}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "2024-03-01, dive 14, Blue Hole")
	require.NoError(t, err)
	assert.Contains(t, reply, "Let me save that again.")

	// Exactly one dispatch happened and the correction landed in the log.
	found := false
	for _, m := range sess.Transcript() {
		if m.Role == aisdk.RoleToolResult && strings.Contains(m.Content, "was not executed") {
			found = true
		}
	}
	assert.True(t, found)
	assert.Len(t, client.requests, 2)
}

func TestUnknownToolNameIsErrorResult(t *testing.T) {
	sess := session.New()
	sess.Link("dive123")

	client := &scriptedClient{
		responses: []*aisdk.InvokeResponse{
			{Content: []aisdk.ContentBlock{
				{Type: aisdk.BlockTypeToolUse, ID: "tu_1", Name: "delete_everything", Input: json.RawMessage(`{}`)},
			}},
			textResponse("I can't do that, sorry!"),
		},
	}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.Turn(context.Background(), sess, "wipe it")
	require.NoError(t, err)
	assert.Contains(t, reply, "I can't do that, sorry!")

	require.Len(t, client.requests, 2)
	assert.Contains(t, client.requests[1].System, "Tool `delete_everything` failed")
}

func TestStartChatInjectsEvent(t *testing.T) {
	sess := session.New()
	client := &scriptedClient{responses: []*aisdk.InvokeResponse{textResponse("Howdy! 🤿 Upload a dive video to get started.")}}
	ctrl, _ := newController(t, client, sess)

	reply, err := ctrl.StartChat(context.Background(), sess)
	require.NoError(t, err)
	assert.Contains(t, reply, "Howdy!")

	msgs := sess.Transcript()
	require.Len(t, msgs, 2)
	assert.Equal(t, aisdk.RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "[SYSTEM_EVENT] start_conversation")
}
