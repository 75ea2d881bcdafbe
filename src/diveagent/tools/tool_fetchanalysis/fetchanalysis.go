// Package tool_fetchanalysis implements the analysis-fetch tool: it returns
// the stored vision-model description of the linked session's footage.
package tool_fetchanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/reefbound/diveagent/src/agent"
	"github.com/reefbound/diveagent/src/divelog"
	"github.com/reefbound/diveagent/src/session"
	"github.com/reefbound/diveagent/src/store"
)

// Tool name constant
const Name = session.ToolFetchAnalysis

const fetchAnalysisPrompt = `Use this tool to look up the stored analysis of the current dive video: the marine life observed, a description and a confidence score. The analysis is produced asynchronously; it may not exist yet if the video is still processing.`

// FetchAnalysisInput takes no parameters; the session link decides which
// analysis is read.
type FetchAnalysisInput struct{}

// FetchAnalysisOutput is the stored analysis document, returned verbatim.
// Nothing is synthesized or summarized on behalf of the analysis source.
type FetchAnalysisOutput struct {
	Analysis divelog.Analysis `json:"analysis"`
}

// Tool returns the fetch_dive_analysis tool bound to one session and the
// external store.
func Tool(sess *session.Session, objects store.ObjectStore, logger *slog.Logger) (agent.Tool, error) {
	return agent.NewGenericTool(Name, fetchAnalysisPrompt, makeFetchAnalysisHandler(sess, objects, logger))
}

func makeFetchAnalysisHandler(sess *session.Session, objects store.ObjectStore, logger *slog.Logger) func(ctx context.Context, input FetchAnalysisInput) (FetchAnalysisOutput, error) {
	logger = logger.With("component", "tool_fetchanalysis")

	return func(ctx context.Context, input FetchAnalysisInput) (FetchAnalysisOutput, error) {
		diveSessionID := sess.DiveSessionID()
		key := store.AnalysisKey(diveSessionID)

		body, err := objects.Get(ctx, key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				logger.Info("analysis not available yet", "dive_session_id", diveSessionID)
				return FetchAnalysisOutput{}, agent.NewFault(agent.CodeNotFound, "",
					"no analysis exists for this dive yet; the video may still be processing")
			}
			logger.Error("failed to read analysis", "key", key, "error", err)
			return FetchAnalysisOutput{}, agent.NewFault(agent.CodePersistenceFailure, "", err.Error())
		}

		var analysis divelog.Analysis
		if err := json.Unmarshal(body, &analysis); err != nil {
			logger.Error("stored analysis is not valid JSON", "key", key, "error", err)
			return FetchAnalysisOutput{}, agent.NewFault(agent.CodeToolError, "", "stored analysis document is malformed")
		}

		logger.Info("analysis fetched", "dive_session_id", diveSessionID, "animal", analysis.Animal)
		return FetchAnalysisOutput{Analysis: analysis}, nil
	}
}
