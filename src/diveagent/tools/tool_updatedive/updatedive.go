// Package tool_updatedive implements the metadata-update tool: it validates
// the diver-provided fields, merges them into the session's structured
// record, and persists the stored metadata document.
package tool_updatedive

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
const Name = session.ToolUpdateDive

const updateDivePrompt = `Use this tool to store or update core dive session details. All fields (dive_date, dive_number, dive_location) must be clearly provided by the user before calling this tool if they are all missing. Otherwise, accept partial information and update the fields that are provided. Never guess or convert values: dates must already be in YYYY-MM-DD form.`

// UpdateDiveInput represents the parameters for update_dive_information.
// All fields are optional; first-contact atomicity is enforced by the
// handler, not the schema.
type UpdateDiveInput struct {
	DiveDate     string `json:"dive_date,omitempty" pattern:"^[0-9]{4}-[0-9]{2}-[0-9]{2}$" description:"Dive date in YYYY-MM-DD format."`
	DiveNumber   string `json:"dive_number,omitempty" pattern:"^[0-9]+$" description:"Dive number of the day, e.g. '14'. Digits only."`
	DiveLocation string `json:"dive_location,omitempty" minLength:"3" description:"Dive location, e.g. 'West Reef'."`
}

// UpdateDiveOutput is the updated structured record returned on success.
type UpdateDiveOutput struct {
	Record divelog.Record `json:"record"`
}

// Tool returns the update_dive_information tool bound to one session and
// the external store.
func Tool(sess *session.Session, objects store.ObjectStore, logger *slog.Logger) (agent.Tool, error) {
	return agent.NewGenericTool(Name, updateDivePrompt, makeUpdateDiveHandler(sess, objects, logger))
}

// makeUpdateDiveHandler creates the type-safe handler for the tool.
func makeUpdateDiveHandler(sess *session.Session, objects store.ObjectStore, logger *slog.Logger) func(ctx context.Context, input UpdateDiveInput) (UpdateDiveOutput, error) {
	logger = logger.With("component", "tool_updatedive")

	return func(ctx context.Context, input UpdateDiveInput) (UpdateDiveOutput, error) {
		diveSessionID := sess.DiveSessionID()
		logger.Info("validating tool input", "dive_session_id", diveSessionID)

		// Each supplied field is validated independently so the reply can
		// name exactly what failed.
		var provided divelog.Record
		if input.DiveDate != "" {
			date, err := divelog.ValidateDate(input.DiveDate)
			if err != nil {
				logger.Warn("dive date rejected", "value", input.DiveDate)
				return UpdateDiveOutput{}, agent.NewFault(agent.CodeSchemaViolation, "dive_date", err.Error())
			}
			provided.DiveDate = date
		}
		if input.DiveNumber != "" {
			n, err := divelog.ValidateNumber(input.DiveNumber)
			if err != nil {
				logger.Warn("dive number rejected", "value", input.DiveNumber)
				return UpdateDiveOutput{}, agent.NewFault(agent.CodeSchemaViolation, "dive_number", err.Error())
			}
			provided.DiveNumber = &n
		}
		if input.DiveLocation != "" {
			location, err := divelog.ValidateLocation(input.DiveLocation)
			if err != nil {
				logger.Warn("dive location rejected", "value", input.DiveLocation)
				return UpdateDiveOutput{}, agent.NewFault(agent.CodeSchemaViolation, "dive_location", err.Error())
			}
			provided.DiveLocation = location
		}

		if provided.Empty() {
			return UpdateDiveOutput{}, agent.NewFault(agent.CodeSchemaViolation, "", "at least one of dive_date, dive_number or dive_location must be provided")
		}

		// First contact for this processing session requires all three
		// fields together; afterwards any subset merges.
		current := sess.Record()
		if current.Empty() && !provided.Complete() {
			return UpdateDiveOutput{}, agent.NewFault(agent.CodeIncompleteInitialData, "",
				"dive_date, dive_number and dive_location must all be supplied together the first time")
		}

		merged := current.Merge(provided)
		sess.SetRecord(merged)

		logger.Info("updating dive metadata",
			"dive_session_id", diveSessionID,
			"dive_date", merged.DiveDate,
			"dive_number", merged.DiveNumber,
			"dive_location", merged.DiveLocation)

		// The in-memory record is intentionally not rolled back on a
		// persistence failure: the data is valid, only the write must be
		// retried.
		if err := persist(ctx, objects, diveSessionID, merged); err != nil {
			logger.Error("failed to persist session metadata", "error", err)
			return UpdateDiveOutput{}, agent.NewFault(agent.CodePersistenceFailure, "", err.Error())
		}

		logger.Info("session metadata saved", "key", store.MetadataKey(diveSessionID))
		return UpdateDiveOutput{Record: merged}, nil
	}
}

// persist merges the record into the stored metadata document, creating a
// record-only document when the pipeline has not written one yet.
func persist(ctx context.Context, objects store.ObjectStore, diveSessionID string, rec divelog.Record) error {
	key := store.MetadataKey(diveSessionID)

	var meta divelog.Metadata
	body, err := objects.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(body, &meta); err != nil {
			return err
		}
	case errors.Is(err, store.ErrNotFound):
		// No pipeline document yet: the stored document is exactly the
		// serialized record.
		meta = divelog.Metadata{}
	default:
		return err
	}

	meta.SetRecord(rec)

	updated, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return objects.Put(ctx, key, updated)
}
