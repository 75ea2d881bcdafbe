package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/reefbound/diveagent/src/divelog"
	"github.com/reefbound/diveagent/src/store"
)

// TagCmd writes dive metadata onto a processed session without going
// through the assistant.
type TagCmd struct {
	SessionID    string `arg:"" help:"The processing session id to update"`
	DiveDate     string `required:"" help:"The dive date in YYYY-MM-DD format"`
	DiveNumber   string `required:"" help:"Dive number of the day"`
	DiveLocation string `required:"" help:"Dive location"`
}

func (t *TagCmd) Run(kctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	objects, err := openStore(cfg)
	if err != nil {
		return err
	}

	date, err := divelog.ValidateDate(t.DiveDate)
	if err != nil {
		return err
	}
	number, err := divelog.ValidateNumber(t.DiveNumber)
	if err != nil {
		return err
	}
	location, err := divelog.ValidateLocation(t.DiveLocation)
	if err != nil {
		return err
	}

	ctx := context.Background()
	key := store.MetadataKey(t.SessionID)

	raw, err := objects.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", t.SessionID, err)
	}
	var meta divelog.Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("failed to decode session metadata: %w", err)
	}

	meta.SetRecord(divelog.Record{
		DiveDate:     date,
		DiveNumber:   &number,
		DiveLocation: location,
	})

	body, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := objects.Put(ctx, key, body); err != nil {
		return fmt.Errorf("failed to store session metadata: %w", err)
	}

	logger.Info("session tagged",
		"session_id", t.SessionID,
		"dive_date", date,
		"dive_number", number,
		"dive_location", location)
	fmt.Printf("Updated session %s with dive date %s, dive number %d and location %s\n",
		t.SessionID, date, number, location)
	return nil
}
