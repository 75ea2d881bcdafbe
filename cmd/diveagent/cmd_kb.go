package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/reefbound/diveagent/src/knowledge"
)

// KBCmd rebuilds the aggregated knowledge base from processed sessions.
type KBCmd struct {
	DryRun bool `help:"Print the result without saving it"`
}

func (k *KBCmd) Run(kctx *kong.Context, cli *CLI) error {
	logger := createCLILogger(cli.LogLevel)

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	objects, err := openStore(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	builder := knowledge.NewBuilder(objects, logger)

	kb, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	for _, id := range kb.DiveIDs() {
		dive := kb.Dives[id]
		fmt.Printf("%s  %s  sessions=%d species=%d\n",
			id, dive.DiveLocation, len(dive.Sessions), len(dive.SpeciesSeen))
	}

	if k.DryRun {
		return nil
	}
	return builder.Save(ctx, kb)
}
