package main

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/reefbound/diveagent/src/config"
	"github.com/reefbound/diveagent/src/store"
)

// loadConfig builds the effective configuration, then layers the CLI flags
// on top.
func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.NewLoader(cli.Config).Load()
	if err != nil {
		return nil, err
	}
	if cli.APIKey != "" {
		cfg.API.APIKey = cli.APIKey
	}
	if cli.BaseURL != "" {
		cfg.API.BaseURL = cli.BaseURL
	}
	return cfg, nil
}

// openStore opens the configured object store backend.
func openStore(cfg *config.Config) (store.ObjectStore, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return store.OpenSQLite(cfg.Store.Path)
	case config.BackendFile:
		return store.NewFileStore(afero.NewOsFs(), cfg.Store.Path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
