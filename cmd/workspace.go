package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/masteryrank/internal/engine"
	"github.com/abhisek/masteryrank/internal/store"
)

// workspace is an open store plus an engine rebuilt from it.
type workspace struct {
	store  *store.Store
	engine *engine.Engine
	replay engine.ReplayStats
}

func (w *workspace) Close() error {
	return w.store.Close()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("opened database", "path", dbPath)
	return s, nil
}

func newEngine() (*engine.Engine, error) {
	return engine.New(engine.Options{
		Params:        cfg.Knowledge,
		Ranker:        cfg.Ranker,
		Clock:         now,
		Prerequisites: cfg.Prerequisites,
	})
}

// openWorkspace opens the store and replays it into a fresh engine.
func openWorkspace(ctx context.Context, cmd *cobra.Command) (*workspace, error) {
	s, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	e, err := newEngine()
	if err != nil {
		s.Close()
		return nil, err
	}
	stats, err := engine.Hydrate(ctx, s.EventRepo(), s.SnapshotRepo(), e, log)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("replay event log: %w", err)
	}
	return &workspace{store: s, engine: e, replay: stats}, nil
}

// requireLearner returns the --learner flag or an error when it is unset.
func requireLearner(cmd *cobra.Command) (string, error) {
	id, _ := cmd.Flags().GetString("learner")
	if id == "" {
		return "", fmt.Errorf("--learner is required")
	}
	return id, nil
}
