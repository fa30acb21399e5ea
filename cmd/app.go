package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/hooks"
	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/store"
)

// app bundles the store with the listeners and resources a command needs.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   *store.Store
	journal *logging.Journal
	closers []func() error
}

// openApp opens the configured backend and loads the store. Commands that
// change tasks pass record so changes are journaled and hooked.
func openApp(ctx context.Context, cfg *config.Config, record bool) (*app, error) {
	logger := logging.NewLoggerFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	kv, closeKV, err := persist.Open(ctx, cfg.PersistOptions())
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
	}
	a := &app{cfg: cfg, logger: logger, closers: []func() error{closeKV}}

	adapter, err := persist.NewAdapter(kv)
	if err != nil {
		a.close()
		return nil, err
	}
	s, err := store.New(ctx, adapter,
		store.WithStrictLookup(cfg.Strict),
		store.WithStrategy(cfg.Strategy()),
		store.WithLogger(logger),
	)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = s

	if !record {
		return a, nil
	}

	if cfg.JournalDir != "" {
		j, err := logging.NewJournal(cfg.JournalDir, cfg.ProjectRoot)
		if err != nil {
			logger.Warn("Journal disabled", "err", err)
		} else {
			a.journal = j
			a.closers = append(a.closers, j.Close)
			s.Subscribe(j.Listener(logger))
			logger.Debug("Journal opened", "path", j.Path)
		}
	}
	if cfg.HookCommand != "" {
		s.Subscribe(hooks.Listener(ctx, hooks.Options{
			Command:  cfg.HookCommand,
			DataPath: dataPath(cfg),
			WorkDir:  cfg.ProjectRoot,
			Stdout:   stderr,
			Stderr:   stderr,
		}, hooks.DefaultTimeout, logger))
	}
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// dataPath is the file hooks receive, empty for non-file backends.
func dataPath(cfg *config.Config) string {
	switch cfg.Backend {
	case "", persist.BackendFile:
		return cfg.DataFile
	}
	return ""
}
