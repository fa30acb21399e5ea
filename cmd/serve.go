package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"github.com/nibzard/taskboard/internal/api"
	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/ui"
)

// serveCommand serves the JSON API until ctx is cancelled.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", cfg.ListenAddr, "Listen address")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	e := api.New(a.store, api.Defaults{Filter: cfg.ViewFilter(), Sort: cfg.SortKey()}, a.logger)
	a.logger.Info("Serving API", "addr", *addr, "backend", cfg.Backend)

	if err := api.Serve(ctx, e, *addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving api: %w", err)
	}
	a.logger.Info("API stopped")
	return nil
}

// tuiCommand launches the terminal board.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	vf := bindViewFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	filter, key, err := vf.resolve()
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	return ui.Run(ctx, a.store, ui.Options{Filter: filter, Sort: key})
}
