package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/logging"
)

// journalCommand lists the project's journal files or tails the newest.
func journalCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard journal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	list := fs.Bool("list", false, "List journal files, newest first")
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	dir, err := logging.FindJournalDir(cfg.JournalDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding journal directory: %w", err)
	}

	if *list {
		runs, err := logging.ListRuns(dir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(stdout, "No journals found.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(stdout, "%s  %s  %d bytes\n", r.ModTime.Format("2006-01-02 15:04:05"), r.ID, r.Size)
		}
		return nil
	}

	path, err := logging.FindLatest(dir)
	if err != nil {
		return fmt.Errorf("finding latest journal: %w", err)
	}
	if path == "" {
		fmt.Fprintln(stdout, "No journals found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", path)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.Tail(ctx, stdout, path, *n, *follow)
}
