package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/logging"
	"github.com/nibzard/taskboard/internal/persist"
)

// doctorCommand checks config, storage, journal and hook setup.
func doctorCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := stdout
	fmt.Fprintln(w, "Taskboard Doctor")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintf(w, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ OK")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config:")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(w, "  ✅ Backend: %s\n", cfg.Backend)
		fmt.Fprintf(w, "  ✅ Reorder strategy: %s\n", cfg.Strategy())
		fmt.Fprintf(w, "  ✅ Default view: status=%s priority=%s sort=%s\n", cfg.DefaultStatus, cfg.DefaultPriority, cfg.SortKey())
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Storage:")
	if dataPath(cfg) != "" {
		fmt.Fprintf(w, "  Data file: %s\n", cfg.DataFile)
		if info, err := os.Stat(cfg.DataFile); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(w, "  ⚠️  Not found (created on first change)")
			} else {
				fmt.Fprintf(w, "  ❌ Error: %v\n", err)
				allOK = false
			}
		} else if info.IsDir() {
			fmt.Fprintln(w, "  ❌ Error: path is a directory")
			allOK = false
		}
	}
	if !checkStorage(ctx, cfg, *verbose) {
		allOK = false
	}
	fmt.Fprintln(w)

	dir, err := logging.FindJournalDir(cfg.JournalDir, cfg.ProjectRoot)
	fmt.Fprintf(w, "Journal directory: %s\n", dir)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	default:
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(w, "  ⚠️  Not found (created on first change)")
			} else {
				fmt.Fprintf(w, "  ❌ Error: %v\n", err)
				allOK = false
			}
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Hook:")
	if cfg.HookCommand == "" {
		fmt.Fprintln(w, "  ⚠️  Not configured")
	} else if resolved, err := exec.LookPath(cfg.HookCommand); err != nil {
		fmt.Fprintf(w, "  ❌ %s: %v\n", cfg.HookCommand, err)
		allOK = false
	} else {
		fmt.Fprintf(w, "  ✅ OK (%s)\n", resolved)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed. Taskboard may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkStorage opens the backend and loads the snapshot without falling
// back, so corrupt data is reported.
func checkStorage(ctx context.Context, cfg *config.Config, verbose bool) bool {
	w := stdout
	kv, closeKV, err := persist.Open(ctx, cfg.PersistOptions())
	if err != nil {
		fmt.Fprintf(w, "  ❌ Open: %v\n", err)
		return false
	}
	defer closeKV()

	adapter, err := persist.NewAdapter(kv)
	if err != nil {
		fmt.Fprintf(w, "  ❌ %v\n", err)
		return false
	}
	snap, err := adapter.Load(ctx)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Load: %v\n", err)
		var perr *persist.Error
		if errors.As(err, &perr) && perr.Key != "" {
			fmt.Fprintf(w, "     key: %s\n", perr.Key)
		}
		return false
	}
	fmt.Fprintf(w, "  ✅ Loaded %d tasks (next id %d)\n", len(snap.Tasks), snap.NextID)
	if verbose {
		for _, t := range snap.Tasks {
			fmt.Fprintf(w, "    - #%d %s\n", t.ID, t.Title)
		}
	}
	return true
}
