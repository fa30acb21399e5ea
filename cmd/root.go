// Package cmd implements the CLI command structure for taskboard.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/taskboard/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the taskboard CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand; no subcommand lists tasks
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "toggle", "done":
		return toggleCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "mv", "move":
		return mvCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "journal":
		return journalCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "taskboard version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskboard - an ordered, filterable task list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskboard [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <title>        Add a task")
	fmt.Fprintln(w, "  edit <id>          Edit a task's fields")
	fmt.Fprintln(w, "  rm <id>...         Delete tasks")
	fmt.Fprintln(w, "  toggle <id>...     Flip tasks between active and completed")
	fmt.Fprintln(w, "  ls                 List tasks (default command)")
	fmt.Fprintln(w, "  mv <from> <to>     Move a task within the listed view (1-based positions)")
	fmt.Fprintln(w, "  tui                Launch the terminal board")
	fmt.Fprintln(w, "  serve              Serve the JSON API")
	fmt.Fprintln(w, "  journal            List or tail change journals")
	fmt.Fprintln(w, "  doctor             Check config, storage and hook")
	fmt.Fprintln(w, "  config [show|example|init]")
	fmt.Fprintln(w, "                     Inspect or create configuration")
	fmt.Fprintln(w, "  version            Show version information")
	fmt.Fprintln(w, "  help               Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "View Options (ls, mv, tui):")
	fmt.Fprintln(w, "  -status string      all, active or completed")
	fmt.Fprintln(w, "  -priority string    all, high, medium or low")
	fmt.Fprintln(w, "  -sort string        manual, priority, dueDate or title")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task Options (add, edit):")
	fmt.Fprintln(w, "  -title string       Title (edit only)")
	fmt.Fprintln(w, "  -d string           Description")
	fmt.Fprintln(w, "  -due string         Due date (YYYY-MM-DD, empty clears)")
	fmt.Fprintln(w, "  -p string           Priority (high, medium, low)")
}
