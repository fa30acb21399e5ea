// Package hooks invokes external post-mutation hooks.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/todo"
)

// DefaultTimeout bounds a hook started by Listener.
const DefaultTimeout = 30 * time.Second

// Options configures a hook invocation.
type Options struct {
	Command  string
	Kind     string
	TaskID   int
	DataPath string
	WorkDir  string

	// Task, when set, is written to the hook's stdin as JSON.
	Task *todo.Task

	Stdout io.Writer
	Stderr io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook command with the arguments <kind> <task id> <data path>.
// An empty command does nothing.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if opts.Kind == "" {
		return Result{}, fmt.Errorf("hook event kind is empty")
	}

	args := []string{opts.Kind, strconv.Itoa(opts.TaskID), opts.DataPath}

	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, opts.Command, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Stdout = writerOr(opts.Stdout, os.Stdout)
	cmd.Stderr = writerOr(opts.Stderr, os.Stderr)
	if opts.Task != nil {
		payload, err := json.Marshal(opts.Task)
		if err != nil {
			return Result{}, fmt.Errorf("encode hook payload: %w", err)
		}
		cmd.Stdin = bytes.NewReader(payload)
	}

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

// Listener returns a store listener that runs the hook in opts after every
// committed change. Kind, TaskID and Task are taken from the event. Each run
// is bounded by timeout; failures are logged, never returned.
func Listener(ctx context.Context, opts Options, timeout time.Duration, logger *log.Logger) store.Listener {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func(ev store.Event) {
		run := opts
		run.Kind = string(ev.Kind)
		run.TaskID = ev.TaskID
		run.Task = ev.Task

		hookCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result, err := Invoke(hookCtx, run)
		if err != nil && logger != nil {
			logger.Warn("Hook failed", "kind", run.Kind, "task_id", run.TaskID, "exit_code", result.ExitCode, "err", err)
		}
	}
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
