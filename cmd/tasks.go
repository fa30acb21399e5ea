package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/nibzard/taskboard/internal/config"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

// addCommand adds a task built from flags and the remaining arguments.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	description := fs.String("d", "", "Description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	priority := fs.String("p", string(todo.PriorityMedium), "Priority (high, medium, low)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("usage: taskboard add [options] <title>")
	}

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	id, err := a.store.Add(ctx, todo.Task{
		Title:       title,
		Description: *description,
		DueDate:     todo.Date(strings.TrimSpace(*due)),
		Priority:    todo.Priority(strings.ToLower(strings.TrimSpace(*priority))),
	})
	if err != nil {
		return fmt.Errorf("adding task: %w", err)
	}
	fmt.Fprintf(stdout, "Added task %d\n", id)
	return nil
}

// editCommand changes only the fields named by flags.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard edit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "Title")
	description := fs.String("d", "", "Description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD, empty clears)")
	priority := fs.String("p", "", "Priority (high, medium, low)")

	if len(args) == 0 {
		return fmt.Errorf("usage: taskboard edit <id> [options]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := fs.Parse(args[1:]); err != nil {
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

	task, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("task %d: %w", id, todo.ErrNotFound)
	}
	changed := false
	fs.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "title":
			task.Title = strings.TrimSpace(*title)
		case "d":
			task.Description = *description
		case "due":
			task.DueDate = todo.Date(strings.TrimSpace(*due))
		case "p":
			task.Priority = todo.Priority(strings.ToLower(strings.TrimSpace(*priority)))
		}
	})
	if !changed {
		return fmt.Errorf("nothing to change: pass -title, -d, -due or -p")
	}

	if err := a.store.Edit(ctx, task); err != nil {
		return fmt.Errorf("editing task %d: %w", id, err)
	}
	fmt.Fprintf(stdout, "Updated task %d\n", id)
	return nil
}

// rmCommand deletes each listed task. Unknown ids are reported, not fatal.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	ids, err := parseIDs("rm", args)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	for _, id := range ids {
		if _, ok := a.store.Get(id); !ok {
			fmt.Fprintf(stdout, "No task %d\n", id)
			continue
		}
		if err := a.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting task %d: %w", id, err)
		}
		fmt.Fprintf(stdout, "Removed task %d\n", id)
	}
	return nil
}

// toggleCommand flips the completion flag of each listed task.
func toggleCommand(ctx context.Context, cfg *config.Config, args []string) error {
	ids, err := parseIDs("toggle", args)
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.close()

	for _, id := range ids {
		if _, ok := a.store.Get(id); !ok {
			if cfg.Strict {
				return fmt.Errorf("task %d: %w", id, todo.ErrNotFound)
			}
			fmt.Fprintf(stdout, "No task %d\n", id)
			continue
		}
		if err := a.store.ToggleComplete(ctx, id); err != nil {
			return fmt.Errorf("toggling task %d: %w", id, err)
		}
		task, _ := a.store.Get(id)
		state := "active"
		if task.Completed {
			state = "completed"
		}
		fmt.Fprintf(stdout, "Task %d is %s\n", id, state)
	}
	return nil
}

// lsCommand prints the view selected by flags and config defaults.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	vf := bindViewFlags(fs, cfg)
	asJSON := fs.Bool("json", false, "Print the view as JSON")
	verbose := fs.Bool("v", false, "Show descriptions")

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

	a, err := openApp(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.close()

	tasks := a.store.View(filter, key)
	if *asJSON {
		return writeJSON(stdout, tasks)
	}
	printHeader(stdout, view.Count(a.store.Tasks()), filter, key)
	printTasks(stdout, tasks, *verbose)
	return nil
}

// mvCommand moves the task at one 1-based position of a view to another.
func mvCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskboard mv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	vf := bindViewFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: taskboard mv [view options] <from> <to>")
	}
	from, err := parsePosition(fs.Arg(0))
	if err != nil {
		return err
	}
	to, err := parsePosition(fs.Arg(1))
	if err != nil {
		return err
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

	if err := a.store.MoveInView(ctx, filter, key, from-1, to-1); err != nil {
		if errors.Is(err, todo.ErrInvalidPermutation) {
			return fmt.Errorf("moving %d to %d in a view of %d tasks: %w", from, to, len(a.store.View(filter, key)), err)
		}
		return err
	}
	printTasks(stdout, a.store.View(filter, key), false)
	return nil
}

// viewFlags holds the raw view selection of a subcommand.
type viewFlags struct {
	status   *string
	priority *string
	sort     *string
}

func bindViewFlags(fs *flag.FlagSet, cfg *config.Config) viewFlags {
	return viewFlags{
		status:   fs.String("status", cfg.DefaultStatus, "Status filter (all, active, completed)"),
		priority: fs.String("priority", cfg.DefaultPriority, "Priority filter (all, high, medium, low)"),
		sort:     fs.String("sort", cfg.DefaultSort, "Sort order (manual, priority, dueDate, title)"),
	}
}

func (v viewFlags) resolve() (view.Filter, view.SortKey, error) {
	filter, err := view.ParseFilter(*v.status, *v.priority)
	if err != nil {
		return view.Filter{}, "", err
	}
	key, err := view.ParseSortKey(*v.sort)
	if err != nil {
		return view.Filter{}, "", err
	}
	return filter, key, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func parseIDs(command string, args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: taskboard %s <id>...", command)
	}
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || pos <= 0 {
		return 0, fmt.Errorf("invalid position %q, positions start at 1", s)
	}
	return pos, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func printHeader(w io.Writer, counts view.Counts, filter view.Filter, key view.SortKey) {
	fmt.Fprintf(w, "%d tasks (%d active, %d completed)", counts.All, counts.Active, counts.Completed)
	fmt.Fprintf(w, "  status=%s priority=%s sort=%s\n\n", filter.Status, filter.Priority, key)
}

// printTasks prints a view with 1-based positions, the ones mv accepts.
func printTasks(w io.Writer, tasks []todo.Task, verbose bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for i, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%3d. %s #%-3d %-6s %s", i+1, box, t.ID, t.Priority, t.Title)
		if !t.DueDate.IsZero() {
			line += " (due " + string(t.DueDate) + ")"
		}
		fmt.Fprintln(w, line)
		if verbose && t.Description != "" {
			fmt.Fprintf(w, "         %s\n", t.Description)
		}
	}
}
