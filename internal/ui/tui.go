// Package ui provides the interactive terminal board.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

// Engine is the part of the task store the board drives.
type Engine interface {
	View(filter view.Filter, key view.SortKey) []todo.Task
	Tasks() []todo.Task
	ToggleComplete(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	Move(ctx context.Context, visible []todo.Task, src, dst int) error
	Subscribe(fn store.Listener) func()
}

// Options sets the view the board opens with.
type Options struct {
	Filter view.Filter
	Sort   view.SortKey
	Title  string
}

var (
	statusCycle   = []view.Status{view.StatusAll, view.StatusActive, view.StatusCompleted}
	priorityCycle = []string{view.PriorityAll, string(todo.PriorityHigh), string(todo.PriorityMedium), string(todo.PriorityLow)}
	sortCycle     = []view.SortKey{view.SortManual, view.SortPriority, view.SortDueDate, view.SortTitle}
)

// Run starts the board and blocks until the user quits or ctx is done.
func Run(ctx context.Context, engine Engine, opts Options) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	changes := make(chan struct{}, 1)
	unsubscribe := engine.Subscribe(notifyChanges(changes))
	defer unsubscribe()

	m := newModel(ctx, engine, opts, changes)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// notifyChanges returns a listener that never blocks. Bursts of commits
// collapse into a single pending signal.
func notifyChanges(ch chan<- struct{}) store.Listener {
	return func(store.Event) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

type model struct {
	ctx      context.Context
	engine   Engine
	title    string
	filter   view.Filter
	sort     view.SortKey
	tasks    []todo.Task
	counts   view.Counts
	cursor   int
	err      error
	showHelp bool
	changes  <-chan struct{}
}

type changedMsg struct{}

func newModel(ctx context.Context, engine Engine, opts Options, changes <-chan struct{}) *model {
	m := &model{
		ctx:     ctx,
		engine:  engine,
		title:   opts.Title,
		filter:  opts.Filter,
		sort:    opts.Sort,
		changes: changes,
	}
	if m.title == "" {
		m.title = "Taskboard"
	}
	if m.filter.Status == "" {
		m.filter.Status = view.StatusAll
	}
	if m.filter.Priority == "" {
		m.filter.Priority = view.PriorityAll
	}
	if m.sort == "" {
		m.sort = view.SortManual
	}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)
	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}
	return m, nil
}

func (m *model) handleKey(key string) tea.Cmd {
	switch key {
	case "ctrl+c", "q":
		return tea.Quit
	case "?", "h":
		m.showHelp = !m.showHelp
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case " ", "x":
		if task, ok := m.selected(); ok {
			m.run(m.engine.ToggleComplete(m.ctx, task.ID))
		}
	case "d", "delete":
		if task, ok := m.selected(); ok {
			m.run(m.engine.Delete(m.ctx, task.ID))
		}
	case "K", "shift+up":
		m.move(-1)
	case "J", "shift+down":
		m.move(1)
	case "f":
		m.filter.Status = next(statusCycle, m.filter.Status)
		m.refresh()
	case "p":
		m.filter.Priority = next(priorityCycle, m.filter.Priority)
		m.refresh()
	case "s":
		m.sort = next(sortCycle, m.sort)
		m.refresh()
	case "r":
		m.refresh()
	}
	return nil
}

// move shifts the selected task by delta positions in the current view.
func (m *model) move(delta int) {
	dst := m.cursor + delta
	if len(m.tasks) == 0 || dst < 0 || dst >= len(m.tasks) {
		return
	}
	if err := m.engine.Move(m.ctx, m.tasks, m.cursor, dst); err != nil {
		m.run(err)
		return
	}
	m.cursor = dst
	m.run(nil)
}

// run records the outcome of a command and redraws from the store.
func (m *model) run(err error) {
	m.err = err
	m.refresh()
}

func (m *model) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return todo.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *model) refresh() {
	m.tasks = m.engine.View(m.filter, m.sort)
	m.counts = view.Count(m.engine.Tasks())
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d tasks  %d active  %d completed",
		m.counts.All, m.counts.Active, m.counts.Completed)) + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("status: %s  priority: %s  sort: %s",
		m.filter.Status, m.filter.Priority, m.sort)) + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	if len(m.tasks) == 0 {
		b.WriteString("  No tasks to show.\n")
	}
	for i := range m.tasks {
		line := formatTask(&m.tasks[i])
		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("? help | space toggle | d delete | J/K move | f/p/s filter | q quit") + "\n")
	return b.String()
}

func formatTask(t *todo.Task) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %3d %s %s", box, t.ID, renderPriority(t.Priority), title)
	if !t.DueDate.IsZero() {
		line += " " + dueStyle.Render("due "+string(t.DueDate))
	}
	return line
}

func renderPriority(p todo.Priority) string {
	label := fmt.Sprintf("%-6s", p)
	if style, ok := priorityStyle[p]; ok {
		return style.Render(label)
	}
	return label
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Select task\n")
	b.WriteString("  space, x       Toggle completed\n")
	b.WriteString("  d              Delete task\n")
	b.WriteString("  K, J           Move task up or down\n")
	b.WriteString("  f              Cycle status filter\n")
	b.WriteString("  p              Cycle priority filter\n")
	b.WriteString("  s              Cycle sort order\n")
	b.WriteString("  r              Refresh\n")
	b.WriteString("  ?, h           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n")
}

func next[T comparable](cycle []T, current T) T {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
