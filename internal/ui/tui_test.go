package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

func newTestModel(t *testing.T, titles ...string) (*model, *store.Store) {
	t.Helper()
	adapter, err := persist.NewAdapter(persist.NewMemoryKV())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	s, err := store.New(context.Background(), adapter)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	for _, title := range titles {
		if _, err := s.Add(context.Background(), todo.Task{Title: title}); err != nil {
			t.Fatalf("Add(%q): %v", title, err)
		}
	}
	return newModel(context.Background(), s, Options{}, nil), s
}

func press(m *model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func ids(tasks []todo.Task) string {
	parts := make([]string, len(tasks))
	for i, t := range tasks {
		parts[i] = t.Title
	}
	return strings.Join(parts, ",")
}

func TestModelDefaults(t *testing.T) {
	m, _ := newTestModel(t, "a", "b")
	if m.filter.Status != view.StatusAll || m.filter.Priority != view.PriorityAll || m.sort != view.SortManual {
		t.Errorf("unexpected defaults: %+v %s", m.filter, m.sort)
	}
	if got := ids(m.tasks); got != "a,b" {
		t.Errorf("tasks: got %s, want a,b", got)
	}
}

func TestModelNavigation(t *testing.T) {
	m, _ := newTestModel(t, "a", "b", "c")

	press(m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor must stay at top, got %d", m.cursor)
	}
	press(m, "j", "down", "j")
	if m.cursor != 2 {
		t.Errorf("cursor must stop at bottom, got %d", m.cursor)
	}
	press(m, "k")
	if m.cursor != 1 {
		t.Errorf("cursor: got %d, want 1", m.cursor)
	}
}

func TestModelToggleAndDelete(t *testing.T) {
	m, s := newTestModel(t, "a", "b")

	press(m, " ")
	if task, _ := s.Get(1); !task.Completed {
		t.Error("space must toggle the selected task")
	}
	press(m, "j", "d")
	if got := ids(s.Tasks()); got != "a" {
		t.Errorf("after delete: got %s, want a", got)
	}
	if m.cursor != 0 {
		t.Errorf("cursor must be clamped, got %d", m.cursor)
	}
}

func TestModelMove(t *testing.T) {
	m, s := newTestModel(t, "a", "b", "c")

	press(m, "J")
	if got := ids(s.Tasks()); got != "b,a,c" {
		t.Errorf("after J: got %s, want b,a,c", got)
	}
	if m.cursor != 1 {
		t.Errorf("cursor must follow the task, got %d", m.cursor)
	}
	press(m, "K", "K")
	if got := ids(s.Tasks()); got != "a,b,c" {
		t.Errorf("after K: got %s, want a,b,c", got)
	}
	if m.err != nil {
		t.Errorf("unexpected error: %v", m.err)
	}
}

func TestModelFilterCycle(t *testing.T) {
	m, s := newTestModel(t, "a", "b")
	if err := s.ToggleComplete(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	m.refresh()

	press(m, "f")
	if m.filter.Status != view.StatusActive || ids(m.tasks) != "b" {
		t.Errorf("active filter: status %s tasks %s", m.filter.Status, ids(m.tasks))
	}
	press(m, "f")
	if m.filter.Status != view.StatusCompleted || ids(m.tasks) != "a" {
		t.Errorf("completed filter: status %s tasks %s", m.filter.Status, ids(m.tasks))
	}
	press(m, "f")
	if m.filter.Status != view.StatusAll {
		t.Errorf("filter must wrap to all, got %s", m.filter.Status)
	}

	press(m, "s")
	if m.sort != view.SortPriority {
		t.Errorf("sort: got %s, want priority", m.sort)
	}
	press(m, "p")
	if m.filter.Priority != string(todo.PriorityHigh) || len(m.tasks) != 0 {
		t.Errorf("priority filter: got %s with %d tasks", m.filter.Priority, len(m.tasks))
	}
}

func TestModelRefreshesOnStoreChange(t *testing.T) {
	m, s := newTestModel(t, "a")
	changes := make(chan struct{}, 1)
	m.changes = changes
	unsubscribe := s.Subscribe(notifyChanges(changes))
	defer unsubscribe()

	if _, err := s.Add(context.Background(), todo.Task{Title: "b"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(context.Background(), todo.Task{Title: "c"}); err != nil {
		t.Fatal(err)
	}

	msg := waitForChange(m.changes)()
	if _, ok := msg.(changedMsg); !ok {
		t.Fatalf("expected changedMsg, got %T", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("expected the model to keep waiting for changes")
	}
	if got := ids(m.tasks); got != "a,b,c" {
		t.Errorf("tasks: got %s, want a,b,c", got)
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelView(t *testing.T) {
	m, s := newTestModel(t, "write report")
	if err := s.Edit(context.Background(), todo.Task{ID: 1, Title: "write report", DueDate: "2024-05-01", Priority: todo.PriorityHigh}); err != nil {
		t.Fatal(err)
	}
	m.refresh()

	out := m.View()
	for _, want := range []string{"Taskboard", "write report", "2024-05-01", "1 tasks"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}

	press(m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("expected help screen")
	}

	empty, _ := newTestModel(t)
	if !strings.Contains(empty.View(), "No tasks to show") {
		t.Error("expected empty message")
	}
}

func TestNext(t *testing.T) {
	if got := next(sortCycle, view.SortTitle); got != view.SortManual {
		t.Errorf("next wraps: got %s", got)
	}
	if got := next(sortCycle, view.SortKey("bogus")); got != view.SortManual {
		t.Errorf("unknown value restarts: got %s", got)
	}
}
