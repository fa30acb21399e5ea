package reorder

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

// board is A(completed, low), B(high), C(medium), D(low).
func board() []todo.Task {
	return []todo.Task{
		{ID: 1, Title: "A", Priority: todo.PriorityLow, Completed: true},
		{ID: 2, Title: "B", Priority: todo.PriorityHigh},
		{ID: 3, Title: "C", Priority: todo.PriorityMedium},
		{ID: 4, Title: "D", Priority: todo.PriorityLow},
	}
}

func TestSplice(t *testing.T) {
	tasks := []todo.Task{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	tests := []struct {
		name     string
		src, dst int
		want     []int
	}{
		{"forward", 0, 2, []int{2, 3, 1, 4}},
		{"backward", 3, 1, []int{1, 4, 2, 3}},
		{"to end", 1, 3, []int{1, 3, 4, 2}},
		{"to front", 2, 0, []int{3, 1, 2, 4}},
		{"in place", 2, 2, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := todo.IDs(Splice(tasks, tt.src, tt.dst))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Splice(%d,%d) = %v, want %v", tt.src, tt.dst, got, tt.want)
			}
			if !reflect.DeepEqual(todo.IDs(tasks), []int{1, 2, 3, 4}) {
				t.Fatal("Splice modified its input")
			}
		})
	}
}

func TestReconcileHiddenTasksMoveToFront(t *testing.T) {
	canonical := board()
	visible := view.Build(canonical, view.Filter{Status: view.StatusActive}, view.SortManual)
	if got := todo.IDs(visible); !reflect.DeepEqual(got, []int{2, 3, 4}) {
		t.Fatalf("active view = %v, want [2 3 4]", got)
	}

	got, err := Reconcile(canonical, visible, 1, 0, StrategySentinel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	// A is hidden and lands first; C, B, D follow the new view order.
	want := []int{1, 3, 2, 4}
	if ids := todo.IDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("Reconcile = %v, want %v", ids, want)
	}
}

func TestReconcileHiddenTasksKeepRelativeOrder(t *testing.T) {
	canonical := []todo.Task{
		{ID: 1, Title: "v1", Priority: todo.PriorityHigh},
		{ID: 2, Title: "h1", Priority: todo.PriorityLow},
		{ID: 3, Title: "v2", Priority: todo.PriorityHigh},
		{ID: 4, Title: "h2", Priority: todo.PriorityLow},
		{ID: 5, Title: "v3", Priority: todo.PriorityHigh},
	}
	visible := view.Build(canonical, view.Filter{Priority: "high"}, view.SortManual)

	got, err := Reconcile(canonical, visible, 2, 0, "")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want := []int{2, 4, 5, 1, 3}
	if ids := todo.IDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("Reconcile = %v, want %v", ids, want)
	}
}

func TestReconcileUnfilteredViewMatchesSplice(t *testing.T) {
	canonical := board()
	for src := range canonical {
		for dst := range canonical {
			visible := view.Build(canonical, view.Filter{}, view.SortManual)
			got, err := Reconcile(canonical, visible, src, dst, StrategySentinel)
			if err != nil {
				t.Fatalf("Reconcile(%d,%d) failed: %v", src, dst, err)
			}
			want := todo.IDs(Splice(canonical, src, dst))
			if ids := todo.IDs(got); !reflect.DeepEqual(ids, want) {
				t.Errorf("Reconcile(%d,%d) = %v, want %v", src, dst, ids, want)
			}
		}
	}
}

func TestReconcileSortedView(t *testing.T) {
	canonical := board()
	visible := view.Build(canonical, view.Filter{}, view.SortPriority)
	// priority view: B(2) C(3) A(1) D(4)
	got, err := Reconcile(canonical, visible, 3, 0, StrategySentinel)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want := []int{4, 2, 3, 1}
	if ids := todo.IDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("Reconcile = %v, want %v", ids, want)
	}
}

func TestReconcileAnchored(t *testing.T) {
	canonical := board()
	visible := view.Build(canonical, view.Filter{Status: view.StatusActive}, view.SortManual)

	got, err := Reconcile(canonical, visible, 1, 0, StrategyAnchored)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want := []int{1, 3, 2, 4}
	if ids := todo.IDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("Reconcile = %v, want %v", ids, want)
	}

	canonical = []todo.Task{
		{ID: 1, Title: "v1", Priority: todo.PriorityHigh},
		{ID: 2, Title: "h1", Priority: todo.PriorityLow},
		{ID: 3, Title: "v2", Priority: todo.PriorityHigh},
		{ID: 4, Title: "h2", Priority: todo.PriorityLow},
		{ID: 5, Title: "v3", Priority: todo.PriorityHigh},
	}
	visible = view.Build(canonical, view.Filter{Priority: "high"}, view.SortManual)
	got, err = Reconcile(canonical, visible, 2, 0, StrategyAnchored)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	want = []int{5, 2, 1, 4, 3}
	if ids := todo.IDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("anchored Reconcile = %v, want %v", ids, want)
	}
}

func TestReconcileUsesCanonicalRecords(t *testing.T) {
	canonical := board()
	visible := view.Build(canonical, view.Filter{}, view.SortManual)
	visible[0].Title = "stale"

	for _, strategy := range []Strategy{StrategySentinel, StrategyAnchored} {
		got, err := Reconcile(canonical, visible, 0, 1, strategy)
		if err != nil {
			t.Fatalf("%s: Reconcile failed: %v", strategy, err)
		}
		for _, task := range got {
			if task.Title == "stale" {
				t.Errorf("%s: view copy leaked into result", strategy)
			}
		}
	}
}

func TestReconcileRejectsInvalidInput(t *testing.T) {
	canonical := board()
	visible := view.Build(canonical, view.Filter{}, view.SortManual)

	tests := []struct {
		name      string
		canonical []todo.Task
		visible   []todo.Task
		src, dst  int
	}{
		{"source negative", canonical, visible, -1, 0},
		{"source too large", canonical, visible, 4, 0},
		{"destination too large", canonical, visible, 0, 4},
		{"empty view", canonical, nil, 0, 0},
		{"unknown id", canonical, append(todo.Clone(visible), todo.Task{ID: 99}), 0, 1},
		{"duplicate view id", canonical, []todo.Task{{ID: 2}, {ID: 2}}, 0, 1},
		{"duplicate canonical id", append(todo.Clone(canonical), todo.Task{ID: 1}), visible, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(tt.canonical, tt.visible, tt.src, tt.dst, StrategySentinel)
			if !errors.Is(err, todo.ErrInvalidPermutation) {
				t.Errorf("expected ErrInvalidPermutation, got %v", err)
			}
		})
	}
}

func TestReconcileIsAPermutation(t *testing.T) {
	canonical := board()
	filters := []view.Filter{
		{},
		{Status: view.StatusActive},
		{Status: view.StatusCompleted},
		{Priority: "low"},
	}
	keys := []view.SortKey{view.SortManual, view.SortPriority, view.SortTitle, view.SortDueDate}

	for _, f := range filters {
		for _, k := range keys {
			visible := view.Build(canonical, f, k)
			for src := range visible {
				for dst := range visible {
					for _, strategy := range []Strategy{StrategySentinel, StrategyAnchored} {
						got, err := Reconcile(canonical, visible, src, dst, strategy)
						if err != nil {
							t.Fatalf("Reconcile failed: %v", err)
						}
						if !todo.SamePermutation(canonical, got) {
							t.Fatalf("result %v is not a permutation of %v", todo.IDs(got), todo.IDs(canonical))
						}
					}
				}
			}
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != StrategySentinel {
		t.Errorf("ParseStrategy(\"\") = %q, %v", s, err)
	}
	if s, err := ParseStrategy("Anchored"); err != nil || s != StrategyAnchored {
		t.Errorf("ParseStrategy(Anchored) = %q, %v", s, err)
	}
	if _, err := ParseStrategy("keep"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
