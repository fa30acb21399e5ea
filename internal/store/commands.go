package store

import (
	"fmt"

	"github.com/nibzard/taskboard/internal/todo"
)

// The functions in this file are the pure transitions behind Store's
// commands. Each returns the next snapshot and whether anything changed;
// none of them modifies its input.

func applyAdd(s todo.Snapshot, draft todo.Task) (todo.Snapshot, int, error) {
	if draft.ID != 0 {
		return s, 0, &todo.ValidationError{
			Path: "id",
			Err:  fmt.Errorf("new tasks must not carry an id, got %d", draft.ID),
		}
	}
	if draft.Priority == "" {
		draft.Priority = todo.PriorityMedium
	}
	if err := todo.ValidateTask(&draft, ""); err != nil {
		return s, 0, err
	}

	next := s.Clone()
	draft.ID = next.NextID
	next.Tasks = append(next.Tasks, draft)
	next.NextID++
	return next, draft.ID, nil
}

func applyEdit(s todo.Snapshot, task todo.Task, strict bool) (todo.Snapshot, bool, error) {
	if err := todo.ValidateTask(&task, ""); err != nil {
		return s, false, err
	}
	i := s.Index(task.ID)
	if i < 0 {
		return s, false, missing(task.ID, strict)
	}
	if s.Tasks[i] == task {
		return s, false, nil
	}
	next := s.Clone()
	next.Tasks[i] = task
	return next, true, nil
}

func applyDelete(s todo.Snapshot, id int) (todo.Snapshot, bool) {
	i := s.Index(id)
	if i < 0 {
		return s, false
	}
	next := todo.Snapshot{NextID: s.NextID, Tasks: make([]todo.Task, 0, len(s.Tasks)-1)}
	next.Tasks = append(next.Tasks, s.Tasks[:i]...)
	next.Tasks = append(next.Tasks, s.Tasks[i+1:]...)
	return next, true
}

func applyToggle(s todo.Snapshot, id int, strict bool) (todo.Snapshot, bool, error) {
	i := s.Index(id)
	if i < 0 {
		return s, false, missing(id, strict)
	}
	next := s.Clone()
	next.Tasks[i].Completed = !next.Tasks[i].Completed
	return next, true, nil
}

func applyReorder(s todo.Snapshot, sequence []todo.Task) (todo.Snapshot, bool, error) {
	if !todo.SamePermutation(s.Tasks, sequence) {
		return s, false, fmt.Errorf("sequence of %d tasks does not match the %d stored: %w",
			len(sequence), len(s.Tasks), todo.ErrInvalidPermutation)
	}

	byID := make(map[int]todo.Task, len(s.Tasks))
	for _, t := range s.Tasks {
		byID[t.ID] = t
	}

	next := todo.Snapshot{NextID: s.NextID, Tasks: make([]todo.Task, len(sequence))}
	changed := false
	for i := range sequence {
		// Records come from the stored list; the sequence only supplies order.
		next.Tasks[i] = byID[sequence[i].ID]
		if next.Tasks[i].ID != s.Tasks[i].ID {
			changed = true
		}
	}
	return next, changed, nil
}

func missing(id int, strict bool) error {
	if !strict {
		return nil
	}
	return fmt.Errorf("task %d: %w", id, todo.ErrNotFound)
}
