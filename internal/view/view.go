// Package view derives filtered and sorted projections of a task list.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nibzard/taskboard/internal/todo"
)

// Status selects tasks by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// PriorityAll disables the priority filter.
const PriorityAll = "all"

// SortKey names a view ordering.
type SortKey string

const (
	// SortManual keeps canonical order.
	SortManual   SortKey = "manual"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
	SortTitle    SortKey = "title"
)

// Filter selects the tasks that appear in a view.
type Filter struct {
	Status   Status
	Priority string // PriorityAll or a todo.Priority value
}

// ParseStatus parses a status filter. Empty means all.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status filter %q, must be one of: all, active, completed", s)
}

// ParsePriority parses a priority filter. Empty means all.
func ParsePriority(s string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" || trimmed == PriorityAll {
		return PriorityAll, nil
	}
	p, err := todo.ParsePriority(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid priority filter %q, must be one of: all, high, medium, low", s)
	}
	return string(p), nil
}

// ParseSortKey parses a sort key. Matching ignores case; "due", "due_date"
// and "none" are accepted aliases. Empty means manual.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual", "none":
		return SortManual, nil
	case "priority":
		return SortPriority, nil
	case "duedate", "due_date", "due-date", "due":
		return SortDueDate, nil
	case "title":
		return SortTitle, nil
	}
	return "", fmt.Errorf("invalid sort key %q, must be one of: manual, priority, dueDate, title", s)
}

// ParseFilter parses both filter dimensions.
func ParseFilter(status, priority string) (Filter, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return Filter{}, err
	}
	pr, err := ParsePriority(priority)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Status: st, Priority: pr}, nil
}

// Match reports whether task passes the filter. Zero-valued fields match
// everything.
func (f Filter) Match(task *todo.Task) bool {
	switch f.Status {
	case StatusActive:
		if task.Completed {
			return false
		}
	case StatusCompleted:
		if !task.Completed {
			return false
		}
	}
	if f.Priority != "" && f.Priority != PriorityAll && string(task.Priority) != f.Priority {
		return false
	}
	return true
}

// Build returns copies of the tasks that pass filter, ordered by key.
// Sorting is stable, so ties keep their canonical relative order. The
// input slice is never modified.
func Build(tasks []todo.Task, filter Filter, key SortKey) []todo.Task {
	out := make([]todo.Task, 0, len(tasks))
	for i := range tasks {
		if filter.Match(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}

	switch key {
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	case SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			return dueBefore(out[i].DueDate, out[j].DueDate)
		})
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	}

	return out
}

// dueBefore orders dated tasks ascending and puts undated tasks last.
func dueBefore(a, b todo.Date) bool {
	_, aok := a.Time()
	_, bok := b.Time()
	switch {
	case aok && bok:
		return a.Before(b)
	case aok:
		return true
	default:
		return false
	}
}

// Counts summarizes a task list for view headers.
type Counts struct {
	All       int `json:"all"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// Count tallies tasks by completion state.
func Count(tasks []todo.Task) Counts {
	c := Counts{All: len(tasks)}
	for i := range tasks {
		if tasks[i].Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
