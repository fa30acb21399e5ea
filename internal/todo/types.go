// Package todo defines tasks, snapshots, and their validation rules.
package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire layout of a due date.
const DateLayout = "2006-01-02"

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("invalid task")
	// ErrNotFound reports a command that referenced an unknown id.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidPermutation reports a sequence or view that is not a
	// permutation of the canonical task set.
	ErrInvalidPermutation = errors.New("invalid permutation")
)

// Priority represents a task priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the valid priorities from highest to lowest.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank returns 1 for high, 2 for medium and 3 for low.
// Unknown priorities rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// ParsePriority parses a priority name, ignoring case and surrounding space.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q, must be one of: high, medium, low", s)
	}
	return p, nil
}

// Date is a calendar date in YYYY-MM-DD form. The zero value means no date.
type Date string

// ParseDate parses and normalizes a calendar date. An empty string yields
// the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Date(t.Format(DateLayout)), nil
}

// IsZero reports whether no date is set.
func (d Date) IsZero() bool {
	return d == ""
}

// Time returns the date at midnight UTC. ok is false for the zero or a
// malformed date.
func (d Date) Time() (t time.Time, ok bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Before reports whether d is strictly earlier than other. Both dates must
// be set.
func (d Date) Before(other Date) bool {
	left, _ := d.Time()
	right, _ := other.Time()
	return left.Before(right)
}

// Task represents a single task in the list.
type Task struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     Date     `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

// IsZero returns true if the task has no id assigned.
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// Snapshot is the durable state of a task list.
type Snapshot struct {
	Tasks  []Task `json:"tasks"`
	NextID int    `json:"nextId"`
}

// DefaultSnapshot returns the state of a list that was never saved.
func DefaultSnapshot() Snapshot {
	return Snapshot{Tasks: []Task{}, NextID: 1}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Tasks: Clone(s.Tasks), NextID: s.NextID}
}

// Index returns the position of the task with id, or -1.
func (s Snapshot) Index(id int) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// GetTask returns a task by ID, or nil if not found.
func (s *Snapshot) GetTask(id int) *Task {
	if i := s.Index(id); i >= 0 {
		return &s.Tasks[i]
	}
	return nil
}

// Clone returns a copy of tasks that shares no backing array with it.
// A nil input yields an empty, non-nil slice.
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// IDs returns the ids of tasks in order.
func IDs(tasks []Task) []int {
	ids := make([]int, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	return ids
}

// MaxID returns the largest id in tasks, or 0 for an empty list.
func MaxID(tasks []Task) int {
	max := 0
	for i := range tasks {
		if tasks[i].ID > max {
			max = tasks[i].ID
		}
	}
	return max
}

// SamePermutation reports whether a and b hold the same distinct ids.
func SamePermutation(a, b []Task) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]bool, len(a))
	for i := range a {
		if seen[a[i].ID] {
			return false
		}
		seen[a[i].ID] = true
	}
	for i := range b {
		if !seen[b[i].ID] {
			return false
		}
		delete(seen, b[i].ID)
	}
	return len(seen) == 0
}
