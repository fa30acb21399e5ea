// Package reorder maps a move made in a filtered or sorted view back onto
// the canonical task order.
package reorder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nibzard/taskboard/internal/todo"
)

// Strategy decides where tasks hidden from the view end up.
type Strategy string

const (
	// StrategySentinel ranks hidden tasks below every visible one, so they
	// gather at the front of the list in their previous relative order.
	StrategySentinel Strategy = "sentinel"
	// StrategyAnchored leaves hidden tasks in their slots and refills the
	// visible slots in the new view order.
	StrategyAnchored Strategy = "anchored"
)

// hiddenRank is lower than every index a visible task can have.
const hiddenRank = -1

// ParseStrategy parses a strategy name. Empty means StrategySentinel.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySentinel:
		return StrategySentinel, nil
	case StrategyAnchored:
		return StrategyAnchored, nil
	}
	return "", fmt.Errorf("invalid reorder strategy %q, must be one of: sentinel, anchored", s)
}

// Splice moves the element at src to dst and returns the result as a new
// slice.
func Splice(tasks []todo.Task, src, dst int) []todo.Task {
	out := todo.Clone(tasks)
	moved := out[src]
	out = append(out[:src], out[src+1:]...)
	out = append(out, todo.Task{})
	copy(out[dst+1:], out[dst:])
	out[dst] = moved
	return out
}

// Reconcile applies the move src→dst performed on visible to canonical and
// returns the new canonical order. visible must be the view the user saw,
// built from canonical. Neither input is modified.
func Reconcile(canonical, visible []todo.Task, src, dst int, strategy Strategy) ([]todo.Task, error) {
	if err := check(canonical, visible, src, dst); err != nil {
		return nil, err
	}

	moved := Splice(visible, src, dst)
	rank := make(map[int]int, len(moved))
	for i := range moved {
		rank[moved[i].ID] = i
	}

	switch strategy {
	case StrategyAnchored:
		return anchored(canonical, moved, rank), nil
	case "", StrategySentinel:
		return sentinel(canonical, rank), nil
	default:
		return nil, fmt.Errorf("unknown reorder strategy %q", strategy)
	}
}

func sentinel(canonical []todo.Task, rank map[int]int) []todo.Task {
	out := todo.Clone(canonical)
	rankOf := func(id int) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return hiddenRank
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rankOf(out[i].ID) < rankOf(out[j].ID)
	})
	return out
}

func anchored(canonical, moved []todo.Task, rank map[int]int) []todo.Task {
	out := todo.Clone(canonical)
	next := 0
	for i := range out {
		if _, visible := rank[out[i].ID]; !visible {
			continue
		}
		out[i] = canonicalCopy(canonical, moved[next].ID)
		next++
	}
	return out
}

// canonicalCopy returns the canonical record for id, so stale fields in a
// view never leak into the committed order.
func canonicalCopy(canonical []todo.Task, id int) todo.Task {
	for i := range canonical {
		if canonical[i].ID == id {
			return canonical[i]
		}
	}
	return todo.Task{ID: id}
}

func check(canonical, visible []todo.Task, src, dst int) error {
	if src < 0 || src >= len(visible) {
		return fmt.Errorf("source index %d out of range [0,%d): %w", src, len(visible), todo.ErrInvalidPermutation)
	}
	if dst < 0 || dst >= len(visible) {
		return fmt.Errorf("destination index %d out of range [0,%d): %w", dst, len(visible), todo.ErrInvalidPermutation)
	}

	known := make(map[int]bool, len(canonical))
	for i := range canonical {
		if known[canonical[i].ID] {
			return fmt.Errorf("canonical id %d appears twice: %w", canonical[i].ID, todo.ErrInvalidPermutation)
		}
		known[canonical[i].ID] = true
	}

	seen := make(map[int]bool, len(visible))
	for i := range visible {
		id := visible[i].ID
		if !known[id] {
			return fmt.Errorf("view id %d is not in the list: %w", id, todo.ErrInvalidPermutation)
		}
		if seen[id] {
			return fmt.Errorf("view id %d appears twice: %w", id, todo.ErrInvalidPermutation)
		}
		seen[id] = true
	}
	return nil
}
