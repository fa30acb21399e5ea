// Package store owns the canonical task list and applies commands to it.
//
// Every command runs under one lock together with its save, so saves never
// interleave. Subscribers are notified after the lock is released, in commit
// order, and the command returns once they have run. Reads are never held up
// by a slow subscriber. Subscribers may read the store but must not call its
// commands.
package store

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard/internal/reorder"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

// Persistence loads the snapshot once and saves it after each change.
type Persistence interface {
	Load(ctx context.Context) (todo.Snapshot, error)
	Save(ctx context.Context, snap todo.Snapshot) error
}

// EventKind names the command that produced an Event.
type EventKind string

const (
	EventAdded     EventKind = "added"
	EventEdited    EventKind = "edited"
	EventDeleted   EventKind = "deleted"
	EventToggled   EventKind = "toggled"
	EventReordered EventKind = "reordered"
)

// Event describes a committed change.
type Event struct {
	Kind   EventKind
	TaskID int // zero for reorders

	// Task is the task after the change, or the removed task for deletes.
	Task     *todo.Task
	Snapshot todo.Snapshot
}

// Listener receives committed changes.
type Listener func(Event)

// Option configures a Store.
type Option func(*Store)

// WithStrictLookup makes Edit and ToggleComplete return todo.ErrNotFound
// for unknown ids instead of doing nothing.
func WithStrictLookup(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithStrategy selects how Move treats tasks hidden from the view.
func WithStrategy(strategy reorder.Strategy) Option {
	return func(s *Store) {
		s.strategy = strategy
	}
}

// WithLogger sets the logger used for load problems and commits.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the task state engine.
type Store struct {
	mu        sync.Mutex
	snap      todo.Snapshot
	persist   Persistence
	strict    bool
	strategy  reorder.Strategy
	logger    *log.Logger
	loadErr   error
	listeners []subscriber
	nextSub   int
	pending   []delivery

	notifyMu sync.Mutex
}

type subscriber struct {
	id int
	fn Listener
}

type delivery struct {
	ev        Event
	listeners []Listener
}

// New loads the snapshot from p and returns a ready store. A snapshot that
// fails to load is replaced by an empty list; the failure is logged and
// kept in LoadErr.
func New(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("persistence is nil")
	}

	s := &Store{
		persist:  p,
		strategy: reorder.StrategySentinel,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := p.Load(ctx)
	if err != nil {
		s.loadErr = err
		s.logger.Warn("Starting with an empty task list", "err", err)
		snap = todo.DefaultSnapshot()
	}
	if snap.Tasks == nil {
		snap.Tasks = []todo.Task{}
	}
	s.snap = snap
	s.logger.Debug("Loaded tasks", "count", len(snap.Tasks), "next_id", snap.NextID)
	return s, nil
}

// LoadErr returns the error that made New fall back to an empty list.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// Add appends a new task and returns its id. draft.ID must be zero; an
// empty priority defaults to medium.
func (s *Store) Add(ctx context.Context, draft todo.Task) (int, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	next, id, err := applyAdd(s.snap, draft)
	if err != nil {
		return 0, err
	}
	if err := s.commit(ctx, next, Event{Kind: EventAdded, TaskID: id}); err != nil {
		return 0, err
	}
	return id, nil
}

// Edit replaces the fields of the task with task.ID, keeping its position.
func (s *Store) Edit(ctx context.Context, task todo.Task) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := applyEdit(s.snap, task, s.strict)
	if err != nil || !changed {
		return err
	}
	return s.commit(ctx, next, Event{Kind: EventEdited, TaskID: task.ID})
}

// Delete removes the task with id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id int) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.snap.GetTask(id)
	next, changed := applyDelete(s.snap, id)
	if !changed {
		return nil
	}
	task := *removed
	return s.commit(ctx, next, Event{Kind: EventDeleted, TaskID: id, Task: &task})
}

// ToggleComplete flips the completion flag of the task with id.
func (s *Store) ToggleComplete(ctx context.Context, id int) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := applyToggle(s.snap, id, s.strict)
	if err != nil || !changed {
		return err
	}
	return s.commit(ctx, next, Event{Kind: EventToggled, TaskID: id})
}

// Reorder replaces the canonical order with sequence, which must hold
// exactly the stored ids.
func (s *Store) Reorder(ctx context.Context, sequence []todo.Task) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorderLocked(ctx, sequence)
}

// Move applies a move from src to dst made in visible, the view the user
// was looking at, to the canonical order.
func (s *Store) Move(ctx context.Context, visible []todo.Task, src, dst int) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	sequence, err := reorder.Reconcile(s.snap.Tasks, visible, src, dst, s.strategy)
	if err != nil {
		return err
	}
	return s.reorderLocked(ctx, sequence)
}

// MoveInView builds the view for filter and key and applies a move from src
// to dst in it, all under one lock, so the positions cannot refer to a view
// that changed in between.
func (s *Store) MoveInView(ctx context.Context, filter view.Filter, key view.SortKey, src, dst int) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := view.Build(s.snap.Tasks, filter, key)
	sequence, err := reorder.Reconcile(s.snap.Tasks, visible, src, dst, s.strategy)
	if err != nil {
		return err
	}
	return s.reorderLocked(ctx, sequence)
}

func (s *Store) reorderLocked(ctx context.Context, sequence []todo.Task) error {
	next, changed, err := applyReorder(s.snap, sequence)
	if err != nil || !changed {
		return err
	}
	return s.commit(ctx, next, Event{Kind: EventReordered})
}

// View builds a fresh view of the current list.
func (s *Store) View(filter view.Filter, key view.SortKey) []todo.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view.Build(s.snap.Tasks, filter, key)
}

// Tasks returns a copy of the canonical list.
func (s *Store) Tasks() []todo.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return todo.Clone(s.snap.Tasks)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() todo.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Get returns a copy of the task with id.
func (s *Store) Get(id int) (todo.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.snap.GetTask(id); t != nil {
		return *t, true
	}
	return todo.Task{}, false
}

// Subscribe registers fn for committed changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners = append(s.listeners, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// commit saves next, installs it and queues the event for the current
// listeners. On a failed save the current state is kept. The caller holds
// s.mu and must call flush after releasing it.
func (s *Store) commit(ctx context.Context, next todo.Snapshot, ev Event) error {
	if err := s.persist.Save(ctx, next); err != nil {
		s.logger.Error("Save failed", "event", ev.Kind, "task_id", ev.TaskID, "err", err)
		return err
	}
	s.snap = next
	s.logger.Debug("Committed", "event", ev.Kind, "task_id", ev.TaskID, "count", len(next.Tasks))

	if len(s.listeners) == 0 {
		return nil
	}
	if ev.Task == nil && ev.TaskID != 0 {
		if t := next.GetTask(ev.TaskID); t != nil {
			task := *t
			ev.Task = &task
		}
	}
	ev.Snapshot = next.Clone()
	d := delivery{ev: ev, listeners: make([]Listener, len(s.listeners))}
	for i, sub := range s.listeners {
		d.listeners[i] = sub.fn
	}
	s.pending = append(s.pending, d)
	return nil
}

// flush delivers queued events in commit order. Only one goroutine delivers
// at a time; the others wait for it, so a command returns after its own
// event has been delivered.
func (s *Store) flush() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, fn := range d.listeners {
			ev := d.ev
			ev.Snapshot = ev.Snapshot.Clone()
			if ev.Task != nil {
				task := *ev.Task
				ev.Task = &task
			}
			fn(ev)
		}
	}
}
