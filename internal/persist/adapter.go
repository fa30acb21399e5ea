package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskboard/internal/todo"
)

// Store keys.
const (
	KeyTasks  = "tasks"
	KeyNextID = "nextId"
)

const tasksSchemaURL = "taskboard://tasks.schema.json"

// tasksSchema describes the value stored under KeyTasks.
const tasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "priority"],
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string"},
      "dueDate": {
        "anyOf": [
          {"type": "string", "maxLength": 0},
          {"type": "string", "format": "date"},
          {"type": "null"}
        ]
      },
      "priority": {"enum": ["high", "medium", "low"]},
      "completed": {"type": "boolean"}
    }
  }
}`

// Adapter reads and writes snapshots as the two entries KeyTasks and
// KeyNextID.
type Adapter struct {
	kv     KV
	schema *jsonschema.Schema
}

// NewAdapter returns an adapter over kv.
func NewAdapter(kv KV) (*Adapter, error) {
	if kv == nil {
		return nil, fmt.Errorf("key-value store is nil")
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(tasksSchemaURL, strings.NewReader(tasksSchema)); err != nil {
		return nil, fmt.Errorf("add tasks schema: %w", err)
	}
	schema, err := compiler.Compile(tasksSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile tasks schema: %w", err)
	}

	return &Adapter{kv: kv, schema: schema}, nil
}

// KV returns the underlying store.
func (a *Adapter) KV() KV {
	return a.kv
}

// Load reads the stored snapshot.
//
// A store without a tasks entry yields an empty list. An entry that cannot
// be read, parsed or validated yields todo.DefaultSnapshot together with an
// *Error, so callers can start from an empty list and still report the
// problem. A missing or stale nextId is repaired to one past the largest id.
func (a *Adapter) Load(ctx context.Context) (todo.Snapshot, error) {
	snap := todo.DefaultSnapshot()

	nextID, err := a.loadNextID(ctx)
	if err != nil {
		return todo.DefaultSnapshot(), err
	}

	raw, err := a.kv.Get(ctx, KeyTasks)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			if nextID > 0 {
				snap.NextID = nextID
			}
			return snap, nil
		}
		return todo.DefaultSnapshot(), &Error{Op: "load", Key: KeyTasks, Err: err}
	}

	tasks, err := a.decodeTasks(raw)
	if err != nil {
		return todo.DefaultSnapshot(), &Error{Op: "load", Key: KeyTasks, Err: err}
	}

	snap.Tasks = tasks
	snap.NextID = nextID
	if max := todo.MaxID(tasks); snap.NextID <= max {
		snap.NextID = max + 1
	}

	if err := snap.ValidateErr(); err != nil {
		return todo.DefaultSnapshot(), &Error{Op: "load", Key: KeyTasks, Err: err}
	}
	return snap, nil
}

// Save validates snap and overwrites both entries.
func (a *Adapter) Save(ctx context.Context, snap todo.Snapshot) error {
	if err := snap.ValidateErr(); err != nil {
		return &Error{Op: "save", Err: err}
	}

	tasks := snap.Tasks
	if tasks == nil {
		tasks = []todo.Task{}
	}
	tasksData, err := json.Marshal(tasks)
	if err != nil {
		return &Error{Op: "save", Key: KeyTasks, Err: err}
	}
	nextData := []byte(strconv.Itoa(snap.NextID))

	if batch, ok := a.kv.(BatchSetter); ok {
		if err := batch.SetMany(ctx, map[string][]byte{
			KeyTasks:  tasksData,
			KeyNextID: nextData,
		}); err != nil {
			return &Error{Op: "save", Err: err}
		}
		return nil
	}

	if err := a.kv.Set(ctx, KeyTasks, tasksData); err != nil {
		return &Error{Op: "save", Key: KeyTasks, Err: err}
	}
	if err := a.kv.Set(ctx, KeyNextID, nextData); err != nil {
		return &Error{Op: "save", Key: KeyNextID, Err: err}
	}
	return nil
}

// loadNextID returns the stored counter, or 0 when it is absent or not a
// positive integer.
func (a *Adapter) loadNextID(ctx context.Context) (int, error) {
	raw, err := a.kv.Get(ctx, KeyNextID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return 0, nil
		}
		return 0, &Error{Op: "load", Key: KeyNextID, Err: err}
	}

	n, err := strconv.Atoi(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if err != nil || n < 1 {
		return 0, nil
	}
	return n, nil
}

func (a *Adapter) decodeTasks(raw []byte) ([]todo.Task, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if doc == nil {
		return []todo.Task{}, nil
	}
	if err := a.schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var tasks []todo.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []todo.Task{}
	}
	return tasks, nil
}

// schemaError flattens a schema validation error into path-qualified
// ValidationErrors.
func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	return errors.Join(errs...)
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*errs = append(*errs, &todo.ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return KeyTasks
	}

	path := KeyTasks
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		path += "." + part
	}
	return path
}
