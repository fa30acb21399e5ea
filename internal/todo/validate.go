package todo

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateTask checks the user-editable fields of a task. The id is not
// checked; path prefixes the reported location.
func ValidateTask(task *Task, path string) *ValidationError {
	if strings.TrimSpace(task.Title) == "" {
		return &ValidationError{
			Path: joinPath(path, "title"),
			Err:  fmt.Errorf("missing required field"),
		}
	}

	if !task.Priority.Valid() {
		return &ValidationError{
			Path: joinPath(path, "priority"),
			Err:  fmt.Errorf("invalid priority %q, must be one of: high, medium, low", task.Priority),
		}
	}

	if !task.DueDate.IsZero() {
		if _, ok := task.DueDate.Time(); !ok {
			return &ValidationError{
				Path: joinPath(path, "dueDate"),
				Err:  fmt.Errorf("invalid date %q, expected YYYY-MM-DD", task.DueDate),
			}
		}
	}

	return nil
}

// Validate checks every snapshot invariant and returns all violations.
func (s *Snapshot) Validate() []error {
	var errs []error

	if s.NextID < 1 {
		errs = append(errs, &ValidationError{
			Path: "nextId",
			Err:  fmt.Errorf("must be at least 1, got %d", s.NextID),
		})
	}

	seen := make(map[int]int, len(s.Tasks))
	for i := range s.Tasks {
		task := &s.Tasks[i]
		path := fmt.Sprintf("tasks[%d]", i)

		if task.ID < 1 {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("must be positive, got %d", task.ID),
			})
		} else if prev, dup := seen[task.ID]; dup {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (also at tasks[%d])", task.ID, prev),
			})
		} else {
			seen[task.ID] = i
		}

		if task.ID >= s.NextID && s.NextID >= 1 {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("id %d is not below nextId %d", task.ID, s.NextID),
			})
		}

		if err := ValidateTask(task, path); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// ValidateErr is Validate folded into a single error, or nil.
func (s *Snapshot) ValidateErr() error {
	return errors.Join(s.Validate()...)
}

func joinPath(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}
