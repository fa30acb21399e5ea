package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

type taskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    string  `json:"priority"`
	Completed   *bool   `json:"completed,omitempty"`
}

type reorderRequest struct {
	Source      *int   `json:"source"`
	Destination *int   `json:"destination"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Sort        string `json:"sort"`
}

type tasksResponse struct {
	Tasks    []todo.Task `json:"tasks"`
	Counts   view.Counts `json:"counts"`
	Status   string      `json:"status"`
	Priority string      `json:"priority"`
	Sort     string      `json:"sort"`
}

type errorResponse struct {
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

func listTasks(engine Engine, defaults Defaults) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, key, err := parseView(c.QueryParam("status"), c.QueryParam("priority"), c.QueryParam("sort"), defaults)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, newTasksResponse(engine, filter, key))
	}
}

func createTask(engine Engine, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req taskRequest
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		draft := req.task(0)
		draft.Completed = false

		id, err := engine.Add(c.Request().Context(), draft)
		if err != nil {
			return writeError(c, err, logger)
		}
		task, _ := engine.Get(id)
		return c.JSON(http.StatusCreated, task)
	}
}

func updateTask(engine Engine, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		current, ok := engine.Get(id)
		if !ok {
			return writeError(c, notFound(id), logger)
		}

		var req taskRequest
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		task := req.task(id)
		if req.Completed == nil {
			task.Completed = current.Completed
		}
		if req.DueDate == nil {
			task.DueDate = current.DueDate
		}
		if task.Priority == "" {
			task.Priority = current.Priority
		}

		if err := engine.Edit(c.Request().Context(), task); err != nil {
			return writeError(c, err, logger)
		}
		updated, ok := engine.Get(id)
		if !ok {
			return writeError(c, notFound(id), logger)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func deleteTask(engine Engine, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := engine.Delete(c.Request().Context(), id); err != nil {
			return writeError(c, err, logger)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func toggleTask(engine Engine, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if _, ok := engine.Get(id); !ok {
			return writeError(c, notFound(id), logger)
		}
		if err := engine.ToggleComplete(c.Request().Context(), id); err != nil {
			return writeError(c, err, logger)
		}
		task, ok := engine.Get(id)
		if !ok {
			return writeError(c, notFound(id), logger)
		}
		return c.JSON(http.StatusOK, task)
	}
}

// reorderTasks rebuilds the view the client saw from the filter and sort in
// the request, then applies the move to the canonical order.
func reorderTasks(engine Engine, defaults Defaults, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req reorderRequest
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		if req.Source == nil || req.Destination == nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "source and destination are required"})
		}
		filter, key, err := parseView(req.Status, req.Priority, req.Sort, defaults)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}

		if err := engine.MoveInView(c.Request().Context(), filter, key, *req.Source, *req.Destination); err != nil {
			return writeError(c, err, logger)
		}
		return c.JSON(http.StatusOK, newTasksResponse(engine, filter, key))
	}
}

func (r *taskRequest) task(id int) todo.Task {
	t := todo.Task{
		ID:          id,
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Priority:    todo.Priority(strings.ToLower(strings.TrimSpace(r.Priority))),
	}
	if r.DueDate != nil {
		t.DueDate = todo.Date(strings.TrimSpace(*r.DueDate))
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
	return t
}

func newTasksResponse(engine Engine, filter view.Filter, key view.SortKey) tasksResponse {
	return tasksResponse{
		Tasks:    engine.View(filter, key),
		Counts:   view.Count(engine.Tasks()),
		Status:   string(filter.Status),
		Priority: filter.Priority,
		Sort:     string(key),
	}
}

// parseView resolves query values, using defaults for the empty ones.
func parseView(status, priority, sortKey string, defaults Defaults) (view.Filter, view.SortKey, error) {
	filter := defaults.Filter
	if filter.Status == "" {
		filter.Status = view.StatusAll
	}
	if filter.Priority == "" {
		filter.Priority = view.PriorityAll
	}
	if status != "" {
		st, err := view.ParseStatus(status)
		if err != nil {
			return view.Filter{}, "", err
		}
		filter.Status = st
	}
	if priority != "" {
		pr, err := view.ParsePriority(priority)
		if err != nil {
			return view.Filter{}, "", err
		}
		filter.Priority = pr
	}

	key := defaults.Sort
	if key == "" {
		key = view.SortManual
	}
	if sortKey != "" {
		k, err := view.ParseSortKey(sortKey)
		if err != nil {
			return view.Filter{}, "", err
		}
		key = k
	}
	return filter, key, nil
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return id, nil
}

func notFound(id int) error {
	return &idError{id: id}
}

type idError struct{ id int }

func (e *idError) Error() string { return "task " + strconv.Itoa(e.id) + " not found" }
func (e *idError) Unwrap() error { return todo.ErrNotFound }

// httpErrorHandler renders echo errors in the API's error shape.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorResponse{Error: msg})
}

// writeError maps engine errors to HTTP status codes.
func writeError(c echo.Context, err error, logger *log.Logger) error {
	var verr *todo.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Err.Error(), Path: verr.Path})
	case errors.Is(err, todo.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, todo.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, todo.ErrInvalidPermutation):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	}

	var perr *persist.Error
	if errors.As(err, &perr) && logger != nil {
		logger.Error("Persistence failed", "op", perr.Op, "key", perr.Key, "err", perr.Err)
	} else if logger != nil {
		logger.Error("Request failed", "err", err)
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
