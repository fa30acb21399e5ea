// Package api serves the task engine over HTTP as JSON.
package api

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nibzard/taskboard/internal/todo"
	"github.com/nibzard/taskboard/internal/view"
)

// Engine is the part of the task store the API drives.
type Engine interface {
	Add(ctx context.Context, draft todo.Task) (int, error)
	Edit(ctx context.Context, task todo.Task) error
	Delete(ctx context.Context, id int) error
	ToggleComplete(ctx context.Context, id int) error
	MoveInView(ctx context.Context, filter view.Filter, key view.SortKey, src, dst int) error
	View(filter view.Filter, key view.SortKey) []todo.Task
	Tasks() []todo.Task
	Get(id int) (todo.Task, bool)
}

// Defaults holds the view used when a request names no filter or sort.
type Defaults struct {
	Filter view.Filter
	Sort   view.SortKey
}

// New returns an echo server with the API routes and middleware installed.
func New(engine Engine, defaults Defaults, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}
	e.HTTPErrorHandler = httpErrorHandler
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	Register(e, engine, defaults, logger)
	return e
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, engine Engine, defaults Defaults, logger *log.Logger) {
	e.GET("/api/tasks", listTasks(engine, defaults))
	e.POST("/api/tasks", createTask(engine, logger))
	e.POST("/api/tasks/reorder", reorderTasks(engine, defaults, logger))
	e.PUT("/api/tasks/:id", updateTask(engine, logger))
	e.DELETE("/api/tasks/:id", deleteTask(engine, logger))
	e.POST("/api/tasks/:id/toggle", toggleTask(engine, logger))
	e.GET("/healthz", healthz())
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if logger == nil {
				return nil
			}
			fields := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency.Round(time.Microsecond)}
			if v.Error != nil {
				logger.Warn("Request failed", append(fields, "err", v.Error)...)
				return nil
			}
			logger.Debug("Request", fields...)
			return nil
		},
	})
}

// Serve runs e on addr until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
