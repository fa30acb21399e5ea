package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/reorder"
	"github.com/nibzard/taskboard/internal/view"
)

// PersistOptions returns the backend options for persist.Open.
func (c *Config) PersistOptions() persist.Options {
	return persist.Options{
		Backend:       c.Backend,
		DataFile:      c.DataFile,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		RedisPrefix:   c.RedisPrefix,
	}
}

// Strategy returns the configured reorder strategy, falling back to the
// sentinel strategy for invalid values.
func (c *Config) Strategy() reorder.Strategy {
	s, err := reorder.ParseStrategy(c.ReorderStrategy)
	if err != nil {
		return reorder.StrategySentinel
	}
	return s
}

// ViewFilter returns the filter the list opens with.
func (c *Config) ViewFilter() view.Filter {
	f, err := view.ParseFilter(c.DefaultStatus, c.DefaultPriority)
	if err != nil {
		return view.Filter{}
	}
	return f
}

// SortKey returns the sort key the list opens with.
func (c *Config) SortKey() view.SortKey {
	k, err := view.ParseSortKey(c.DefaultSort)
	if err != nil {
		return view.SortDueDate
	}
	return k
}

// Validate reports every setting that holds an unknown value.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case "", persist.BackendFile:
		if c.DataFile == "" {
			errs = append(errs, fmt.Errorf("data_file: required for the file backend"))
		}
	case persist.BackendMemory:
	case persist.BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("redis_addr: required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend: unknown value %q, must be one of: file, memory, redis", c.Backend))
	}
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("redis_db: must not be negative"))
	}
	if _, err := reorder.ParseStrategy(c.ReorderStrategy); err != nil {
		errs = append(errs, fmt.Errorf("reorder_strategy: %w", err))
	}
	if _, err := view.ParseStatus(c.DefaultStatus); err != nil {
		errs = append(errs, fmt.Errorf("default_status: %w", err))
	}
	if _, err := view.ParsePriority(c.DefaultPriority); err != nil {
		errs = append(errs, fmt.Errorf("default_priority: %w", err))
	}
	if _, err := view.ParseSortKey(c.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("default_sort: %w", err))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log_format: unknown value %q, must be one of: text, json, logfmt", c.LogFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown value %q", c.LogLevel))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}
