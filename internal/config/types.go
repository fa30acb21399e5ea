package config

import (
	"github.com/nibzard/taskboard/internal/boarddir"
	"github.com/nibzard/taskboard/internal/persist"
	"github.com/nibzard/taskboard/internal/reorder"
	"github.com/nibzard/taskboard/internal/view"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	Files   []string
}

// Default values.
const (
	DefaultBackend         = persist.BackendFile
	DefaultJournalDir      = "~/.taskboard"
	DefaultListenAddr      = "127.0.0.1:8080"
	DefaultReorderStrategy = string(reorder.StrategySentinel)
	DefaultStatus          = string(view.StatusAll)
	DefaultPriority        = view.PriorityAll
	DefaultSort            = string(view.SortDueDate)
)

// DefaultDataFile is the task file relative to the project root.
var DefaultDataFile = boarddir.DataPath("")

// Config holds the full configuration for taskboard.
type Config struct {
	// Storage
	Backend       string `toml:"backend"`
	DataFile      string `toml:"data_file"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	// Engine
	Strict          bool   `toml:"strict"`
	ReorderStrategy string `toml:"reorder_strategy"`

	// Initial view
	DefaultStatus   string `toml:"default_status"`
	DefaultPriority string `toml:"default_priority"`
	DefaultSort     string `toml:"default_sort"`

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Mutation journal (supports ~ expansion and %VAR% on Windows)
	JournalDir string `toml:"journal_dir"`

	// HTTP API
	ListenAddr string `toml:"listen_addr"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}
