// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/taskboard/internal/reorder"
	"github.com/nibzard/taskboard/internal/view"
)

// isolate points the user and project config lookups at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	project := t.TempDir()
	t.Chdir(project)
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.Backend != "file" {
		t.Errorf("Backend: got %q, want file", cfg.Backend)
	}
	if cfg.DataFile != filepath.Join(".taskboard", "tasks.json") {
		t.Errorf("DataFile: got %q", cfg.DataFile)
	}
	if cfg.DefaultSort != "dueDate" {
		t.Errorf("DefaultSort: got %q, want dueDate", cfg.DefaultSort)
	}
	if cfg.ReorderStrategy != "sentinel" {
		t.Errorf("ReorderStrategy: got %q, want sentinel", cfg.ReorderStrategy)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASKBOARD_BACKEND", "redis")
	t.Setenv("TASKBOARD_REDIS_ADDR", "localhost:6380")
	t.Setenv("TASKBOARD_REDIS_DB", "2")
	t.Setenv("TASKBOARD_STRICT", "yes")
	t.Setenv("TASKBOARD_SORT", "title")
	t.Setenv("TASKBOARD_LOG_CALLER", "1")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg)

	if cfg.Backend != "redis" {
		t.Errorf("Backend: got %q, want redis", cfg.Backend)
	}
	if cfg.RedisAddr != "localhost:6380" {
		t.Errorf("RedisAddr: got %q", cfg.RedisAddr)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB: got %d, want 2", cfg.RedisDB)
	}
	if !cfg.Strict {
		t.Error("Strict: got false, want true")
	}
	if cfg.DefaultSort != "title" {
		t.Errorf("DefaultSort: got %q, want title", cfg.DefaultSort)
	}
	if !cfg.LogCaller {
		t.Error("LogCaller: got false, want true")
	}
}

func TestLoadFromEnvIgnoresBadInt(t *testing.T) {
	t.Setenv("TASKBOARD_REDIS_DB", "two")

	cfg := &Config{RedisDB: 4}
	loadFromEnv(cfg)
	if cfg.RedisDB != 4 {
		t.Errorf("RedisDB: got %d, want 4", cfg.RedisDB)
	}
}

func TestLoadConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "taskboard.toml")
	writeFile(t, configFile, `backend = "memory"
reorder_strategy = "anchored"
default_priority = "high"
`)

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, configFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.Backend != "memory" {
		t.Errorf("Backend: got %q, want memory", cfg.Backend)
	}
	if cfg.Strategy() != reorder.StrategyAnchored {
		t.Errorf("Strategy: got %q, want anchored", cfg.Strategy())
	}
	if cfg.ViewFilter().Priority != "high" {
		t.Errorf("ViewFilter: got %+v", cfg.ViewFilter())
	}
	if cfg.DefaultSort != DefaultSort {
		t.Errorf("DefaultSort should keep its default, got %q", cfg.DefaultSort)
	}
}

func TestLoadConfigFileRejectsUnknownKeys(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "taskboard.toml")
	writeFile(t, configFile, "max_iterations = 5\n")

	cfg := &Config{}
	err := loadConfigFile(cfg, configFile)
	if err == nil || !strings.Contains(err.Error(), "max_iterations") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoadLayering(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".taskboard", "taskboard.toml"), `default_sort = "title"
default_status = "active"
log_level = "debug"
`)
	writeFile(t, filepath.Join(".taskboard", "taskboard.toml"), `default_status = "completed"
backend = "memory"
`)
	t.Setenv("TASKBOARD_LOG_LEVEL", "warn")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"--backend", "file", "ls"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		field  string
		got    string
		want   string
		source ConfigSource
	}{
		{"default_sort", cfg.DefaultSort, "title", SourceUserFile},
		{"default_status", cfg.DefaultStatus, "completed", SourceProjFile},
		{"log_level", cfg.LogLevel, "warn", SourceEnv},
		{"backend", cfg.Backend, "file", SourceFlag},
		{"default_priority", cfg.DefaultPriority, "all", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("value: got %q, want %q", tt.got, tt.want)
			}
			if cws.Sources[tt.field] != tt.source {
				t.Errorf("source: got %q, want %q", cws.Sources[tt.field], tt.source)
			}
		})
	}

	if got := fs.Args(); len(got) != 1 || got[0] != "ls" {
		t.Errorf("remaining args: got %v, want [ls]", got)
	}
	if cws.GetConfigFile() != filepath.Join(".taskboard", "taskboard.toml") {
		t.Errorf("GetConfigFile: got %q", cws.GetConfigFile())
	}
	if !filepath.IsAbs(cfg.DataFile) {
		t.Errorf("DataFile should be absolute, got %q", cfg.DataFile)
	}
}

func TestLoadFlagsOverrideOnlyWhenSet(t *testing.T) {
	isolate(t)
	t.Setenv("TASKBOARD_HOOK", "/bin/env-hook")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"--strict", "--redis-db", "3"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HookCommand != "/bin/env-hook" {
		t.Errorf("HookCommand: got %q, want env value", cfg.HookCommand)
	}
	if !cfg.Strict {
		t.Error("Strict: got false, want true")
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB: got %d, want 3", cfg.RedisDB)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"backend", []string{"--backend", "sqlite"}, "backend"},
		{"strategy", []string{"--reorder-strategy", "random"}, "reorder_strategy"},
		{"redis without addr", []string{"--backend", "redis"}, "redis_addr"},
		{"log format", []string{"--log-format", "xml"}, "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error naming %s, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.DefaultStatus = "done"
	cfg.DefaultSort = "size"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"default_status", "default_sort"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error should name %s: %v", field, err)
		}
	}
}

func TestGetters(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.RedisAddr = "localhost:6379"
	cfg.RedisPrefix = "tb"

	opts := cfg.PersistOptions()
	if opts.Backend != "file" || opts.RedisAddr != "localhost:6379" || opts.RedisPrefix != "tb" {
		t.Errorf("PersistOptions: got %+v", opts)
	}
	if cfg.SortKey() != view.SortDueDate {
		t.Errorf("SortKey: got %q, want dueDate", cfg.SortKey())
	}
	if f := cfg.ViewFilter(); f.Status != view.StatusAll || f.Priority != view.PriorityAll {
		t.Errorf("ViewFilter: got %+v", f)
	}

	cfg.ReorderStrategy = "bogus"
	if cfg.Strategy() != reorder.StrategySentinel {
		t.Errorf("Strategy fallback: got %q", cfg.Strategy())
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	cfg := &Config{}
	md, err := toml.Decode(ExampleConfig(), cfg)
	if err != nil {
		t.Fatalf("decode example: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		t.Errorf("example has unknown keys: %v", undecoded)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example should validate: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	t.Setenv("TASKBOARD_TEST_DIR", "/srv/boards")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/test", filepath.Join(home, "test")},
		{"~other/test", "~other/test"},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
		{"$TASKBOARD_TEST_DIR/tasks.json", "/srv/boards/tasks.json"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	root := filepath.Join(string(filepath.Separator), "work", "board")

	tests := []struct {
		name  string
		input string
		root  string
		want  string
	}{
		{"empty", "", root, ""},
		{"board dir", filepath.Join(".taskboard", "tasks.json"), root, filepath.Join(root, ".taskboard", "tasks.json")},
		{"relative", "journal", root, filepath.Join(root, "journal")},
		{"home", "~/.taskboard", root, filepath.Join(home, ".taskboard")},
		{"absolute", filepath.Join(string(filepath.Separator), "var", "tasks.json"), root, filepath.Join(string(filepath.Separator), "var", "tasks.json")},
		{"no root", "journal", "", "journal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePath(tt.input, tt.root); got != tt.want {
				t.Errorf("resolvePath(%q, %q): got %q, want %q", tt.input, tt.root, got, tt.want)
			}
		})
	}
}

func TestLoadResolvesJournalDirAgainstProjectRoot(t *testing.T) {
	isolate(t)
	t.Setenv("TASKBOARD_JOURNAL_DIR", "journal")

	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(cfg.ProjectRoot, "journal"); cfg.JournalDir != want {
		t.Errorf("JournalDir: got %q, want %q", cfg.JournalDir, want)
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{
		"--data", "board.json",
		"--reorder-strategy", "anchored",
		"--log-timestamps",
	}

	if err := parseFlags(cfg, fs, args); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.DataFile != "board.json" {
		t.Errorf("DataFile: got %q, want board.json", cfg.DataFile)
	}
	if cfg.ReorderStrategy != "anchored" {
		t.Errorf("ReorderStrategy: got %q, want anchored", cfg.ReorderStrategy)
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps: got false, want true")
	}
	if cfg.Backend != DefaultBackend {
		t.Errorf("Backend changed without flag: %q", cfg.Backend)
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := boolFromString(tt.input)
			if got != tt.want {
				t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
