package config

import "flag"

// parseFlags defines and parses the global CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsHelper(cfg, fs, args, nil, "")
}

// parseFlagsHelper is the shared implementation for flag parsing.
// Flags are bound to copies of the current values and applied only when set
// on the command line, so an unset flag never overrides a file or env value.
// If sources is non-nil, it tracks the source of each value.
func parseFlagsHelper(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource, source ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskboard", flag.ContinueOnError)
	}

	type binding struct {
		field string
		apply func()
	}
	bindings := make(map[string]binding)

	str := func(name, field string, target *string, usage string) {
		v := new(string)
		fs.StringVar(v, name, *target, usage)
		bindings[name] = binding{field: field, apply: func() { *target = *v }}
	}
	integer := func(name, field string, target *int, usage string) {
		v := new(int)
		fs.IntVar(v, name, *target, usage)
		bindings[name] = binding{field: field, apply: func() { *target = *v }}
	}
	boolean := func(name, field string, target *bool, usage string) {
		v := new(bool)
		fs.BoolVar(v, name, *target, usage)
		bindings[name] = binding{field: field, apply: func() { *target = *v }}
	}

	// Storage
	str("backend", "backend", &cfg.Backend, "Storage backend (file, memory, redis)")
	str("data", "data_file", &cfg.DataFile, "Path to the task file (file backend)")
	str("redis-addr", "redis_addr", &cfg.RedisAddr, "Redis address (host:port or redis:// URL)")
	str("redis-password", "redis_password", &cfg.RedisPassword, "Redis password")
	integer("redis-db", "redis_db", &cfg.RedisDB, "Redis database number")
	str("redis-prefix", "redis_prefix", &cfg.RedisPrefix, "Prefix for Redis keys")

	// Engine
	boolean("strict", "strict", &cfg.Strict, "Fail edits and toggles of unknown task ids")
	str("reorder-strategy", "reorder_strategy", &cfg.ReorderStrategy, "Placement of hidden tasks on reorder (sentinel, anchored)")

	// Hooks and journal
	str("hook", "hook_command", &cfg.HookCommand, "Hook command to run after each change")
	str("journal-dir", "journal_dir", &cfg.JournalDir, "Journal directory")

	// Logging
	str("log-level", "log_level", &cfg.LogLevel, "Log level (debug, info, warn, error)")
	str("log-format", "log_format", &cfg.LogFormat, "Log format (text, json, logfmt)")
	boolean("log-timestamps", "log_timestamps", &cfg.LogTimestamps, "Show timestamps in logs")
	boolean("log-caller", "log_caller", &cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		b, ok := bindings[f.Name]
		if !ok {
			return
		}
		b.apply()
		markSource(sources, b.field, source)
	})

	return nil
}
