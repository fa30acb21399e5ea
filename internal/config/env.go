package config

import "os"

// envPrefix prefixes every environment variable taskboard reads.
const envPrefix = "TASKBOARD_"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvHelper(cfg, nil, "")
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource, source ConfigSource) {
	str := func(name, field string, target *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*target = v
			markSource(sources, field, source)
		}
	}
	boolean := func(name, field string, target *bool) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*target = boolFromString(v)
			markSource(sources, field, source)
		}
	}

	str("BACKEND", "backend", &cfg.Backend)
	str("DATA_FILE", "data_file", &cfg.DataFile)
	str("REDIS_ADDR", "redis_addr", &cfg.RedisAddr)
	str("REDIS_PASSWORD", "redis_password", &cfg.RedisPassword)
	if v := os.Getenv(envPrefix + "REDIS_DB"); v != "" {
		if i, ok := intFromString(v); ok {
			cfg.RedisDB = i
			markSource(sources, "redis_db", source)
		}
	}
	str("REDIS_PREFIX", "redis_prefix", &cfg.RedisPrefix)

	boolean("STRICT", "strict", &cfg.Strict)
	str("REORDER_STRATEGY", "reorder_strategy", &cfg.ReorderStrategy)

	str("STATUS", "default_status", &cfg.DefaultStatus)
	str("PRIORITY", "default_priority", &cfg.DefaultPriority)
	str("SORT", "default_sort", &cfg.DefaultSort)

	str("HOOK", "hook_command", &cfg.HookCommand)
	str("JOURNAL_DIR", "journal_dir", &cfg.JournalDir)
	str("LISTEN_ADDR", "listen_addr", &cfg.ListenAddr)

	// Logging configuration
	str("LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("LOG_CALLER", "log_caller", &cfg.LogCaller)
}
