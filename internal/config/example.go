package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskboard configuration file
# Values can be overridden by TASKBOARD_* environment variables or CLI flags

# Storage backend: file, memory or redis
backend = "file"

# Task file for the file backend (relative to project root)
data_file = ".taskboard/tasks.json"

# Redis backend (address may also be a redis:// URL)
# redis_addr = "localhost:6379"
# redis_password = ""
# redis_db = 0
# redis_prefix = "taskboard"

# Fail edits and toggles of unknown task ids instead of ignoring them
strict = false

# Where tasks hidden by the current view end up after a move:
# sentinel (front of the list) or anchored (keep their slots)
reorder_strategy = "sentinel"

# View the list opens with
default_status = "all"      # all, active, completed
default_priority = "all"    # all, high, medium, low
default_sort = "dueDate"    # manual, priority, dueDate, title

# Hook command run after each change with: <kind> <task id> <data file>
# hook_command = "/path/to/hook.sh"

# Journal directory (supports ~ expansion and %VAR% on Windows)
journal_dir = "~/.taskboard"

# Address for taskboard serve
listen_addr = "127.0.0.1:8080"

# Logging
log_level = "info"          # debug, info, warn, error
log_format = "text"         # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
