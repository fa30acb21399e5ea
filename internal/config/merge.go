package config

import (
	"strconv"
	"strings"
)

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// intFromString parses an integer, reporting whether s held one.
func intFromString(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}

// markSource records source for field when tracking is enabled.
func markSource(sources map[string]ConfigSource, field string, source ConfigSource) {
	if sources != nil {
		sources[field] = source
	}
}
