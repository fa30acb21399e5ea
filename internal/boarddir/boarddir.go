// Package boarddir provides constants and utilities for the .taskboard directory structure.
package boarddir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// Dir is the name of the taskboard state directory.
	Dir = ".taskboard"

	// DefaultDataFile is the default task file name (inside .taskboard).
	DefaultDataFile = "tasks.json"

	// DefaultConfigFile is the default config file name (inside .taskboard).
	DefaultConfigFile = "taskboard.toml"
)

// DataPath returns the path to the task file within a work directory.
func DataPath(workDir string) string {
	return filepath.Join(DirPath(workDir), DefaultDataFile)
}

// ConfigPath returns the path to the config file within a work directory.
func ConfigPath(workDir string) string {
	return filepath.Join(DirPath(workDir), DefaultConfigFile)
}

// DirPath returns the path to the .taskboard directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

// Ensure creates the .taskboard directory if it is missing and returns its path.
func Ensure(workDir string) (string, error) {
	dir := DirPath(workDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}
