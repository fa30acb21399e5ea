// Package logging provides the console logger and the JSONL journal of
// committed task changes.
package logging

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/taskboard/internal/store"
	"github.com/nibzard/taskboard/internal/todo"
)

// Entry is one line of a journal file.
type Entry struct {
	ID     string     `json:"id"`
	Time   time.Time  `json:"time"`
	Kind   string     `json:"kind"`
	TaskID int        `json:"task_id,omitempty"`
	Task   *todo.Task `json:"task,omitempty"`
	Count  int        `json:"count"`
	NextID int        `json:"next_id"`
}

// Journal appends store events to a per-run JSONL file.
type Journal struct {
	Dir   string
	RunID string
	Path  string

	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewJournal creates the journal directory for workDir's project under
// baseDir and opens a new JSONL file in it.
func NewJournal(baseDir, workDir string) (*Journal, error) {
	dir, err := FindJournalDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	id := runID()
	path := filepath.Join(dir, id+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create journal file: %w", err)
	}

	return &Journal{
		Dir:   dir,
		RunID: id,
		Path:  path,
		file:  file,
		now:   time.Now,
	}, nil
}

// Record appends ev as one JSON line.
func (j *Journal) Record(ev store.Event) error {
	entry := Entry{
		ID:     uuid.NewString(),
		Time:   j.now().UTC(),
		Kind:   string(ev.Kind),
		TaskID: ev.TaskID,
		Count:  len(ev.Snapshot.Tasks),
		NextID: ev.Snapshot.NextID,
		Task:   ev.Task,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return fmt.Errorf("journal is closed")
	}
	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}
	return nil
}

// Listener returns a store listener that records every event and logs
// failures to logger.
func (j *Journal) Listener(logger *log.Logger) store.Listener {
	return func(ev store.Event) {
		if err := j.Record(ev); err != nil && logger != nil {
			logger.Warn("Journal write failed", "err", err)
		}
	}
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// ReadEntries decodes journal lines from r, skipping blank lines.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return entries, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

func resolveProjectRoot(workDir string) string {
	if workDir == "" {
		return "."
	}
	if _, err := exec.LookPath("git"); err == nil {
		cmd := exec.Command("git", "-C", workDir, "rev-parse", "--show-toplevel")
		if output, err := cmd.Output(); err == nil {
			if root := strings.TrimSpace(string(output)); root != "" {
				return root
			}
		}
	}
	return workDir
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

func slugify(input string) string {
	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" || slug == "." {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindJournalDir returns the journal directory for a given work directory.
func FindJournalDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("journal base dir is empty")
	}

	resolvedWorkDir := workDir
	if resolvedWorkDir == "" {
		resolvedWorkDir = "."
	}
	if abs, err := filepath.Abs(resolvedWorkDir); err == nil {
		resolvedWorkDir = abs
	}

	baseDir = resolveBaseDir(baseDir, resolvedWorkDir)
	return filepath.Join(baseDir, projectSlug(resolveProjectRoot(resolvedWorkDir))), nil
}

// Run describes one journal file.
type Run struct {
	ID      string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListRuns returns the journal files in dir, newest first. A missing
// directory yields no runs.
func ListRuns(dir string) ([]Run, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal dir: %w", err)
	}

	var runs []Run
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, Run{
			ID:      strings.TrimSuffix(name, ".jsonl"),
			Path:    filepath.Join(dir, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	// Run ids start with a UTC timestamp, so they break ties between
	// files written within the same clock tick.
	sort.Slice(runs, func(i, k int) bool {
		if !runs[i].ModTime.Equal(runs[k].ModTime) {
			return runs[i].ModTime.After(runs[k].ModTime)
		}
		return runs[i].ID > runs[k].ID
	})
	return runs, nil
}

// FindLatest returns the newest journal file in dir, or "" if there is none.
func FindLatest(dir string) (string, error) {
	runs, err := ListRuns(dir)
	if err != nil || len(runs) == 0 {
		return "", err
	}
	return runs[0].Path, nil
}
