// Package snapshot persists analysis side artifacts as JSON files.
// Writing is policy-controlled by the caller; a nil *Writer disables it.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names written under the configured directory.
const (
	TimelineFile     = "timeline.json"
	FailedTasksFile  = "failed_tasks.json"
	TaskLogsFile     = "tasks_logs.json"
	TaskMetadataFile = "tasks_metadata.json"
)

// Writer writes JSON snapshots under one directory.
type Writer struct {
	dir string
}

// NewWriter creates a snapshot writer rooted at dir. The directory is
// created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the snapshot directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteJSON marshals v and writes it to name under the snapshot directory.
// Write failures are returned to the caller, never swallowed.
func (w *Writer) WriteJSON(name string, v interface{}) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
