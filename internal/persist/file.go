// Package persist is the local snapshot store: one JSON file holding
// the whole item array. It is the durability floor: every mutation is
// written through here synchronously before the caller gets control
// back. Remote mirroring happens later and best-effort.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/linkdeck/linkdeck/internal/domain"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/utils"
)

// DefaultFileName is the snapshot file name. Kept from the original
// storage record name so existing data is picked up in place.
const DefaultFileName = "quicklinks.json"

// File persists board snapshots to a single JSON file.
type File struct {
	path string
	log  logger.Logger
}

// NewFile creates a file adapter for the given path.
func NewFile(path string, log logger.Logger) *File {
	return &File{path: path, log: log}
}

// Path returns the snapshot file path.
func (f *File) Path() string { return f.path }

// Load reads the raw persisted payload. Absence and read failures are
// both recovered as an empty payload; the caller never sees an error
// from a load, only an empty board.
func (f *File) Load() []byte {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.log.Warn("failed to read board snapshot, starting empty",
				logger.String("path", f.path),
				logger.Error(err))
		}
		return nil
	}
	return data
}

// Save serializes items and writes them atomically: temp file in the
// same directory, then rename. A crash mid-write leaves the previous
// snapshot intact.
func (f *File) Save(items []*domain.Item) error {
	if items == nil {
		items = []*domain.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal board snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quicklinks-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		utils.Close(tmp)
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
