package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/renameio/v2"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// saveFileMode leaves the save readable by other tools.
const saveFileMode = 0o644

// FileSlot keeps one save as a plain JSON file, for players who want a
// save they can read or copy by hand.
type FileSlot struct {
	path   string
	logger *log.Logger
}

// NewFileSlot stores the save at path (~ is expanded).
func NewFileSlot(path string, logger *log.Logger) (*FileSlot, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileSlot{path: path, logger: logger}, nil
}

// Has implements memory.Store.
func (f *FileSlot) Has(context.Context) bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load implements memory.Store. A missing or unreadable file is "no save".
func (f *FileSlot) Load(context.Context) (memory.Snapshot, bool) {
	var snap memory.Snapshot
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.logger.Warn("failed to read save", "path", f.path, "error", err)
		}
		return snap, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		f.logger.Warn("corrupt save file", "path", f.path, "error", err)
		return snap, false
	}
	return snap, true
}

// Save implements memory.Store. The file is replaced atomically and synced
// before it becomes visible.
func (f *FileSlot) Save(_ context.Context, snap memory.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	if err := renameio.WriteFile(f.path, data, saveFileMode); err != nil {
		return fmt.Errorf("storage: cannot write save: %w", err)
	}
	return nil
}

// Clear implements memory.Store.
func (f *FileSlot) Clear(context.Context) {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("failed to clear save", "path", f.path, "error", err)
	}
}

// Ensure FileSlot implements memory.Store
var _ memory.Store = (*FileSlot)(nil)
