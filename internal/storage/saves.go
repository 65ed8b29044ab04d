package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// DefaultSlot is the save slot used by the local game.
const DefaultSlot = "local"

// SaveSnapshot writes snap into slot, replacing any previous save.
func (s *Store) SaveSnapshot(ctx context.Context, slot string, snap memory.Snapshot) error {
	payload, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		slot, payload,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game: %w", err)
	}
	return nil
}

// LoadSnapshot reads the save in slot. It reports false when the slot is
// empty.
func (s *Store) LoadSnapshot(ctx context.Context, slot string) (memory.Snapshot, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM saves WHERE slot = ?", slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return memory.Snapshot{}, false, nil
	}
	if err != nil {
		return memory.Snapshot{}, false, fmt.Errorf("storage: cannot load game: %w", err)
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		return memory.Snapshot{}, false, err
	}
	return snap, true, nil
}

// HasSnapshot reports whether slot holds a save.
func (s *Store) HasSnapshot(ctx context.Context, slot string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saves WHERE slot = ?", slot).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("storage: cannot query saves: %w", err)
	}
	return n > 0, nil
}

// ClearSnapshot deletes the save in slot.
func (s *Store) ClearSnapshot(ctx context.Context, slot string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM saves WHERE slot = ?", slot)
	if err != nil {
		return fmt.Errorf("storage: cannot clear save: %w", err)
	}
	return nil
}

// Slot adapts one save slot of the store to memory.Store. Read and clear
// failures are logged and reported as "no save".
type Slot struct {
	store  *Store
	name   string
	logger *log.Logger
}

// NewSlot binds a named slot. A nil logger discards.
func NewSlot(store *Store, name string, logger *log.Logger) *Slot {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Slot{store: store, name: name, logger: logger}
}

// Has implements memory.Store.
func (s *Slot) Has(ctx context.Context) bool {
	ok, err := s.store.HasSnapshot(ctx, s.name)
	if err != nil {
		s.logger.Warn("failed to check save", "slot", s.name, "error", err)
		return false
	}
	return ok
}

// Load implements memory.Store.
func (s *Slot) Load(ctx context.Context) (memory.Snapshot, bool) {
	snap, ok, err := s.store.LoadSnapshot(ctx, s.name)
	if err != nil {
		s.logger.Warn("failed to load save", "slot", s.name, "error", err)
		return memory.Snapshot{}, false
	}
	return snap, ok
}

// Save implements memory.Store.
func (s *Slot) Save(ctx context.Context, snap memory.Snapshot) error {
	return s.store.SaveSnapshot(ctx, s.name, snap)
}

// Clear implements memory.Store.
func (s *Slot) Clear(ctx context.Context) {
	if err := s.store.ClearSnapshot(ctx, s.name); err != nil {
		s.logger.Warn("failed to clear save", "slot", s.name, "error", err)
	}
}

// Ensure Slot implements memory.Store
var _ memory.Store = (*Slot)(nil)
