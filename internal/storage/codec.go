package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

// encodeSnapshot serializes a snapshot as zstd-compressed JSON.
func encodeSnapshot(snap memory.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to marshal snapshot: %w", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create zstd writer: %w", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		compWriter.Close()
		return nil, fmt.Errorf("storage: failed to compress snapshot: %w", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("storage: failed to close zstd writer: %w", err)
	}

	return compressed.Bytes(), nil
}

// decodeSnapshot reverses encodeSnapshot.
func decodeSnapshot(data []byte) (memory.Snapshot, error) {
	var snap memory.Snapshot

	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return snap, fmt.Errorf("storage: failed to create zstd reader: %w", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return snap, fmt.Errorf("storage: failed to decompress snapshot: %w", err)
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("storage: failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}
