package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vovakirdan/tui-memory/internal/games/memory"
)

func sampleSnapshot() memory.Snapshot {
	return memory.Snapshot{
		Score: 150, Combo: 1, MaxCombo: 2, Matches: 1, MovesLeft: 6,
		Rows: 2, Columns: 2,
		Cards: []memory.CardSnapshot{
			{ID: 0, PairID: 0, FaceRef: 3, Matched: true},
			{ID: 1, PairID: 1, FaceRef: 7},
			{ID: 2, PairID: 0, FaceRef: 3, Matched: true},
			{ID: 3, PairID: 1, FaceRef: 7},
		},
		Timestamp: 1700000000,
	}
}

func TestSnapshotSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if ok, err := store.HasSnapshot(ctx, "p1"); err != nil || ok {
		t.Fatalf("HasSnapshot() on empty store = %v, %v", ok, err)
	}
	if _, ok, err := store.LoadSnapshot(ctx, "p1"); err != nil || ok {
		t.Fatalf("LoadSnapshot() on empty store = %v, %v", ok, err)
	}

	want := sampleSnapshot()
	if err := store.SaveSnapshot(ctx, "p1", want); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	got, ok, err := store.LoadSnapshot(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot() = %v, %v", ok, err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("Snapshot mismatch:\nwant %+v\ngot  %+v", want, got)
	}

	// Overwrite keeps one row per slot
	want.MovesLeft = 2
	if err := store.SaveSnapshot(ctx, "p1", want); err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	got, _, _ = store.LoadSnapshot(ctx, "p1")
	if got.MovesLeft != 2 {
		t.Errorf("Expected overwritten save, got MovesLeft %d", got.MovesLeft)
	}

	// Slots are independent
	if ok, _ := store.HasSnapshot(ctx, "p2"); ok {
		t.Error("Unexpected save in another slot")
	}

	if err := store.ClearSnapshot(ctx, "p1"); err != nil {
		t.Fatalf("ClearSnapshot() failed: %v", err)
	}
	if ok, _ := store.HasSnapshot(ctx, "p1"); ok {
		t.Error("Save still present after clear")
	}
}

func TestCorruptPayloadIsNoSave(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.db.Exec("INSERT INTO saves (slot, payload) VALUES (?, ?)", DefaultSlot, []byte("not zstd"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if _, _, err := store.LoadSnapshot(ctx, DefaultSlot); err == nil {
		t.Error("Expected decode error for corrupt payload")
	}

	slot := NewSlot(store, DefaultSlot, nil)
	if !slot.Has(ctx) {
		t.Error("Has() should report the stored row")
	}
	if _, ok := slot.Load(ctx); ok {
		t.Error("Load() should treat a corrupt payload as no save")
	}
}

func TestSlotImplementsStore(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot(openTestStore(t), "alice", nil)

	if slot.Has(ctx) {
		t.Fatal("fresh slot reports a save")
	}
	if err := slot.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	snap, ok := slot.Load(ctx)
	if !ok || snap.Score != 150 {
		t.Fatalf("Load() = %+v, %v", snap, ok)
	}
	slot.Clear(ctx)
	if slot.Has(ctx) {
		t.Error("Clear() left the save behind")
	}
}

func TestEncodedSnapshotIsCompressed(t *testing.T) {
	snap := sampleSnapshot()
	for i := range 60 {
		snap.Cards = append(snap.Cards, memory.CardSnapshot{ID: i + 4, PairID: i/2 + 2, FaceRef: 1})
	}

	payload, err := encodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encodeSnapshot() failed: %v", err)
	}
	// zstd frame magic
	if len(payload) < 4 || payload[0] != 0x28 || payload[1] != 0xb5 || payload[2] != 0x2f || payload[3] != 0xfd {
		t.Errorf("payload is not a zstd frame: % x", payload[:min(4, len(payload))])
	}

	got, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decodeSnapshot() failed: %v", err)
	}
	if len(got.Cards) != len(snap.Cards) {
		t.Errorf("Expected %d cards, got %d", len(snap.Cards), len(got.Cards))
	}
}

func TestFileSlot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves", "memory.json")

	slot, err := NewFileSlot(path, nil)
	if err != nil {
		t.Fatalf("NewFileSlot() failed: %v", err)
	}
	if slot.Has(ctx) {
		t.Fatal("fresh file slot reports a save")
	}
	if _, ok := slot.Load(ctx); ok {
		t.Fatal("Load() on missing file reported a save")
	}

	want := sampleSnapshot()
	if err := slot.Save(ctx, want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, ok := slot.Load(ctx)
	if !ok || !reflect.DeepEqual(want, got) {
		t.Errorf("Load() = %+v, %v", got, ok)
	}

	slot.Clear(ctx)
	if slot.Has(ctx) {
		t.Error("Clear() left the file behind")
	}
	slot.Clear(ctx) // clearing twice is fine
}

func TestFileSlotReplacesSaveInPlace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "memory.json")

	slot, err := NewFileSlot(path, nil)
	if err != nil {
		t.Fatalf("NewFileSlot() failed: %v", err)
	}

	first := sampleSnapshot()
	second := sampleSnapshot()
	second.Score = first.Score + 50
	for _, snap := range []memory.Snapshot{first, second} {
		if err := slot.Save(ctx, snap); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	got, ok := slot.Load(ctx)
	if !ok || got.Score != second.Score {
		t.Errorf("Load() = score %d, %v; want %d", got.Score, ok, second.Score)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "memory.json" {
		t.Errorf("directory holds %v, want only memory.json", entries)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o600 != 0o600 || perm&0o111 != 0 {
		t.Errorf("save file mode = %v, want rw for the owner and not executable", perm)
	}
}
