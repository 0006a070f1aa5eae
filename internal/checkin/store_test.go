package checkin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileBlobStoreMissingFile(t *testing.T) {
	blob := NewFileBlobStore(filepath.Join(t.TempDir(), "events.json"))

	_, ok, err := blob.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing snapshot")
	}
}

func TestFileBlobStoreRoundTrip(t *testing.T) {
	// 保存先ディレクトリは無ければ作られる
	path := filepath.Join(t.TempDir(), "data", "events.json")
	blob := NewFileBlobStore(path)

	if err := blob.Save(context.Background(), []byte(`[{"id":"EV1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, ok, err := blob.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(data) != `[{"id":"EV1"}]` {
		t.Fatalf("unexpected blob: %s", data)
	}
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store := NewSnapshotStore(NewFileBlobStore(filepath.Join(t.TempDir(), "events.json")))

	checkedIn := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	in := []Event{{
		ID:   "EV1",
		Name: "Formation Azure 2025",
		Date: "2025-06-01",
		Participants: []Participant{
			{ID: "101", Name: "Ada Lovelace", Email: "ada@x.com", Present: true, CheckedInAt: &checkedIn},
			{ID: "102", Name: "Grace Hopper"},
		},
		CreatedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC),
	}}

	if err := store.Save(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || len(out[0].Participants) != 2 {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
	p := out[0].Participants[0]
	if !p.Present || p.CheckedInAt == nil || !p.CheckedInAt.Equal(checkedIn) {
		t.Fatalf("check-in state lost in round trip: %+v", p)
	}
	if out[0].Participants[1].CheckedInAt != nil {
		t.Fatalf("absent participant gained a timestamp: %+v", out[0].Participants[1])
	}
}

func TestSnapshotStoreCorruptedBlobDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewSnapshotStore(NewFileBlobStore(path))

	out, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load must not fail on corruption: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty collection, got %+v", out)
	}
}

func TestSnapshotStoreSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	store := NewSnapshotStore(NewFileBlobStore(path))

	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [] for nil collection, got %s", data)
	}
}
