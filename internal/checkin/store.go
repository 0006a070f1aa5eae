package checkin

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	dbx "github.com/kitout3/emargement-qr-app/internal/platform/db"
)

// スナップショットの保存枠は1つだけ。キーは旧Webアプリの localStorage キーを踏襲。
const SnapshotSlot = "emargement-events"

// BlobStore: スナップショットのバイト列を固定キー1枠で読み書きする外部ストア。
type BlobStore interface {
	// 返値の ok=false はスナップショット未作成を表す（エラーではない）
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}

// ===== file backend =====

type FileBlobStore struct{ path string }

func NewFileBlobStore(path string) *FileBlobStore { return &FileBlobStore{path: path} }

func (f *FileBlobStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save: tmpファイルに書いてから rename。途中で落ちても旧スナップショットが残る。
func (f *FileBlobStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// ===== mysql backend =====

type MySQLBlobStore struct{ db dbx.DBTX }

func NewMySQLBlobStore(db dbx.DBTX) *MySQLBlobStore { return &MySQLBlobStore{db: db} }

// EnsureSchema: 起動時に1度呼ぶ
func (m *MySQLBlobStore) EnsureSchema(ctx context.Context) error {
	const q = `
	CREATE TABLE IF NOT EXISTS event_snapshots (
		slot       VARCHAR(64) NOT NULL PRIMARY KEY,
		data       LONGBLOB    NOT NULL,
		updated_at TIMESTAMP   NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`
	_, err := m.db.ExecContext(ctx, q)
	return err
}

func (m *MySQLBlobStore) Load(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx,
		`SELECT data FROM event_snapshots WHERE slot = ?`, SnapshotSlot,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (m *MySQLBlobStore) Save(ctx context.Context, data []byte) error {
	const q = `
	INSERT INTO event_snapshots (slot, data)
	VALUES (?, ?)
	ON DUPLICATE KEY UPDATE data = VALUES(data)`
	_, err := m.db.ExecContext(ctx, q, SnapshotSlot, data)
	return err
}

// ===== snapshot store =====

// SnapshotStore: EventCollection 全体とblobの相互変換。差分保存はしない。
type SnapshotStore struct{ blob BlobStore }

func NewSnapshotStore(blob BlobStore) *SnapshotStore { return &SnapshotStore{blob: blob} }

// Load: スナップショットが無い・読めない・壊れている場合はすべて空で返す。
// 起動を致命的に止める失敗系は存在しない。
func (s *SnapshotStore) Load(ctx context.Context) ([]Event, error) {
	data, ok, err := s.blob.Load(ctx)
	if err != nil {
		log.Printf("[WARN] snapshot blob unreadable: %v", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		log.Printf("[WARN] snapshot corrupted, discarding: %v", err)
		return nil, nil
	}
	return events, nil
}

func (s *SnapshotStore) Save(ctx context.Context, events []Event) error {
	if events == nil {
		events = []Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	return s.blob.Save(ctx, data)
}
