package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// 三份独立持久化的记录名。
const (
	RecordSettings  = "settings"
	RecordHistory   = "history"
	RecordKnowledge = "knowledge"
)

// RecordStore persists named records as JSON files, one file per record.
// Each record is read once at startup and rewritten in full on every change.
type RecordStore struct {
	dir string
}

// NewRecordStore 创建记录仓库并确保目录存在。
func NewRecordStore(dir string) (*RecordStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &RecordStore{dir: dir}, nil
}

// Load reads a record into v. Returns false when the record is absent or
// unparsable; the caller falls back to defaults for that record only.
func (s *RecordStore) Load(name string, v any) bool {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[session] read record %s: %v", name, err)
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[session] record %s is malformed, using defaults: %v", name, err)
		return false
	}
	return true
}

// Save rewrites a record in full.
func (s *RecordStore) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", name, err)
	}

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return fmt.Errorf("commit record %s: %w", name, err)
	}
	return nil
}

// Delete removes a persisted record; deleting a missing record is a no-op.
func (s *RecordStore) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete record %s: %w", name, err)
	}
	return nil
}

func (s *RecordStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
