package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// MetaStore remembers the modification time of source files so cached
// models are only rebuilt when their source changed.
type MetaStore struct {
	db *sql.DB
}

func NewMetaStore(db *sql.DB) *MetaStore {
	return &MetaStore{db: db}
}

func (m *MetaStore) TouchMeta(key string, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("stat error for %s: %w", filePath, err)
	}
	return m.UpdateMetadata(key, filePath, info.ModTime().Unix())
}

func (m *MetaStore) NeedsReload(key string, filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return true // a missing file is reported by the reload itself
	}

	storedMtime, err := m.GetLastProcessedMtime(key, filePath)
	if err != nil || storedMtime == 0 {
		return true
	}
	return info.ModTime().Unix() > storedMtime
}

// GetLastProcessedMtime returns 0 when nothing was recorded for key and path.
func (m *MetaStore) GetLastProcessedMtime(key, filePath string) (int64, error) {
	var mtime int64
	err := m.db.QueryRow("SELECT mtime FROM meta WHERE key = ? AND path = ?", key, filePath).Scan(&mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return mtime, err
}

func (m *MetaStore) UpdateMetadata(key, filePath string, mtime int64) error {
	_, err := m.db.Exec(`
        INSERT INTO meta (key, path, mtime)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            path = excluded.path,
            mtime = excluded.mtime`,
		key, filePath, mtime)
	if err != nil {
		return fmt.Errorf("failed to update meta: %w", err)
	}
	return nil
}
