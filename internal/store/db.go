package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Open opens the libsql database at path, creating its directory, and
// migrates it. path is a filesystem path, :memory:, or a URL the driver
// understands.
func Open(path string) (*sql.DB, error) {
	dsn, file := dataSource(path)
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Keeps a :memory: database on one connection.
	db.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// dataSource turns path into a libsql DSN. file is the local file behind
// it, empty for :memory: and remote databases.
func dataSource(path string) (dsn, file string) {
	switch {
	case path == ":memory:":
		return path, ""
	case strings.HasPrefix(path, "file:"):
		file = strings.TrimPrefix(path, "file:")
		if i := strings.IndexByte(file, '?'); i >= 0 {
			file = file[:i]
		}
		return path, file
	case strings.Contains(path, "://"):
		return path, ""
	default:
		return "file:" + path, path
	}
}
