package store

import (
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/go-libsql"
)

func Migrate(db *sql.DB) error {
	schema := []string{
		// models: one row per cached pattern set
		`CREATE TABLE IF NOT EXISTS models (
			key        TEXT PRIMARY KEY,
			orders     INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS followers (
			model_key TEXT NOT NULL,
			order_k   INTEGER NOT NULL,
			suffix    TEXT NOT NULL,
			letter    TEXT NOT NULL,
			count     INTEGER NOT NULL,
			PRIMARY KEY (model_key, order_k, suffix, letter)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_followers_model ON followers(model_key, order_k);`,
		// meta: latest seen mtime of corpus and encoding files
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			model_key   TEXT NOT NULL,
			mode        TEXT NOT NULL,
			max_len     INTEGER NOT NULL,
			threads     INTEGER NOT NULL,
			found       INTEGER NOT NULL,
			visited     INTEGER NOT NULL,
			expanded    INTEGER NOT NULL,
			pruned      INTEGER NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration statement: %w", err)
		}
	}

	return nil
}
