package store

//go:generate mockgen -source=model.go -destination=mock_model.go -package=store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/trknhr/ghostguess/internal/logger"
	"github.com/trknhr/ghostguess/internal/pattern"
)

var ErrModelNotFound = errors.New("model not found")

type ModelStore interface {
	SaveModel(key string, set *pattern.Set) error
	LoadModel(key string, cfg pattern.Config) (*pattern.Set, error)
	HasModel(key string) (bool, error)
	GetLastProcessedMtime(key, path string) (int64, error)
	UpdateMetadata(key, path string, mtime int64) error
}

// ModelKey names a cached model by its source, its order count and whether
// singletons were dropped, the settings that change the stored counts.
func ModelKey(src pattern.Source, orders int, cfg pattern.Config) string {
	key := fmt.Sprintf("%s#%d", src, orders)
	if cfg.DropSingletons {
		key += "#nosingletons"
	}
	return key
}

type SQLModelStore struct {
	db *sql.DB
	*MetaStore
}

func NewSQLModelStore(db *sql.DB) ModelStore {
	return &SQLModelStore{db: db, MetaStore: NewMetaStore(db)}
}

// SaveModel replaces the model stored under key.
func (s *SQLModelStore) SaveModel(key string, set *pattern.Set) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM followers WHERE model_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear model %s: %w", key, err)
	}
	if _, err := tx.Exec(`
        INSERT INTO models (key, orders, created_at)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            orders = excluded.orders,
            created_at = excluded.created_at`,
		key, set.Orders(), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save model %s: %w", key, err)
	}

	stmt, err := tx.Prepare(`
        INSERT INTO followers (model_key, order_k, suffix, letter, count)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows := 0
	for _, tree := range set.Trees() {
		for _, suffix := range tree.Suffixes() {
			for _, f := range tree.Followers(suffix) {
				if _, err := stmt.Exec(key, tree.Order(), suffix, string(f.Letter), f.Count); err != nil {
					return fmt.Errorf("failed to insert follower %q%q: %w", suffix, f.Letter, err)
				}
				rows++
			}
		}
	}
	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit model tx: %v", err)
		return err
	}
	logger.Debug("saved model %s (%d followers)", key, rows)
	return nil
}

// LoadModel rebuilds the set stored under key. It returns ErrModelNotFound
// if there is none.
func (s *SQLModelStore) LoadModel(key string, cfg pattern.Config) (*pattern.Set, error) {
	var orders int
	err := s.db.QueryRow(`SELECT orders FROM models WHERE key = ?`, key).Scan(&orders)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, key)
	}
	if err != nil {
		return nil, err
	}

	set, err := pattern.NewSet(orders, cfg)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
        SELECT order_k, suffix, letter, count FROM followers
        WHERE model_key = ?
        ORDER BY order_k, suffix, letter`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			order  int
			suffix string
			letter string
			count  int64
		)
		if err := rows.Scan(&order, &suffix, &letter, &count); err != nil {
			return nil, err
		}
		r, size := utf8.DecodeRuneInString(letter)
		if size != len(letter) || r == utf8.RuneError {
			logger.Warn("model %s: skipping bad letter %q", key, letter)
			continue
		}
		if err := set.InsertCount(order, suffix, r, uint32(count)); err != nil {
			logger.Warn("model %s: %v", key, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	set.Finalize()
	return set, nil
}

func (s *SQLModelStore) HasModel(key string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM models WHERE key = ?`, key).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
