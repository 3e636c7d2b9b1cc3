package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trknhr/ghostguess/internal/search"
)

// Run is one recorded search. The password itself is never stored.
type Run struct {
	ID         string
	ModelKey   string
	Mode       search.Mode
	MaxLen     int
	Threads    int
	Found      bool
	Visited    uint64
	Expanded   uint64
	Pruned     uint64
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRun describes a finished search with a fresh ID.
func NewRun(modelKey string, opts search.Options, res search.Result, started, finished time.Time) Run {
	return Run{
		ID:         uuid.NewString(),
		ModelKey:   modelKey,
		Mode:       res.Mode,
		MaxLen:     opts.MaxLen,
		Threads:    opts.Threads,
		Found:      res.Found,
		Visited:    res.Visited,
		Expanded:   res.Expanded,
		Pruned:     res.Pruned,
		StartedAt:  started,
		FinishedAt: finished,
	}
}

func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type RunStore interface {
	RecordRun(run Run) error
	RecentRuns(limit int) ([]Run, error)
}

type SQLRunStore struct {
	db *sql.DB
}

func NewSQLRunStore(db *sql.DB) RunStore {
	return &SQLRunStore{db: db}
}

func (s *SQLRunStore) RecordRun(run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	found := 0
	if run.Found {
		found = 1
	}
	_, err := s.db.Exec(`
        INSERT INTO runs (id, model_key, mode, max_len, threads, found, visited, expanded, pruned, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelKey, string(run.Mode), run.MaxLen, run.Threads, found,
		int64(run.Visited), int64(run.Expanded), int64(run.Pruned),
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *SQLRunStore) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
        SELECT id, model_key, mode, max_len, threads, found, visited, expanded, pruned, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC, id
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                       Run
			mode                      string
			found                     int64
			visited, expanded, pruned int64
			startedAt, finishedAt     int64
		)
		if err := rows.Scan(&run.ID, &run.ModelKey, &mode, &run.MaxLen, &run.Threads, &found,
			&visited, &expanded, &pruned, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		run.Mode = search.Mode(mode)
		run.Found = found != 0
		run.Visited = uint64(visited)
		run.Expanded = uint64(expanded)
		run.Pruned = uint64(pruned)
		run.StartedAt = time.UnixMilli(startedAt)
		run.FinishedAt = time.UnixMilli(finishedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
