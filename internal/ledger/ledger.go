// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps an optional SQLite history of publish runs: when each
// run happened, whether it succeeded and what it wrote per chapter.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/chapter-publisher/pkg/types"
)

// ErrDisabled is returned by Open when no ledger path is configured.
var ErrDisabled = errors.New("run ledger is disabled (set ledger.path)")

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Ledger manages the run history database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Run is one recorded publish run.
type Run struct {
	ID       int64          `json:"id"`
	Root     string         `json:"root"`
	Started  time.Time      `json:"started"`
	Finished time.Time      `json:"finished"`
	Status   string         `json:"status"`
	Error    string         `json:"error,omitempty"`
	Chapters []ChapterEntry `json:"chapters"`
}

// ChapterEntry is one chapter published during a run.
type ChapterEntry struct {
	Dir        string   `json:"dir"`
	Title      string   `json:"title"`
	Notebooks  []string `json:"notebooks"`
	Pages      []string `json:"pages"`
	ReadmePath string   `json:"readme_path,omitempty"`
}

// Open opens or creates the ledger database at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.LedgerConfig) (*Ledger, error) {
	if cfg.Path == "" {
		return nil, ErrDisabled
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", cfg.Path, err)
	}

	l := &Ledger{db: db, path: cfg.Path}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Path returns the database file backing the ledger.
func (l *Ledger) Path() string { return l.path }

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chapters (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			dir TEXT NOT NULL,
			title TEXT NOT NULL,
			notebooks TEXT,
			pages TEXT,
			readme_path TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its chapters. A non-nil runErr marks the run as
// failed; the chapters completed before the failure are still stored.
func (l *Ledger) Record(ctx context.Context, summary types.RunSummary, runErr error) (int64, error) {
	status, errText := StatusSucceeded, ""
	if runErr != nil {
		status, errText = StatusFailed, runErr.Error()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (root, started_at, finished_at, status, error) VALUES (?, ?, ?, ?, ?)`,
		summary.Root,
		summary.Started.UTC().Format(time.RFC3339Nano),
		summary.Finished.UTC().Format(time.RFC3339Nano),
		status, errText,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chapters (run_id, position, dir, title, notebooks, pages, readme_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, ch := range summary.Chapters {
		pages := make([]string, len(ch.Pages))
		for j, p := range ch.Pages {
			pages[j] = p.Name
		}
		notebooksJSON, _ := json.Marshal(ch.Notebooks)
		pagesJSON, _ := json.Marshal(pages)
		if _, err := stmt.ExecContext(ctx,
			runID, i, ch.Dir, ch.Title, string(notebooksJSON), string(pagesJSON), ch.ReadmePath,
		); err != nil {
			return 0, fmt.Errorf("inserting chapter %s: %w", ch.Dir, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs, newest first, with their chapters.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, root, started_at, finished_at, status, COALESCE(error, '')
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Root, &started, &finished, &r.Status, &r.Error); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		r.Finished, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		chapters, err := l.chapters(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Chapters = chapters
	}
	return runs, nil
}

func (l *Ledger) chapters(ctx context.Context, runID int64) ([]ChapterEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT dir, title, COALESCE(notebooks, '[]'), COALESCE(pages, '[]'), COALESCE(readme_path, '')
		 FROM chapters WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying chapters of run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []ChapterEntry
	for rows.Next() {
		var c ChapterEntry
		var notebooksJSON, pagesJSON string
		if err := rows.Scan(&c.Dir, &c.Title, &notebooksJSON, &pagesJSON, &c.ReadmePath); err != nil {
			return nil, fmt.Errorf("scanning chapter: %w", err)
		}
		_ = json.Unmarshal([]byte(notebooksJSON), &c.Notebooks)
		_ = json.Unmarshal([]byte(pagesJSON), &c.Pages)
		out = append(out, c)
	}
	return out, rows.Err()
}
