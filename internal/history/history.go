// Package history keeps a local SQLite log of finished and aborted runs.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/wordtale/internal/story"
)

// Entry is one recorded run
type Entry struct {
	RunID     string
	CreatedAt time.Time
	Words     []string
	StoryHTML string
	Images    []string // Gallery captions: image paths or failure messages
	Failure   string   // Set when the run aborted
}

// EntryFromResult builds an entry for a completed run
func EntryFromResult(result *story.Result) Entry {
	return Entry{
		RunID:     result.RunID,
		CreatedAt: time.Now(),
		Words:     result.Words,
		StoryHTML: result.HTML,
		Images:    result.Captions(),
	}
}

// EntryFromFailure builds an entry for an aborted run
func EntryFromFailure(runID string, words []string, err error) Entry {
	return Entry{
		RunID:     runID,
		CreatedAt: time.Now(),
		Words:     words,
		Failure:   err.Error(),
	}
}

// Store is a run history backed by SQLite
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.wordtale/history.db
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wordtale-history.db"
	}
	return filepath.Join(home, ".wordtale", "history.db")
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id text PRIMARY KEY,
		created_at integer NOT NULL,
		words text NOT NULL,
		story_html text NOT NULL,
		images text NOT NULL,
		failure text NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record stores an entry, replacing any entry with the same run ID
func (s *Store) Record(ctx context.Context, e Entry) error {
	images, err := json.Marshal(e.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, created_at, words, story_html, images, failure)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.CreatedAt.UnixNano(), strings.Join(e.Words, " "), e.StoryHTML, string(images), e.Failure)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", e.RunID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, words, story_html, images, failure
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
			words   string
			images  string
		)
		if err := rows.Scan(&e.RunID, &created, &words, &e.StoryHTML, &images, &e.Failure); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(0, created)
		e.Words = strings.Fields(words)
		if err := json.Unmarshal([]byte(images), &e.Images); err != nil {
			return nil, fmt.Errorf("corrupt image list for run %s: %w", e.RunID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
