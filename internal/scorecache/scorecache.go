package scorecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reelpick/internal/quality"
	"reelpick/internal/score"
)

// Record is one cached scoring result keyed by file path.
type Record struct {
	Path        string
	Fingerprint string
	Score       float64
	Analysis    *score.Analysis
	Quality     *quality.Metrics
	ProcessedAt time.Time
}

// Store persists score records in SQLite. A nil db marks a read-only store
// whose backing file does not exist; every lookup on it reports absent.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open initializes or connects to the cache database, creating the backing
// file and parent directory when needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure cache directory: %w", err)
		}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS media_scores (
            file_path         TEXT PRIMARY KEY,
            fingerprint       TEXT NOT NULL,
            score             REAL NOT NULL,
            analysis_json     TEXT,
            quality_json      TEXT,
            last_processed_at TEXT NOT NULL
        )`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenReadOnly connects to an existing cache without ever creating the
// backing store. When the file does not exist the returned store answers
// absent for every key, which is what the execution planner needs.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Store{path: path, readOnly: true}, nil
		}
		return nil, fmt.Errorf("stat cache %s: %w", path, err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path, readOnly: true}, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the cache.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get returns the cached record for path, but only when the stored
// fingerprint matches the supplied one: a content change invalidates the
// entry transparently. Unreadable stored payloads are treated as a miss, not
// an error.
func (s *Store) Get(ctx context.Context, path, fp string) (*Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `
        SELECT file_path, fingerprint, score, analysis_json, quality_json, last_processed_at
        FROM media_scores WHERE file_path = ?`, path)

	var rec Record
	var analysisJSON, qualityJSON sql.NullString
	var processedAt string
	err := row.Scan(&rec.Path, &rec.Fingerprint, &rec.Score, &analysisJSON, &qualityJSON, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache record: %w", err)
	}

	if rec.Fingerprint != fp {
		return nil, nil
	}

	// Corrupted payloads degrade to a cache miss so the item is rescored.
	if analysisJSON.Valid && analysisJSON.String != "" {
		var analysis score.Analysis
		if json.Unmarshal([]byte(analysisJSON.String), &analysis) != nil {
			return nil, nil
		}
		rec.Analysis = &analysis
	}
	if qualityJSON.Valid && qualityJSON.String != "" {
		var metrics quality.Metrics
		if json.Unmarshal([]byte(qualityJSON.String), &metrics) != nil {
			return nil, nil
		}
		rec.Quality = &metrics
	}
	if parsed, err := time.Parse(time.RFC3339, processedAt); err == nil {
		rec.ProcessedAt = parsed
	}

	return &rec, nil
}

// Upsert stores a record, replacing all fields for the path atomically.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	if s == nil || s.db == nil {
		return errors.New("score cache is not writable")
	}
	if s.readOnly {
		return errors.New("score cache opened read-only")
	}

	analysisJSON, err := marshalNullable(rec.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	qualityJSON, err := marshalNullable(rec.Quality)
	if err != nil {
		return fmt.Errorf("marshal quality: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO media_scores (
            file_path, fingerprint, score, analysis_json, quality_json, last_processed_at
        ) VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(file_path) DO UPDATE SET
            fingerprint = excluded.fingerprint,
            score = excluded.score,
            analysis_json = excluded.analysis_json,
            quality_json = excluded.quality_json,
            last_processed_at = excluded.last_processed_at`,
		rec.Path,
		rec.Fingerprint,
		rec.Score,
		analysisJSON,
		qualityJSON,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert cache record: %w", err)
	}
	return nil
}

func marshalNullable(value any) (any, error) {
	switch v := value.(type) {
	case *score.Analysis:
		if v == nil {
			return nil, nil
		}
	case *quality.Metrics:
		if v == nil {
			return nil, nil
		}
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}
