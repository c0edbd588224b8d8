package enrich

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/empleomatch/empleomatch/internal/occ"
)

// Store persists cache entries in SQLite so enriched jobs survive restarts.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the SQLite cache database at path. An empty
// path defaults to ~/.empleomatch/jobcache.db.
func OpenStore(path string) (*Store, error) {
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".empleomatch")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("enrich store: mkdir %s: %w", dir, err)
		}
		path = filepath.Join(dir, "jobcache.db")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("enrich store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enrich store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS job_cache (
		job_id           TEXT PRIMARY KEY,
		payload          TEXT NOT NULL,
		skills           TEXT,
		benefits         TEXT,
		enrichment_state TEXT NOT NULL,
		attempts         INTEGER NOT NULL DEFAULT 0,
		last_error       TEXT,
		inserted_at      TEXT NOT NULL,
		ttl_expires_at   TEXT NOT NULL,
		next_retry_at    TEXT
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_job_cache_expiry ON job_cache(ttl_expires_at)`)
	return err
}

// Save upserts one entry. List-valued fields are stored as JSON strings in
// their own columns so they stay queryable.
func (s *Store) Save(ctx context.Context, entry *Entry) error {
	payload, err := json.Marshal(entry.Job)
	if err != nil {
		return fmt.Errorf("enrich store: marshal %s: %w", entry.JobID, err)
	}
	skills, _ := json.Marshal(entry.Job.Skills)
	benefits, _ := json.Marshal(entry.Job.Benefits)

	var nextRetry string
	if !entry.NextRetryAt.IsZero() {
		nextRetry = entry.NextRetryAt.UTC().Format(time.RFC3339)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO job_cache
		(job_id, payload, skills, benefits, enrichment_state, attempts, last_error, inserted_at, ttl_expires_at, next_retry_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			payload = excluded.payload,
			skills = excluded.skills,
			benefits = excluded.benefits,
			enrichment_state = excluded.enrichment_state,
			attempts = excluded.attempts,
			last_error = excluded.last_error,
			ttl_expires_at = excluded.ttl_expires_at,
			next_retry_at = excluded.next_retry_at`,
		entry.JobID, string(payload), string(skills), string(benefits),
		string(entry.State), entry.Attempts, entry.LastError,
		entry.InsertedAt.UTC().Format(time.RFC3339),
		entry.TTLExpiresAt.UTC().Format(time.RFC3339),
		nextRetry)
	if err != nil {
		return fmt.Errorf("enrich store: save %s: %w", entry.JobID, err)
	}
	return nil
}

// Load returns one persisted entry, expired or not.
func (s *Store) Load(ctx context.Context, jobID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT job_id, payload, enrichment_state, attempts,
		COALESCE(last_error, ''), inserted_at, ttl_expires_at, COALESCE(next_retry_at, '')
		FROM job_cache WHERE job_id = ?`, jobID)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return entry, err
}

// LoadFresh returns every entry whose TTL has not expired, for warm starts.
func (s *Store) LoadFresh(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id, payload, enrichment_state, attempts,
		COALESCE(last_error, ''), inserted_at, ttl_expires_at, COALESCE(next_retry_at, '')
		FROM job_cache WHERE ttl_expires_at > ?`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("enrich store: load fresh: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// PurgeExpired deletes entries past their TTL and reports how many.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_cache WHERE ttl_expires_at <= ?`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("enrich store: purge: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes one entry.
func (s *Store) Delete(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM job_cache WHERE job_id = ?`, jobID)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry                          Entry
		payload                        string
		insertedAt, expiresAt, retryAt string
	)
	if err := row.Scan(&entry.JobID, &payload, (*string)(&entry.State), &entry.Attempts,
		&entry.LastError, &insertedAt, &expiresAt, &retryAt); err != nil {
		return nil, err
	}
	var job occ.JobOffer
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, fmt.Errorf("enrich store: decode %s: %w", entry.JobID, err)
	}
	entry.Job = job
	entry.InsertedAt, _ = time.Parse(time.RFC3339, insertedAt)
	entry.TTLExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	if retryAt != "" {
		entry.NextRetryAt, _ = time.Parse(time.RFC3339, retryAt)
	}
	return &entry, nil
}
