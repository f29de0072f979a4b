// Package history persists the last successful usage result per
// account so the dashboard can paint stale-but-real numbers at startup
// instead of blank rows while the first refresh runs.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/usagetop/usagetop/internal/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	account_id TEXT PRIMARY KEY,
	updated_at TEXT NOT NULL,
	payload    TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Cached is one persisted result together with when it was captured.
type Cached struct {
	Result    core.UsageResult
	UpdatedAt time.Time
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(accountID string, res core.UsageResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encoding result for %s: %w", accountID, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO results (account_id, updated_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET updated_at = excluded.updated_at, payload = excluded.payload`,
		accountID, time.Now().UTC().Format(time.RFC3339), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving result for %s: %w", accountID, err)
	}
	return nil
}

func (s *Store) Load(accountID string) (Cached, bool, error) {
	var updatedAt, payload string
	err := s.db.QueryRow(
		`SELECT updated_at, payload FROM results WHERE account_id = ?`, accountID,
	).Scan(&updatedAt, &payload)
	if err == sql.ErrNoRows {
		return Cached{}, false, nil
	}
	if err != nil {
		return Cached{}, false, fmt.Errorf("loading result for %s: %w", accountID, err)
	}

	var cached Cached
	if err := json.Unmarshal([]byte(payload), &cached.Result); err != nil {
		// A corrupt row is treated as a miss; the next save overwrites it.
		return Cached{}, false, nil
	}
	cached.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return cached, true, nil
}

// LoadAll returns every cached result keyed by account ID.
func (s *Store) LoadAll() (map[string]Cached, error) {
	rows, err := s.db.Query(`SELECT account_id, updated_at, payload FROM results`)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Cached)
	for rows.Next() {
		var id, updatedAt, payload string
		if err := rows.Scan(&id, &updatedAt, &payload); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		var cached Cached
		if err := json.Unmarshal([]byte(payload), &cached.Result); err != nil {
			continue
		}
		cached.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out[id] = cached
	}
	return out, rows.Err()
}

// Delete removes the cached result for accounts that no longer exist
// in the config.
func (s *Store) Delete(accountID string) error {
	_, err := s.db.Exec(`DELETE FROM results WHERE account_id = ?`, accountID)
	if err != nil {
		return fmt.Errorf("deleting result for %s: %w", accountID, err)
	}
	return nil
}
