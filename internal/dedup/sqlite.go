package dedup

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const createDedupTable = `
CREATE TABLE IF NOT EXISTS dedup_entries (
    event_id      TEXT PRIMARY KEY,
    first_seen_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dedup_first_seen ON dedup_entries(first_seen_at);
`

// SQLiteStore is a Store backed by a local sqlite database, for deployments
// that want dedup history to survive a process restart. Timestamps are stored
// as unix nanoseconds.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at path and prepares the
// dedup table.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	// WAL mode for concurrent deliveries
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open dedup database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping dedup database: %w", err)
	}
	if _, err := db.Exec(createDedupTable); err != nil {
		return nil, fmt.Errorf("failed to create dedup table: %w", err)
	}

	logger.Info("Dedup database opened", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// CheckAndSet implements Store. Reaping and the conditional insert run in one
// transaction so the check and the record are atomic across connections.
func (s *SQLiteStore) CheckAndSet(key string, now time.Time, ttl time.Duration) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin dedup transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// An entry is expired once its age reaches the ttl, so a key first
	// seen at T is new again at exactly T+ttl.
	cutoff := now.Add(-ttl).UnixNano()
	if _, err := tx.Exec(`DELETE FROM dedup_entries WHERE first_seen_at <= ?`, cutoff); err != nil {
		return false, fmt.Errorf("failed to reap expired dedup entries: %w", err)
	}

	res, err := tx.Exec(
		`INSERT INTO dedup_entries(event_id, first_seen_at) VALUES(?, ?)
		 ON CONFLICT(event_id) DO NOTHING`,
		key, now.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record dedup entry: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read dedup insert result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit dedup transaction: %w", err)
	}

	return inserted == 0, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
