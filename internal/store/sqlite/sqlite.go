package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/guildgate/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	stable_id    TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	account_id   TEXT NOT NULL,
	battletag    TEXT NOT NULL,
	access_token TEXT NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);`

// SQLiteStore implements store.ProfileStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveProfile inserts or replaces the profile for its stable identity.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *store.Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (stable_id, session_id, account_id, battletag, access_token, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(stable_id) DO UPDATE SET
			session_id = excluded.session_id,
			account_id = excluded.account_id,
			battletag = excluded.battletag,
			access_token = excluded.access_token,
			updated_at = excluded.updated_at`,
		p.StableID, p.SessionID, p.AccountID, p.Battletag, p.AccessToken, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile retrieves the profile stored for a stable identity.
func (s *SQLiteStore) GetProfile(ctx context.Context, stableID string) (*store.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT stable_id, session_id, account_id, battletag, access_token, updated_at
		FROM profiles WHERE stable_id = ?`, stableID)

	var p store.Profile
	err := row.Scan(&p.StableID, &p.SessionID, &p.AccountID, &p.Battletag, &p.AccessToken, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// DeleteProfile removes the profile for a stable identity.
func (s *SQLiteStore) DeleteProfile(ctx context.Context, stableID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE stable_id = ?`, stableID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
