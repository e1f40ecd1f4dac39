// Package store persists the claims journal: spreads the user has claimed,
// stored with their full spread data so a later session can rebuild the
// identical canonical record.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"spreadview/internal/domain"
)

// ClaimRecord is one journal entry. SpreadData is the JSON-encoded saved
// record; it is stored opaquely and decoded by the normalizer on read.
type ClaimRecord struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	SpreadData string    `json:"spreadData"`
	ClaimedAt  time.Time `json:"claimedAt"`
}

// ClaimStore is the SQLite-backed claims journal.
type ClaimStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS claims (
	id          TEXT PRIMARY KEY,
	symbol      TEXT NOT NULL,
	spread_data TEXT NOT NULL,
	claimed_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_claims_claimed_at ON claims(claimed_at);
`

// NewClaimStore opens (or creates) the claims database at dbPath, creating
// parent directories as needed.
func NewClaimStore(dbPath string) (*ClaimStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating claims db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening claims db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating claims schema: %w", err)
	}
	return &ClaimStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *ClaimStore) Close() error {
	return s.db.Close()
}

// SaveClaim inserts a new claim. A missing ID is generated and a zero
// ClaimedAt is set to now; both are written back to the record.
func (s *ClaimStore) SaveClaim(ctx context.Context, c *ClaimRecord) error {
	if c.ID == "" {
		c.ID = newClaimID()
	}
	if c.ClaimedAt.IsZero() {
		c.ClaimedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (id, symbol, spread_data, claimed_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Symbol, c.SpreadData, c.ClaimedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving claim %s: %w", c.ID, err)
	}
	return nil
}

// GetClaim retrieves one claim by id. A missing id is ErrNotFound.
func (s *ClaimStore) GetClaim(ctx context.Context, id string) (*ClaimRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, spread_data, claimed_at FROM claims WHERE id = ?`, id)

	c, err := scanClaim(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("claim %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading claim %s: %w", id, err)
	}
	return c, nil
}

// ListClaims returns all claims, newest first.
func (s *ClaimStore) ListClaims(ctx context.Context) ([]ClaimRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, spread_data, claimed_at FROM claims ORDER BY claimed_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []ClaimRecord
	for rows.Next() {
		c, err := scanClaim(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// DeleteClaim removes a claim. Deleting a missing id is ErrNotFound so the
// API can answer idempotently.
func (s *ClaimStore) DeleteClaim(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting claim %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting claim %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("claim %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanClaim(scan func(...any) error) (*ClaimRecord, error) {
	var c ClaimRecord
	var claimedAt string
	if err := scan(&c.ID, &c.Symbol, &c.SpreadData, &claimedAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, claimedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing claimed_at %q: %w", claimedAt, err)
	}
	c.ClaimedAt = ts
	return &c, nil
}

func newClaimID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp id rather than crash.
		return fmt.Sprintf("t%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
