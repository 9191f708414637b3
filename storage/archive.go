// Package storage keeps fetched records in a local sqlite archive and a shared redis cache.
package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kennygrant/codash/series"

	_ "modernc.org/sqlite"
)

// ErrEmpty is returned by Latest when nothing has been archived
var ErrEmpty = errors.New("storage: archive is empty")

// Archive stores each fetched payload so that the server can start without the network
type Archive struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenArchive opens or creates the sqlite archive at path
func OpenArchive(path string) (*Archive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage: failed to create directory:%s error:%w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open archive:%s error:%w", path, err)
	}
	// sqlite allows one writer
	db.SetMaxOpenConns(1)

	a := &Archive{db: db, path: path, now: time.Now}
	if err := a.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS payloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fetched_at INTEGER NOT NULL,
		record_count INTEGER NOT NULL,
		records TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_payloads_fetched ON payloads(fetched_at);
	`
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("storage: failed to create schema:%w", err)
	}
	return nil
}

// Path returns the archive file path
func (a *Archive) Path() string {
	return a.path
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores records as the latest payload
func (a *Archive) Save(ctx context.Context, records []series.Record) error {
	var buf bytes.Buffer
	if err := series.EncodeRecords(&buf, records); err != nil {
		return fmt.Errorf("storage: encode records:%w", err)
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO payloads (fetched_at, record_count, records) VALUES (?, ?, ?)`,
		a.now().UTC().UnixNano(), len(records), buf.String())
	if err != nil {
		return fmt.Errorf("storage: save payload:%w", err)
	}
	return nil
}

// Latest returns the most recently saved records and the time they were saved
func (a *Archive) Latest(ctx context.Context) ([]series.Record, time.Time, error) {
	var fetchedAt int64
	var payload string

	row := a.db.QueryRowContext(ctx, `SELECT fetched_at, records FROM payloads ORDER BY id DESC LIMIT 1`)
	err := row.Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrEmpty
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: read latest payload:%w", err)
	}

	records, err := series.DecodeRecords(bytes.NewBufferString(payload))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("storage: decode latest payload:%w", err)
	}

	return records, time.Unix(0, fetchedAt).UTC(), nil
}

// Count returns the number of payloads stored
func (a *Archive) Count(ctx context.Context) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payloads`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("storage: count payloads:%w", err)
	}
	return count, nil
}

// Prune removes all but the keep most recent payloads and returns the number removed
func (a *Archive) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	result, err := a.db.ExecContext(ctx,
		`DELETE FROM payloads WHERE id NOT IN (SELECT id FROM payloads ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("storage: prune payloads:%w", err)
	}
	return result.RowsAffected()
}
