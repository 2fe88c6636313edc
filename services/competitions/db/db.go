package db

import (
	"context"
	"database/sql"
	"time"

	_ "embed"
)

//go:embed schema.sql
var Schema string

type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type CacheEntry struct {
	Key       string
	Payload   string
	FetchedAt time.Time
}

const getCacheEntry = `
SELECT payload, fetched_at FROM scrape_cache WHERE key = ?
`

// GetCacheEntry returns sql.ErrNoRows when the key was never cached.
func (q *Queries) GetCacheEntry(ctx context.Context, key string) (CacheEntry, error) {
	row := q.db.QueryRowContext(ctx, getCacheEntry, key)

	var payload string
	var fetchedAt int64
	err := row.Scan(&payload, &fetchedAt)
	if err != nil {
		return CacheEntry{}, err
	}

	return CacheEntry{
		Key:       key,
		Payload:   payload,
		FetchedAt: time.Unix(fetchedAt, 0),
	}, nil
}

const putCacheEntry = `
INSERT INTO scrape_cache (key, payload, fetched_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
`

func (q *Queries) PutCacheEntry(ctx context.Context, entry CacheEntry) error {
	_, err := q.db.ExecContext(ctx, putCacheEntry, entry.Key, entry.Payload, entry.FetchedAt.Unix())
	return err
}

const deleteExpired = `
DELETE FROM scrape_cache WHERE fetched_at < ?
`

// DeleteOlderThan drops entries fetched before the cutoff.
func (q *Queries) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteExpired, cutoff.Unix())
	return err
}
