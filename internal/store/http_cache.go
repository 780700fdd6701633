package store

import (
	"context"
	"database/sql"
	"time"
)

// HTTPCacheEntry holds the validators a URL answered with last time.
// They go back out as If-None-Match / If-Modified-Since so an
// unchanged upstream can reply 304 instead of a full body.
type HTTPCacheEntry struct {
	URL          string
	ETag         string
	LastModified string
	CheckedAt    time.Time
}

// GetHTTPCache returns cached validators for url, or a zero entry if
// none are stored yet.
func GetHTTPCache(ctx context.Context, db *sql.DB, url string) (HTTPCacheEntry, error) {
	var e HTTPCacheEntry
	var checked string
	err := db.QueryRowContext(ctx,
		`SELECT url, etag, last_modified, checked_at FROM http_cache WHERE url = ? LIMIT 1;`,
		url,
	).Scan(&e.URL, &e.ETag, &e.LastModified, &checked)

	if err == sql.ErrNoRows {
		return HTTPCacheEntry{}, nil
	}
	if err != nil {
		return HTTPCacheEntry{}, err
	}
	e.CheckedAt = parseTime(checked)
	return e, nil
}

// UpsertHTTPCache records the validators from a fresh response. An
// entry with neither validator is not worth a row.
func UpsertHTTPCache(ctx context.Context, db *sql.DB, e HTTPCacheEntry) error {
	if e.URL == "" || (e.ETag == "" && e.LastModified == "") {
		return nil
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO http_cache(url, etag, last_modified, checked_at)
VALUES(?,?,?,?)
ON CONFLICT(url) DO UPDATE SET
  etag = excluded.etag,
  last_modified = excluded.last_modified,
  checked_at = excluded.checked_at;
`, e.URL, e.ETag, e.LastModified, fmtTime(time.Now().UTC()))

	return err
}

// HTTPCache adapts the http_cache table to the fetcher's conditional
// request cache.
type HTTPCache struct {
	DB *sql.DB
}

func (c HTTPCache) Load(ctx context.Context, url string) (etag, lastModified string, err error) {
	e, err := GetHTTPCache(ctx, c.DB, url)
	return e.ETag, e.LastModified, err
}

func (c HTTPCache) Save(ctx context.Context, url, etag, lastModified string) error {
	return UpsertHTTPCache(ctx, c.DB, HTTPCacheEntry{URL: url, ETag: etag, LastModified: lastModified})
}
