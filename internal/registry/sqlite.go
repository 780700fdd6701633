package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"govsignal-engine/internal/domain"
)

// SQLite keeps descriptors in the engine database. Seeding uses
// INSERT OR IGNORE so operator edits to existing rows survive
// restarts; only never-seen ids are added.
type SQLite struct {
	db  *sql.DB
	log logrus.FieldLogger
}

func NewSQLite(db *sql.DB, log logrus.FieldLogger) *SQLite {
	return &SQLite{db: db, log: log}
}

// Seed imports descriptors from the sources file. Returns how many
// were newly added.
func (r *SQLite) Seed(ctx context.Context, sources []domain.FeedSource) (int, error) {
	added := 0
	now := time.Now().UTC().Format(time.RFC3339)

	for _, s := range sources {
		if s.ID == "" || s.FeedGroup == "" {
			r.log.WithField("id", s.ID).Warn("skipping malformed source descriptor in seed")
			continue
		}

		urlsJSON, err := json.Marshal(s.URLs)
		if err != nil {
			return added, fmt.Errorf("marshal urls for %s: %w", s.ID, err)
		}
		scrapingJSON, err := json.Marshal(s.Scraping)
		if err != nil {
			return added, fmt.Errorf("marshal scraping for %s: %w", s.ID, err)
		}

		_, err = r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO sources (id, feed_group, department, feed_type, urls, scraping, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			s.ID, s.FeedGroup, s.Department, s.FeedType, string(urlsJSON), string(scrapingJSON),
			boolToInt(s.Active), now, now,
		)
		if err != nil {
			return added, fmt.Errorf("seed source %s: %w", s.ID, err)
		}

		var changes int
		if e := r.db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil && changes > 0 {
			added++
		}
	}
	return added, nil
}

func (r *SQLite) ActiveSources(ctx context.Context, feedGroups []string) ([]domain.FeedSource, error) {
	query := `
SELECT id, feed_group, department, feed_type, urls, scraping, active,
       error_count, last_error, last_fetched_at, last_success_at
FROM sources
WHERE active = 1`
	var args []any
	if len(feedGroups) > 0 {
		query += " AND feed_group IN (?" + strings.Repeat(",?", len(feedGroups)-1) + ")"
		for _, g := range feedGroups {
			args = append(args, g)
		}
	}
	query += " ORDER BY feed_group, id;"

	return r.querySources(ctx, query, args...)
}

func (r *SQLite) AllSources(ctx context.Context) ([]domain.FeedSource, error) {
	return r.querySources(ctx, `
SELECT id, feed_group, department, feed_type, urls, scraping, active,
       error_count, last_error, last_fetched_at, last_success_at
FROM sources
ORDER BY feed_group, id;`)
}

// ReportFetchSuccess clears the error state. error_count tracks
// consecutive failures, so one good fetch resets it.
func (r *SQLite) ReportFetchSuccess(ctx context.Context, sourceID string, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
UPDATE sources SET
  error_count = 0,
  last_error = '',
  last_fetched_at = ?,
  last_success_at = ?,
  updated_at = ?
WHERE id = ?;`, ts, ts, ts, sourceID)
	return err
}

func (r *SQLite) ReportFetchError(ctx context.Context, sourceID string, fetchErr error, at time.Time) error {
	msg := ""
	if fetchErr != nil {
		msg = fetchErr.Error()
	}
	ts := at.UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
UPDATE sources SET
  error_count = error_count + 1,
  last_error = ?,
  last_fetched_at = ?,
  updated_at = ?
WHERE id = ?;`, msg, ts, ts, sourceID)
	return err
}

func (r *SQLite) querySources(ctx context.Context, query string, args ...any) ([]domain.FeedSource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FeedSource
	for rows.Next() {
		var s domain.FeedSource
		var urlsJSON, scrapingJSON, lastErr, lastFetched, lastSuccess string
		var active int
		if err := rows.Scan(
			&s.ID, &s.FeedGroup, &s.Department, &s.FeedType,
			&urlsJSON, &scrapingJSON, &active,
			&s.ErrorCount, &lastErr, &lastFetched, &lastSuccess,
		); err != nil {
			return nil, err
		}
		s.Active = active != 0
		s.LastError = lastErr
		_ = json.Unmarshal([]byte(urlsJSON), &s.URLs)
		_ = json.Unmarshal([]byte(scrapingJSON), &s.Scraping)
		s.LastFetchedAt = parseTimePtr(lastFetched)
		s.LastSuccessAt = parseTimePtr(lastSuccess)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
