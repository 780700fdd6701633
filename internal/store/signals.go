package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SignalUpsert carries one signal write. Content is the full merged
// document; the caller owns the merge, the store owns the conflict
// rules.
type SignalUpsert struct {
	SourceIdentifier string
	FeedGroup        string
	Category         string
	Content          ContentDoc
	BasePriority     int
	ProcessingStatus string
	LanguageCount    int
	PublishedAt      time.Time
}

type ListSignalsOpts struct {
	Group  string // feed group filter, empty = all
	Status string // processing status filter, empty = all
	Sort   string // priority | published | discovered | updated | group
	Window string // 24h | 7d | all
	Limit  int
}

// UpsertSignal inserts or merges one signal row. The conflict clause
// enforces the one-way status machine: a row that reached
// content_complete stays there even if a later run supplies less.
// priority_score is left to the schema triggers.
func UpsertSignal(ctx context.Context, db *sql.DB, up SignalUpsert) error {
	contentJSON, err := json.Marshal(up.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	_, err = db.ExecContext(ctx, `
INSERT INTO signals (source_identifier, feed_group, category, content, base_priority,
                     processing_status, scraping_attempts, language_count, published_at,
                     created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)
ON CONFLICT(source_identifier) DO UPDATE SET
  feed_group = excluded.feed_group,
  category = excluded.category,
  content = excluded.content,
  base_priority = excluded.base_priority,
  processing_status = CASE
    WHEN signals.processing_status = 'content_complete' THEN 'content_complete'
    ELSE excluded.processing_status END,
  scraping_attempts = signals.scraping_attempts + 1,
  language_count = excluded.language_count,
  published_at = excluded.published_at,
  updated_at = excluded.updated_at;`,
		up.SourceIdentifier, up.FeedGroup, up.Category, string(contentJSON), up.BasePriority,
		up.ProcessingStatus, up.LanguageCount, fmtTime(up.PublishedAt), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert signal %s: %w", up.SourceIdentifier, err)
	}
	return nil
}

// GetSignal returns one record by its unique key, or ErrNotFound.
func GetSignal(ctx context.Context, db *sql.DB, sourceIdentifier string) (SignalRecord, error) {
	row := db.QueryRowContext(ctx, `
SELECT source_identifier, feed_group, category, content, base_priority, priority_score,
       processing_status, scraping_attempts, language_count, published_at, created_at, updated_at
FROM signals
WHERE source_identifier = ?
LIMIT 1;`, sourceIdentifier)

	rec, err := scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SignalRecord{}, ErrNotFound
	}
	return rec, err
}

func ListSignals(ctx context.Context, db *sql.DB, opts ListSignalsOpts) ([]SignalRecord, error) {
	// defaults
	if opts.Sort == "" {
		opts.Sort = "priority"
	}
	if opts.Window == "" {
		opts.Window = "7d"
	}
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}

	// Sort keys map onto fixed columns; user input never reaches the SQL.
	sortCol := map[string]string{
		"priority":   "priority_score",
		"published":  "published_at",
		"discovered": "created_at",
		"updated":    "updated_at",
		"group":      "feed_group",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "priority_score"
	}
	order := "DESC"
	if opts.Sort == "group" {
		order = "ASC"
	}

	// published_at is stored as RFC3339 UTC, so the cutoff has to be
	// rendered in the same shape for string comparison to hold.
	var where []string
	var args []any
	switch opts.Window {
	case "all":
		// no filter
	case "24h":
		where = append(where, `published_at >= strftime('%Y-%m-%dT%H:%M:%SZ','now','-24 hours')`)
	default:
		where = append(where, `published_at >= strftime('%Y-%m-%dT%H:%M:%SZ','now','-7 days')`)
	}
	if opts.Group != "" {
		where = append(where, "feed_group = ?")
		args = append(args, opts.Group)
	}
	if opts.Status != "" {
		where = append(where, "processing_status = ?")
		args = append(args, opts.Status)
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
SELECT source_identifier, feed_group, category, content, base_priority, priority_score,
       processing_status, scraping_attempts, language_count, published_at, created_at, updated_at
FROM signals
%s
ORDER BY %s %s
LIMIT ?;`, whereSQL, sortCol, order)

	args = append(args, opts.Limit)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		rec, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignal(r rowScanner) (SignalRecord, error) {
	var rec SignalRecord
	var contentJSON, publishedAt, createdAt, updatedAt string
	if err := r.Scan(
		&rec.SourceIdentifier,
		&rec.FeedGroup,
		&rec.Category,
		&contentJSON,
		&rec.BasePriority,
		&rec.PriorityScore,
		&rec.ProcessingStatus,
		&rec.ScrapingAttempts,
		&rec.LanguageCount,
		&publishedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return SignalRecord{}, err
	}
	_ = json.Unmarshal([]byte(contentJSON), &rec.Content)
	rec.PublishedAt = parseTime(publishedAt)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
