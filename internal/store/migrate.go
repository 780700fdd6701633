package store

import (
	"database/sql"
	"fmt"
)

func Migrate(db *sql.DB) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- v1 tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS signals (
  source_identifier TEXT PRIMARY KEY,
  feed_group TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'administrative',
  content TEXT NOT NULL DEFAULT '{}',
  base_priority INTEGER NOT NULL DEFAULT 0,
  priority_score INTEGER NOT NULL DEFAULT 0,
  processing_status TEXT NOT NULL DEFAULT 'content_partial',
  scraping_attempts INTEGER NOT NULL DEFAULT 0,
  language_count INTEGER NOT NULL DEFAULT 0,
  published_at TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS sources (
  id TEXT PRIMARY KEY,
  feed_group TEXT NOT NULL,
  department TEXT NOT NULL DEFAULT '',
  feed_type TEXT NOT NULL DEFAULT 'rss',
  urls TEXT NOT NULL DEFAULT '{}',
  scraping TEXT NOT NULL DEFAULT '{}',
  active INTEGER NOT NULL DEFAULT 1,
  error_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT '',
  last_fetched_at TEXT NOT NULL DEFAULT '',
  last_success_at TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS http_cache (
  url TEXT PRIMARY KEY,
  etag TEXT NOT NULL DEFAULT '',
  last_modified TEXT NOT NULL DEFAULT '',
  checked_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- v1 indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_signals_feed_group
ON signals(feed_group);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_signals_status
ON signals(processing_status);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_signals_published_at
ON signals(published_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_sources_feed_group
ON sources(feed_group);
`); err != nil {
		return err
	}

	// ---- Schema v1: priority triggers ----
	//
	// Priority is derived entirely inside the store so every writer
	// agrees on it: category weight, plus the source's base priority
	// hint, plus bonuses for complete and multilingual content.

	const priorityExpr = `
      NEW.base_priority * 10
    + CASE NEW.category
        WHEN 'weather_warning' THEN 50
        WHEN 'health_alert' THEN 40
        WHEN 'transport_notice' THEN 30
        WHEN 'monetary_press' THEN 20
        WHEN 'monetary_circular' THEN 15
        WHEN 'health_guideline' THEN 10
        ELSE 5 END
    + CASE NEW.processing_status WHEN 'content_complete' THEN 10 ELSE 0 END
    + CASE WHEN NEW.language_count >= 2 THEN 5 ELSE 0 END
`

	if _, err := tx.Exec(fmt.Sprintf(`
CREATE TRIGGER IF NOT EXISTS trg_signals_priority_insert
AFTER INSERT ON signals
BEGIN
  UPDATE signals SET priority_score = %s
  WHERE source_identifier = NEW.source_identifier;
END;
`, priorityExpr)); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf(`
CREATE TRIGGER IF NOT EXISTS trg_signals_priority_update
AFTER UPDATE OF base_priority, category, processing_status, language_count ON signals
BEGIN
  UPDATE signals SET priority_score = %s
  WHERE source_identifier = NEW.source_identifier;
END;
`, priorityExpr)); err != nil {
		return err
	}

	// Record schema v1
	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
