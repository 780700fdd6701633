package stats

import (
	"context"
	"database/sql"

	"govsignal-engine/internal/store"
)

// Completeness splits the stored signals by how much of their content
// has been captured. Complete means the anchor language plus at least
// one translation; anchor-only records are complete but untranslated.
type Completeness struct {
	Complete           int `json:"complete"`
	Partial            int `json:"partial"`
	AnchorLanguageOnly int `json:"anchorLanguageOnly"`
}

// Report is a point-in-time summary of the signals table.
type Report struct {
	TotalSignals        int            `json:"totalSignals"`
	ByStatus            map[string]int `json:"byStatus"`
	ByFeedGroup         map[string]int `json:"byFeedGroup"`
	ContentCompleteness Completeness   `json:"contentCompleteness"`
}

// Collect aggregates the signals table into a Report. Read-only.
func Collect(ctx context.Context, db *sql.DB) (*Report, error) {
	rep := &Report{
		ByStatus:    make(map[string]int),
		ByFeedGroup: make(map[string]int),
	}

	if err := countBy(ctx, db, "processing_status", rep.ByStatus); err != nil {
		return nil, err
	}
	if err := countBy(ctx, db, "feed_group", rep.ByFeedGroup); err != nil {
		return nil, err
	}
	for _, n := range rep.ByStatus {
		rep.TotalSignals += n
	}

	row := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN processing_status = ? AND language_count >= 2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN processing_status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN processing_status = ? AND language_count < 2 THEN 1 ELSE 0 END), 0)
		FROM signals`,
		store.StatusComplete, store.StatusPartial, store.StatusComplete)
	c := &rep.ContentCompleteness
	if err := row.Scan(&c.Complete, &c.Partial, &c.AnchorLanguageOnly); err != nil {
		return nil, err
	}
	return rep, nil
}

func countBy(ctx context.Context, db *sql.DB, column string, out map[string]int) error {
	// column is one of two hardcoded identifiers above, never user input.
	rows, err := db.QueryContext(ctx, "SELECT "+column+", COUNT(*) FROM signals GROUP BY "+column)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		out[key] = n
	}
	return rows.Err()
}
