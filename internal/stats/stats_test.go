package stats

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsignal-engine/internal/store"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db.Pool
}

func seed(t *testing.T, db *sql.DB, id, group, status string, langs int) {
	t.Helper()
	err := store.UpsertSignal(context.Background(), db, store.SignalUpsert{
		SourceIdentifier: id,
		FeedGroup:        group,
		Category:         "administrative",
		Content:          store.ContentDoc{Languages: map[string]store.LanguageDoc{}},
		BasePriority:     1,
		ProcessingStatus: status,
		LanguageCount:    langs,
		PublishedAt:      time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestCollectEmptyTable(t *testing.T) {
	db := testDB(t)

	rep, err := Collect(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.TotalSignals)
	assert.Empty(t, rep.ByStatus)
	assert.Empty(t, rep.ByFeedGroup)
	assert.Equal(t, Completeness{}, rep.ContentCompleteness)
}

func TestCollectCountsAndCompleteness(t *testing.T) {
	db := testDB(t)
	seed(t, db, "weather_warnings_a", "weather_warnings", store.StatusComplete, 3)
	seed(t, db, "weather_warnings_b", "weather_warnings", store.StatusComplete, 1)
	seed(t, db, "transport_notices_c", "transport_notices", store.StatusPartial, 1)
	seed(t, db, "hkma_press_d", "hkma_press", store.StatusComplete, 2)

	rep, err := Collect(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, 4, rep.TotalSignals)
	assert.Equal(t, map[string]int{
		store.StatusComplete: 3,
		store.StatusPartial:  1,
	}, rep.ByStatus)
	assert.Equal(t, map[string]int{
		"weather_warnings":  2,
		"transport_notices": 1,
		"hkma_press":        1,
	}, rep.ByFeedGroup)
	assert.Equal(t, Completeness{
		Complete:           2,
		Partial:            1,
		AnchorLanguageOnly: 1,
	}, rep.ContentCompleteness)
}
