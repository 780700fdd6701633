package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db.Pool
}

func sampleUpsert(id string) SignalUpsert {
	return SignalUpsert{
		SourceIdentifier: id,
		FeedGroup:        "transport_notices",
		Category:         "transport_notice",
		Content: ContentDoc{
			Meta: MetaBlock{NoticeID: "12345", PublishedAt: time.Now().UTC()},
			Languages: map[string]LanguageDoc{
				"en": {Title: "Road closure", Body: "Nathan Road closed", ContentHash: "abc", WordCount: 5},
			},
		},
		BasePriority:     2,
		ProcessingStatus: StatusPartial,
		LanguageCount:    1,
		PublishedAt:      time.Now().UTC(),
	}
}

func TestUpsertSignalCreatesThenMerges(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	up := sampleUpsert("transport_notices_12345")
	require.NoError(t, UpsertSignal(ctx, db, up))

	rec, err := GetSignal(ctx, db, "transport_notices_12345")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, rec.ProcessingStatus)
	assert.Equal(t, 1, rec.ScrapingAttempts)
	assert.Equal(t, "Road closure", rec.Content.Languages["en"].Title)
	// trigger: 2*10 base + 30 transport, no completeness bonuses yet
	assert.Equal(t, 50, rec.PriorityScore)

	up.ProcessingStatus = StatusComplete
	up.LanguageCount = 2
	up.Content.Languages["zh-TW"] = LanguageDoc{Title: "封路", Body: "彌敦道封閉", ContentHash: "def", WordCount: 7}
	require.NoError(t, UpsertSignal(ctx, db, up))

	rec, err = GetSignal(ctx, db, "transport_notices_12345")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, rec.ProcessingStatus)
	assert.Equal(t, 2, rec.ScrapingAttempts)
	assert.Equal(t, 2, rec.LanguageCount)
	assert.Len(t, rec.Content.Languages, 2)
	// trigger recomputed: 20 + 30 + 10 complete + 5 multilingual
	assert.Equal(t, 65, rec.PriorityScore)
}

func TestStatusNeverRegresses(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	up := sampleUpsert("weather_warnings_WTCSGNL")
	up.FeedGroup = "weather_warnings"
	up.Category = "weather_warning"
	up.ProcessingStatus = StatusComplete
	require.NoError(t, UpsertSignal(ctx, db, up))

	up.ProcessingStatus = StatusPartial
	require.NoError(t, UpsertSignal(ctx, db, up))

	rec, err := GetSignal(ctx, db, "weather_warnings_WTCSGNL")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, rec.ProcessingStatus)
}

func TestGetSignalNotFound(t *testing.T) {
	db := testDB(t)
	_, err := GetSignal(context.Background(), db, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSignalsFiltersAndWindows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	fresh := sampleUpsert("transport_notices_1")
	require.NoError(t, UpsertSignal(ctx, db, fresh))

	weather := sampleUpsert("weather_warnings_2")
	weather.FeedGroup = "weather_warnings"
	weather.Category = "weather_warning"
	weather.ProcessingStatus = StatusComplete
	require.NoError(t, UpsertSignal(ctx, db, weather))

	stale := sampleUpsert("transport_notices_3")
	stale.PublishedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, UpsertSignal(ctx, db, stale))

	byGroup, err := ListSignals(ctx, db, ListSignalsOpts{Group: "weather_warnings", Window: "all"})
	require.NoError(t, err)
	require.Len(t, byGroup, 1)
	assert.Equal(t, "weather_warnings_2", byGroup[0].SourceIdentifier)

	byStatus, err := ListSignals(ctx, db, ListSignalsOpts{Status: StatusComplete, Window: "all"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)

	recent, err := ListSignals(ctx, db, ListSignalsOpts{Window: "7d"})
	require.NoError(t, err)
	assert.Len(t, recent, 2, "2020 record must fall outside the 7d window")

	all, err := ListSignals(ctx, db, ListSignalsOpts{Window: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	// default sort is priority desc; the weather warning outranks transport
	assert.Equal(t, "weather_warnings_2", all[0].SourceIdentifier)
}
