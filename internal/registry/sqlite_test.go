package registry

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/store"
)

func testRegistry(t *testing.T) (*SQLite, *sql.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewSQLite(db.Pool, log), db.Pool
}

func seedSources() []domain.FeedSource {
	return []domain.FeedSource{
		{
			ID:        "transport_notices_rss",
			FeedGroup: "transport_notices",
			FeedType:  "rss",
			URLs:      map[string]string{"en": "https://www.td.gov.hk/en/notices.xml", "zh-TW": "https://www.td.gov.hk/tc/notices.xml"},
			Scraping:  domain.ScrapeConfig{Enabled: true, FrequencyMinutes: 30, IdentityPattern: `/notice/(\d+)\.htm`},
			Active:    true,
		},
		{
			ID:        "weather_warnings_rss",
			FeedGroup: "weather_warnings",
			FeedType:  "rss",
			URLs:      map[string]string{"en": "https://rss.weather.gov.hk/rss/WeatherWarningSummary.xml"},
			Scraping:  domain.ScrapeConfig{Enabled: true, FrequencyMinutes: 10, PriorityBoost: 5},
			Active:    true,
		},
		{
			ID:        "lands_notices_rss",
			FeedGroup: "lands_notices",
			FeedType:  "rss",
			URLs:      map[string]string{"en": "https://www.landsd.gov.hk/en/notices.xml"},
			Scraping:  domain.ScrapeConfig{Enabled: true, FrequencyMinutes: 120},
			Active:    false,
		},
	}
}

func TestSeedAndActiveSources(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()

	added, err := reg.Seed(ctx, seedSources())
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	// Seeding again must not duplicate or clobber.
	added, err = reg.Seed(ctx, seedSources())
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	active, err := reg.ActiveSources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, active, 2, "inactive source must be excluded")

	transport, err := reg.ActiveSources(ctx, []string{"transport_notices"})
	require.NoError(t, err)
	require.Len(t, transport, 1)
	assert.Equal(t, `/notice/(\d+)\.htm`, transport[0].Scraping.IdentityPattern)
	assert.Equal(t, "https://www.td.gov.hk/tc/notices.xml", transport[0].URLs["zh-TW"])

	all, err := reg.AllSources(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFetchOutcomeBookkeeping(t *testing.T) {
	reg, _ := testRegistry(t)
	ctx := context.Background()

	_, err := reg.Seed(ctx, seedSources())
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, reg.ReportFetchError(ctx, "weather_warnings_rss", errors.New("connection refused"), now))
	require.NoError(t, reg.ReportFetchError(ctx, "weather_warnings_rss", errors.New("timeout"), now))

	srcs, err := reg.ActiveSources(ctx, []string{"weather_warnings"})
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, 2, srcs[0].ErrorCount)
	assert.Equal(t, "timeout", srcs[0].LastError)
	require.NotNil(t, srcs[0].LastFetchedAt)
	assert.Nil(t, srcs[0].LastSuccessAt)

	require.NoError(t, reg.ReportFetchSuccess(ctx, "weather_warnings_rss", now))

	srcs, err = reg.ActiveSources(ctx, []string{"weather_warnings"})
	require.NoError(t, err)
	require.Len(t, srcs, 1)
	assert.Equal(t, 0, srcs[0].ErrorCount, "success resets consecutive error count")
	assert.Empty(t, srcs[0].LastError)
	require.NotNil(t, srcs[0].LastSuccessAt)
}
