package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCacheRoundtrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	const url = "https://rss.weather.gov.hk/rss/WeatherWarningSummaryv2.xml"

	e, err := GetHTTPCache(ctx, db, url)
	require.NoError(t, err)
	assert.Empty(t, e.ETag, "unknown url yields a zero entry, not an error")

	require.NoError(t, UpsertHTTPCache(ctx, db, HTTPCacheEntry{
		URL: url, ETag: `"v1"`, LastModified: "Thu, 15 Aug 2024 03:30:00 GMT",
	}))

	e, err = GetHTTPCache(ctx, db, url)
	require.NoError(t, err)
	assert.Equal(t, `"v1"`, e.ETag)
	assert.Equal(t, "Thu, 15 Aug 2024 03:30:00 GMT", e.LastModified)
	assert.False(t, e.CheckedAt.IsZero())

	// Fresh validators replace the old ones.
	require.NoError(t, UpsertHTTPCache(ctx, db, HTTPCacheEntry{URL: url, ETag: `"v2"`}))
	e, err = GetHTTPCache(ctx, db, url)
	require.NoError(t, err)
	assert.Equal(t, `"v2"`, e.ETag)
}

func TestHTTPCacheSkipsEmptyValidators(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, UpsertHTTPCache(ctx, db, HTTPCacheEntry{URL: "https://www.gov.hk/none"}))

	e, err := GetHTTPCache(ctx, db, "https://www.gov.hk/none")
	require.NoError(t, err)
	assert.Empty(t, e.URL, "no-validator responses are not cached")
}

func TestHTTPCacheAdapter(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	c := HTTPCache{DB: db}

	require.NoError(t, c.Save(ctx, "https://www.hkma.gov.hk/rss/press.xml", `"abc"`, ""))
	etag, lastMod, err := c.Load(ctx, "https://www.hkma.gov.hk/rss/press.xml")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, etag)
	assert.Empty(t, lastMod)
}
