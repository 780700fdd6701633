package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var c Config
	c.App.Port = 8090
	c.App.DataDir = "/tmp/govsignal"
	c.Polling.Enabled = true
	c.Polling.IntervalMinutes = 15
	c.Fetch.FeedTimeoutSeconds = 10
	c.Fetch.BulkTimeoutSeconds = 30
	c.Fetch.PerHostRPS = 2
	c.Fetch.PerHostBurst = 4
	c.Pipeline.AnchorLanguage = "en"
	c.Pipeline.FeedGroups = []string{"transport_notices", "weather_warnings"}
	c.Log.Level = "info"
	return c
}

func TestNormalizeAndValidateOK(t *testing.T) {
	_, res := NormalizeAndValidate(validConfig())
	assert.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestAnchorDefaultsToEnglish(t *testing.T) {
	c := validConfig()
	c.Pipeline.AnchorLanguage = ""
	out, res := NormalizeAndValidate(c)
	assert.True(t, res.OK())
	assert.Equal(t, "en", out.Pipeline.AnchorLanguage)
}

func TestValidateCollectsErrors(t *testing.T) {
	c := validConfig()
	c.App.Port = 0
	c.Fetch.PerHostRPS = 0
	c.Pipeline.AnchorLanguage = "fr"
	_, res := NormalizeAndValidate(c)
	assert.False(t, res.OK())
	assert.Len(t, res.Errors, 3)
}

func TestFeedGroupsNormalized(t *testing.T) {
	c := validConfig()
	c.Pipeline.FeedGroups = []string{" transport_notices", "transport_notices", "", "hkma_press"}
	out, res := NormalizeAndValidate(c)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"transport_notices", "hkma_press"}, out.Pipeline.FeedGroups)
}

func TestEmptyFeedGroupsWarns(t *testing.T) {
	c := validConfig()
	c.Pipeline.FeedGroups = nil
	_, res := NormalizeAndValidate(c)
	assert.True(t, res.OK())
	assert.NotEmpty(t, res.Warnings)
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	c := validConfig()
	require.NoError(t, SaveAtomic(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.App.Port, loaded.App.Port)
	assert.Equal(t, c.Pipeline.FeedGroups, loaded.Pipeline.FeedGroups)

	// Second save keeps the previous version as .bak.
	c.App.Port = 9001
	require.NoError(t, SaveAtomic(path, c))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	c := validConfig()
	c.App.Port = -1
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), c)
	assert.Error(t, err)
}

func TestEnsureUserFileCopiesOnce(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(def, []byte("app:\n  port: 8090\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	path, err := EnsureUserFile(dataDir, "config.yml", def)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), path)

	// A user edit must survive the next call.
	require.NoError(t, os.WriteFile(path, []byte("app:\n  port: 1234\n"), 0o644))
	again, err := EnsureUserFile(dataDir, "config.yml", def)
	require.NoError(t, err)
	b, err := os.ReadFile(again)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1234")
}

func TestLoadSources(t *testing.T) {
	doc := `
sources:
  - id: transport_notices_en
    feed_group: transport_notices
    department: Transport Department
    feed_type: rss
    urls:
      en: https://www.td.gov.hk/en/traffic_notices.xml
    scraping:
      enabled: true
      frequency_minutes: 30
      priority_boost: 2
      identity_pattern: '/notice/(\d+)\.htm'
    active: true
  - id: hkma_press_bulk
    feed_group: hkma_press
    department: Hong Kong Monetary Authority
    feed_type: xml
    urls:
      en: https://www.hkma.gov.hk/media/press.xml
    scraping:
      enabled: true
      frequency_minutes: 60
      bulk_document_format: message_blocks
    active: true
`
	path := filepath.Join(t.TempDir(), "sources.yml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	srcs, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, srcs, 2)
	assert.Equal(t, "transport_notices", srcs[0].FeedGroup)
	assert.Equal(t, `/notice/(\d+)\.htm`, srcs[0].Scraping.IdentityPattern)
	assert.Equal(t, 30, srcs[0].Scraping.FrequencyMinutes)
	assert.True(t, srcs[1].IsBulk())
}
