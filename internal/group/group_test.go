package group

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/identity"
)

var (
	t1 = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 1, 10, 8, 5, 0, 0, time.UTC)
)

func testGrouper() *Grouper {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(identity.NewResolver(log), domain.LangEN, log)
}

func transportSource() *domain.FeedSource {
	return &domain.FeedSource{
		ID:        "transport_notices_rss",
		FeedGroup: "transport_notices",
		Scraping:  domain.ScrapeConfig{IdentityPattern: `/notice/(\d+)\.htm`},
	}
}

func TestGroupMergesLanguageVariants(t *testing.T) {
	src := transportSource()
	items := []domain.RawItem{
		{
			GUID: "g-en", Lang: "en",
			Title: "Road closure on King's Road",
			Body:  "Eastbound lanes closed for works.",
			Link:  "https://www.td.gov.hk/notice/12345.htm",
			Published: t1, Source: src,
		},
		{
			GUID: "g-tc", Lang: "zh-TW",
			Title: "英皇道封路",
			Body:  "東行線因工程封閉。",
			Link:  "https://www.td.gov.hk/notice/12345.htm",
			Published: t2, Source: src,
		},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 1, "same identity must merge, never duplicate")

	sig := signals[0]
	assert.Equal(t, "12345", sig.NoticeID)
	assert.Equal(t, "transport_notices", sig.FeedGroup)
	assert.Equal(t, "transport_notice", sig.Category)
	assert.Equal(t, t1, sig.PublishedAt, "earliest variant timestamp wins")

	require.Len(t, sig.Languages, 2)
	assert.Equal(t, "Road closure on King's Road", sig.Languages["en"].Title)
	assert.Equal(t, "英皇道封路", sig.Languages["zh-TW"].Title)
	assert.Equal(t, "g-en", sig.Languages["en"].GUID)
	assert.Equal(t, "https://www.td.gov.hk/notice/12345.htm", sig.URLs["zh-TW"])
}

func TestEarliestTimestampWinsRegardlessOfArrival(t *testing.T) {
	src := transportSource()
	items := []domain.RawItem{
		{Lang: "zh-TW", Title: "英皇道封路", Body: "x", Link: "https://td.gov.hk/notice/7.htm", Published: t2, Source: src},
		{Lang: "en", Title: "Road closure", Body: "y", Link: "https://td.gov.hk/notice/7.htm", Published: t1, Source: src},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 1)
	assert.Equal(t, t1, signals[0].PublishedAt, "later-arriving earlier timestamp must still win")
}

func TestAnchorLanguageGate(t *testing.T) {
	src := transportSource()
	items := []domain.RawItem{
		// Chinese-only notice: no anchor content at all.
		{Lang: "zh-TW", Title: "只有中文", Body: "內容", Link: "https://td.gov.hk/notice/1.htm", Published: t1, Source: src},
		// Anchor present but title normalizes to empty.
		{Lang: "en", Title: "<p>&nbsp;</p>", Body: "body", Link: "https://td.gov.hk/notice/2.htm", Published: t1, Source: src},
		// Healthy signal.
		{Lang: "en", Title: "Kept", Body: "body", Link: "https://td.gov.hk/notice/3.htm", Published: t1, Source: src},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 1)
	assert.Equal(t, "3", signals[0].NoticeID)
}

func TestGroupNormalizesContent(t *testing.T) {
	src := transportSource()
	items := []domain.RawItem{
		{
			Lang:  "en",
			Title: "<![CDATA[<b>Flushing</b> of water mains]]>",
			Body:  "Water &amp; hydrant works<br/>in progress",
			Link:  "https://td.gov.hk/notice/88.htm",
			Published: t1, Source: src,
		},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 1)
	assert.Equal(t, "Flushing of water mains", signals[0].Languages["en"].Title)
	assert.Equal(t, "Water & hydrant works in progress", signals[0].Languages["en"].Body)
}

func TestSameIdentityDifferentGroupsStaySeparate(t *testing.T) {
	transport := transportSource()
	health := &domain.FeedSource{
		ID:        "health_alerts_rss",
		FeedGroup: "health_alerts",
		Scraping:  domain.ScrapeConfig{IdentityPattern: `/notice/(\d+)\.htm`},
	}
	items := []domain.RawItem{
		{Lang: "en", Title: "A", Body: "a", Link: "https://td.gov.hk/notice/9.htm", Published: t1, Source: transport},
		{Lang: "en", Title: "B", Body: "b", Link: "https://dh.gov.hk/notice/9.htm", Published: t1, Source: health},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 2, "group key namespaces identity by feed group")
	assert.Equal(t, "transport_notices", signals[0].FeedGroup)
	assert.Equal(t, "health_alerts", signals[1].FeedGroup)
}

func TestDuplicateLanguageFillsGapsOnly(t *testing.T) {
	src := transportSource()
	items := []domain.RawItem{
		{Lang: "en", Title: "First title", Body: "", Link: "https://td.gov.hk/notice/5.htm", Published: t1, Source: src},
		{Lang: "en", Title: "Second title", Body: "Late body", Link: "https://td.gov.hk/notice/5.htm", Published: t2, Source: src},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 1)
	assert.Equal(t, "First title", signals[0].Languages["en"].Title, "first sighting keeps its title")
	assert.Equal(t, "Late body", signals[0].Languages["en"].Body, "empty body is filled by the duplicate")
}

func TestUnresolvableItemIsDropped(t *testing.T) {
	src := &domain.FeedSource{ID: "x", FeedGroup: "gov_general"}
	items := []domain.RawItem{
		{Lang: "en", Title: "", Body: "", Link: "", Published: t1, Source: src},
		{Lang: "en", Title: "Survivor", Body: "b", Link: "https://gov.hk/notices/keep-this.htm", Published: t1, Source: src},
	}

	signals := testGrouper().Group(items)
	require.Len(t, signals, 1)
	assert.Equal(t, "keep-this", signals[0].NoticeID)
}
