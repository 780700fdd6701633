package domain

import "time"

// Language tags used across feeds and persisted records.
const (
	LangEN = "en"
	LangTC = "zh-TW"
	LangSC = "zh-CN"
)

// Languages lists every tag the pipeline understands, anchor first.
var Languages = []string{LangEN, LangTC, LangSC}

// ScrapeConfig is the per-source scraping configuration supplied by the
// registry. Optional fields are empty/zero when the registry does not
// set them.
type ScrapeConfig struct {
	Enabled            bool              `json:"enabled" yaml:"enabled"`
	FrequencyMinutes   int               `json:"frequencyMinutes" yaml:"frequency_minutes"`
	PriorityBoost      int               `json:"priorityBoost" yaml:"priority_boost"`
	BulkDocumentFormat string            `json:"bulkDocumentFormat,omitempty" yaml:"bulk_document_format,omitempty"`
	IdentityPattern    string            `json:"identityPattern,omitempty" yaml:"identity_pattern,omitempty"`
	LanguageURLMap     map[string]string `json:"languageUrlMap,omitempty" yaml:"language_url_map,omitempty"`
}

// FeedSource is one externally-configured source descriptor. The JSON
// shape is the registry contract; operational fields below the contract
// block are maintained by the registry, not supplied by configuration.
type FeedSource struct {
	ID         string            `json:"id" yaml:"id"`
	FeedGroup  string            `json:"feedGroup" yaml:"feed_group"`
	Department string            `json:"department" yaml:"department"`
	FeedType   string            `json:"feedType" yaml:"feed_type"`
	URLs       map[string]string `json:"urls" yaml:"urls"`
	Scraping   ScrapeConfig      `json:"scrapingConfig" yaml:"scraping"`
	Active     bool              `json:"active" yaml:"active"`

	ErrorCount    int        `json:"errorCount,omitempty" yaml:"-"`
	LastError     string     `json:"lastError,omitempty" yaml:"-"`
	LastFetchedAt *time.Time `json:"lastFetchedAt,omitempty" yaml:"-"`
	LastSuccessAt *time.Time `json:"lastSuccessAt,omitempty" yaml:"-"`
}

// IsBulk reports whether the source publishes a bulk structured
// document instead of per-language syndication feeds.
func (s *FeedSource) IsBulk() bool {
	return s.Scraping.BulkDocumentFormat != ""
}

// EffectiveURLs resolves the per-language URL map, preferring the
// scraping-config override when the registry sets one.
func (s *FeedSource) EffectiveURLs() map[string]string {
	if len(s.Scraping.LanguageURLMap) > 0 {
		return s.Scraping.LanguageURLMap
	}
	return s.URLs
}

// Due reports whether the source should be fetched at now, honoring
// frequencyMinutes against the last attempt. Sources never fetched are
// always due; a non-positive frequency means every run.
func (s *FeedSource) Due(now time.Time) bool {
	if s.LastFetchedAt == nil || s.Scraping.FrequencyMinutes <= 0 {
		return true
	}
	next := s.LastFetchedAt.Add(time.Duration(s.Scraping.FrequencyMinutes) * time.Minute)
	return !now.Before(next)
}
