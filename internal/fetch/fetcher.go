package fetch

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/metrics"
)

// Outcome is the settled result of one fetch unit: a (source, lang,
// url) tuple for syndication feeds, or a (source, url) pair for bulk
// documents. Err and Items are mutually exclusive.
type Outcome struct {
	Source *domain.FeedSource
	Lang   string // empty for bulk documents, which carry all languages
	URL    string
	Items  []domain.RawItem
	Err    error
}

type Config struct {
	FeedTimeout  time.Duration
	BulkTimeout  time.Duration
	PerHostRPS   float64
	PerHostBurst int
	UserAgent    string
	Cache        ConditionalCache // nil disables conditional requests
}

// Fetcher pulls raw items off every configured upstream. Failures stay
// inside their Outcome; nothing a single source does can abort a run.
type Fetcher struct {
	hc      *http.Client
	limiter *HostLimiter
	cache   ConditionalCache
	log     logrus.FieldLogger

	ua          string
	feedTimeout time.Duration
	bulkTimeout time.Duration
}

func New(cfg Config, log logrus.FieldLogger) *Fetcher {
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 10 * time.Second
	}
	if cfg.BulkTimeout <= 0 {
		cfg.BulkTimeout = 30 * time.Second
	}
	if cfg.PerHostRPS <= 0 {
		cfg.PerHostRPS = 2
	}
	if cfg.PerHostBurst <= 0 {
		cfg.PerHostBurst = 4
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "GovSignalEngine/1.0"
	}
	return &Fetcher{
		// client timeout is a backstop; each unit carries its own
		// context deadline
		hc:          &http.Client{Timeout: cfg.BulkTimeout + 5*time.Second},
		limiter:     NewHostLimiter(cfg.PerHostRPS, cfg.PerHostBurst),
		cache:       cfg.Cache,
		log:         log,
		ua:          cfg.UserAgent,
		feedTimeout: cfg.FeedTimeout,
		bulkTimeout: cfg.BulkTimeout,
	}
}

type unit struct {
	src  *domain.FeedSource
	lang string
	url  string
	bulk bool
}

// FetchAll launches every fetch unit together and settles them all:
// each outcome (success, timeout, error) is collected before return,
// and no failure cancels a sibling.
func (f *Fetcher) FetchAll(ctx context.Context, sources []*domain.FeedSource) []Outcome {
	units := buildUnits(sources)
	if len(units) == 0 {
		return nil
	}

	var g errgroup.Group
	results := make(chan Outcome, len(units))

	for _, u := range units {
		u := u

		g.Go(func() error {
			timeout := f.feedTimeout
			if u.bulk {
				timeout = f.bulkTimeout
			}
			fctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			var items []domain.RawItem
			var err error
			if u.bulk {
				items, err = f.fetchBulk(fctx, u.src, u.url)
			} else {
				items, err = f.fetchFeed(fctx, u.src, u.lang, u.url)
			}
			metrics.FetchDuration.WithLabelValues(u.src.ID).Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.FetchesTotal.WithLabelValues(u.src.ID, "error").Inc()
				f.log.WithFields(logrus.Fields{"source": u.src.ID, "lang": u.lang, "url": u.url}).
					WithError(err).Warn("fetch failed")
				results <- Outcome{Source: u.src, Lang: u.lang, URL: u.url, Err: err}
				return nil // best-effort: don't cancel siblings
			}

			metrics.FetchesTotal.WithLabelValues(u.src.ID, "success").Inc()
			metrics.ItemsFetched.WithLabelValues(u.src.ID).Add(float64(len(items)))
			results <- Outcome{Source: u.src, Lang: u.lang, URL: u.url, Items: items}
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	out := make([]Outcome, 0, len(units))
	for res := range results {
		out = append(out, res)
	}
	return out
}

// buildUnits expands sources into fetch units. Bulk sources collapse
// to one unit per distinct URL since one document carries every
// language; feed sources get one unit per language URL.
func buildUnits(sources []*domain.FeedSource) []unit {
	var units []unit
	for _, src := range sources {
		urls := src.EffectiveURLs()
		if len(urls) == 0 {
			continue
		}

		if src.IsBulk() {
			seen := map[string]bool{}
			for _, lang := range orderedLangs(urls) {
				u := urls[lang]
				if u == "" || seen[u] {
					continue
				}
				seen[u] = true
				units = append(units, unit{src: src, url: u, bulk: true})
			}
			continue
		}

		for _, lang := range orderedLangs(urls) {
			if urls[lang] == "" {
				continue
			}
			units = append(units, unit{src: src, lang: lang, url: urls[lang]})
		}
	}
	return units
}

// orderedLangs walks the known languages first, then anything else in
// sorted order, so unit layout is deterministic.
func orderedLangs(urls map[string]string) []string {
	var out []string
	known := map[string]bool{}
	for _, l := range domain.Languages {
		known[l] = true
		if _, ok := urls[l]; ok {
			out = append(out, l)
		}
	}
	var extra []string
	for l := range urls {
		if !known[l] {
			extra = append(extra, l)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
