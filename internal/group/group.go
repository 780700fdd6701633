package group

import (
	"github.com/sirupsen/logrus"

	"govsignal-engine/internal/classify"
	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/identity"
	"govsignal-engine/internal/text"
)

// Grouper folds raw per-language items into multilingual Signals
// keyed by feedGroup + "_" + identity. Output order is first-seen
// group order, so results depend only on input content, not on which
// upstream answered faster.
type Grouper struct {
	resolver *identity.Resolver
	anchor   string
	log      logrus.FieldLogger
}

func New(resolver *identity.Resolver, anchor string, log logrus.FieldLogger) *Grouper {
	return &Grouper{resolver: resolver, anchor: anchor, log: log}
}

// Group merges items into Signals and drops any whose anchor language
// ended up without a title; such a signal is unusable downstream.
func (g *Grouper) Group(items []domain.RawItem) []*domain.Signal {
	signals := make(map[string]*domain.Signal)
	var order []string

	for _, it := range items {
		if it.Source == nil {
			continue
		}

		title := text.Normalize(it.Title)
		body := text.Normalize(it.Body)

		id := g.resolver.Resolve(it.Link, it.Source, title)
		if id == "" {
			g.log.WithFields(logrus.Fields{"source": it.Source.ID, "lang": it.Lang}).
				Warn("no identity resolved, dropping item")
			continue
		}

		key := it.Source.FeedGroup + "_" + id
		sig, ok := signals[key]
		if !ok {
			sig = &domain.Signal{
				NoticeID:  id,
				FeedGroup: it.Source.FeedGroup,
				Category:  classify.Categorize(it.Source.FeedGroup),
				Languages: make(map[string]domain.LanguageContent),
				URLs:      make(map[string]string),
			}
			signals[key] = sig
			order = append(order, key)
		}
		if boost := it.Source.Scraping.PriorityBoost; boost > sig.BasePriority {
			sig.BasePriority = boost
		}

		if existing, seen := sig.Languages[it.Lang]; seen {
			// first sighting wins; later duplicates only fill gaps
			if existing.Title == "" {
				existing.Title = title
			}
			if existing.Body == "" {
				existing.Body = body
			}
			sig.Languages[it.Lang] = existing
		} else {
			sig.Languages[it.Lang] = domain.LanguageContent{
				Title: title,
				Body:  body,
				Link:  it.Link,
				GUID:  it.GUID,
			}
		}

		if it.Link != "" && sig.URLs[it.Lang] == "" {
			sig.URLs[it.Lang] = it.Link
		}

		// earliest-observed publish time wins; translations and
		// mirrors may lag the original
		if !it.Published.IsZero() {
			if sig.PublishedAt.IsZero() || it.Published.Before(sig.PublishedAt) {
				sig.PublishedAt = it.Published
			}
		}
	}

	out := make([]*domain.Signal, 0, len(order))
	for _, key := range order {
		sig := signals[key]
		if sig.Languages[g.anchor].Title == "" {
			g.log.WithFields(logrus.Fields{"group": sig.FeedGroup, "notice": sig.NoticeID}).
				Warn("dropping signal without anchor language title")
			continue
		}
		out = append(out, sig)
	}
	return out
}
