package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/store"
	"govsignal-engine/internal/text"
)

// Gateway turns grouped Signals into persisted records. Records are
// created on first sight of an identity and merged afterwards; the
// gateway never deletes and never lets a record lose content it
// already has.
type Gateway struct {
	db     *sql.DB
	anchor string
	log    logrus.FieldLogger
}

func New(db *sql.DB, anchor string, log logrus.FieldLogger) *Gateway {
	return &Gateway{db: db, anchor: anchor, log: log}
}

// Persist writes one signal, merging with any existing record for the
// same sourceIdentifier. Returns whether a new record was created.
func (g *Gateway) Persist(ctx context.Context, sig *domain.Signal) (bool, error) {
	sourceID := sig.FeedGroup + "_" + sig.NoticeID
	now := time.Now().UTC()

	doc := store.ContentDoc{
		Meta: store.MetaBlock{
			NoticeID:     sig.NoticeID,
			URLs:         sig.URLs,
			PublishedAt:  sig.PublishedAt,
			DiscoveredAt: now,
		},
		Languages: make(map[string]store.LanguageDoc, len(sig.Languages)),
	}
	for lang, lc := range sig.Languages {
		doc.Languages[lang] = store.LanguageDoc{
			Title:       lc.Title,
			Body:        lc.Body,
			ContentHash: text.Hash(lc.Title + "\n" + lc.Body),
			WordCount:   text.WordCount(lc.Title + " " + lc.Body),
			ScrapedAt:   now,
		}
	}

	created := false
	existing, err := store.GetSignal(ctx, g.db, sourceID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		created = true
	case err != nil:
		return false, fmt.Errorf("load existing signal: %w", err)
	default:
		mergeContent(&doc, existing.Content)
	}

	status := store.StatusPartial
	if anchor := doc.Languages[g.anchor]; anchor.Title != "" && anchor.Body != "" {
		status = store.StatusComplete
	}

	up := store.SignalUpsert{
		SourceIdentifier: sourceID,
		FeedGroup:        sig.FeedGroup,
		Category:         sig.Category,
		Content:          doc,
		BasePriority:     sig.BasePriority,
		ProcessingStatus: status,
		LanguageCount:    len(doc.Languages),
		PublishedAt:      doc.Meta.PublishedAt,
	}
	if err := store.UpsertSignal(ctx, g.db, up); err != nil {
		return false, err
	}

	g.log.WithFields(logrus.Fields{
		"signal":  sourceID,
		"status":  status,
		"langs":   len(doc.Languages),
		"created": created,
	}).Debug("signal persisted")
	return created, nil
}

// mergeContent folds the previous record's content into the freshly
// built document. Language blocks the new run did not see are kept,
// and within a block a run that saw less than the record already has
// never erases fields. Blocks whose merged hash is unchanged keep
// their original scrape time so the digest stays useful for change
// detection. First-sight metadata is preserved.
func mergeContent(doc *store.ContentDoc, prev store.ContentDoc) {
	for lang, prevBlock := range prev.Languages {
		newBlock, ok := doc.Languages[lang]
		if !ok {
			doc.Languages[lang] = prevBlock
			continue
		}
		if newBlock.Title == "" {
			newBlock.Title = prevBlock.Title
		}
		if newBlock.Body == "" {
			newBlock.Body = prevBlock.Body
		}
		newBlock.ContentHash = text.Hash(newBlock.Title + "\n" + newBlock.Body)
		newBlock.WordCount = text.WordCount(newBlock.Title + " " + newBlock.Body)
		if newBlock.ContentHash == prevBlock.ContentHash {
			doc.Languages[lang] = prevBlock
			continue
		}
		doc.Languages[lang] = newBlock
	}

	if !prev.Meta.DiscoveredAt.IsZero() {
		doc.Meta.DiscoveredAt = prev.Meta.DiscoveredAt
	}
	if !prev.Meta.PublishedAt.IsZero() {
		if doc.Meta.PublishedAt.IsZero() || prev.Meta.PublishedAt.Before(doc.Meta.PublishedAt) {
			doc.Meta.PublishedAt = prev.Meta.PublishedAt
		}
	}
	for lang, u := range prev.Meta.URLs {
		if doc.Meta.URLs == nil {
			doc.Meta.URLs = make(map[string]string)
		}
		if doc.Meta.URLs[lang] == "" {
			doc.Meta.URLs[lang] = u
		}
	}
}
