package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"govsignal-engine/internal/domain"
)

// fetchFeed pulls one syndication feed (RSS or Atom) and maps its
// items to raw items in the given language. Titles and bodies stay
// raw here; normalization happens at grouping time. A 304 reply is a
// success with no items.
func (f *Fetcher) fetchFeed(ctx context.Context, src *domain.FeedSource, lang, rawURL string) ([]domain.RawItem, error) {
	if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.ua)
	f.addValidators(ctx, req, rawURL)

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotModified {
		return nil, nil
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("feed status %d", res.StatusCode)
	}
	f.saveValidators(ctx, rawURL, res)

	feed, err := gofeed.NewParser().Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		link := strings.TrimSpace(it.Link)
		guid := strings.TrimSpace(it.GUID)
		if guid == "" {
			guid = link
		}

		item := domain.RawItem{
			GUID:   guid,
			Title:  it.Title,
			Link:   link,
			Body:   itemBody(it),
			Lang:   lang,
			Source: src,
		}
		if it.PublishedParsed != nil {
			item.Published = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			item.Published = *it.UpdatedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// itemBody prefers content:encoded over the plain description, which
// several departments leave empty.
func itemBody(it *gofeed.Item) string {
	if it.Content != "" {
		return it.Content
	}
	return it.Description
}
