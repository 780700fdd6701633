package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"govsignal-engine/internal/domain"
)

// Language suffixes used by bulk documents, in emission order. EN
// first keeps unit output deterministic.
var bulkLangs = []struct {
	suffix string
	lang   string
}{
	{"en", domain.LangEN},
	{"tc", domain.LangTC},
	{"sc", domain.LangSC},
}

// hkLoc anchors unzoned bulk timestamps; government bulk documents
// publish local wall-clock times.
var hkLoc = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Hong_Kong")
	if err != nil {
		return time.FixedZone("HKT", 8*3600)
	}
	return loc
}()

var bulkTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02 Jan 2006 15:04:05",
}

// fetchBulk pulls one bulk structured document: repeated message
// blocks carrying language-suffixed title/detail fields around a
// shared link and publish date. Parsing is field-level and tolerant;
// unknown surrounding markup is ignored.
func (f *Fetcher) fetchBulk(ctx context.Context, src *domain.FeedSource, rawURL string) ([]domain.RawItem, error) {
	if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	req.Header.Set("User-Agent", f.ua)
	f.addValidators(ctx, req, rawURL)

	res, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get bulk document: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotModified {
		return nil, nil
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("bulk document status %d", res.StatusCode)
	}
	f.saveValidators(ctx, rawURL, res)

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse bulk document: %w", err)
	}

	var items []domain.RawItem
	doc.Find("message").Each(func(_ int, block *goquery.Selection) {
		link := blockLink(block)
		published := parseBulkTime(firstText(block, "publishdate", "pubdate", "date"))

		for _, bl := range bulkLangs {
			title := strings.TrimSpace(block.Find("title_" + bl.suffix).First().Text())
			body := strings.TrimSpace(firstText(block, "detail_"+bl.suffix, "content_"+bl.suffix))
			if title == "" && body == "" {
				continue
			}
			items = append(items, domain.RawItem{
				GUID:      link,
				Title:     title,
				Link:      link,
				Body:      body,
				Lang:      bl.lang,
				Published: published,
				Source:    src,
			})
		}
	})
	return items, nil
}

// blockLink extracts the shared URL of a message block. The html
// parser underneath goquery treats <link> as a void element and drops
// its text, so the contract field is <url>; a link href attribute is
// accepted as a fallback.
func blockLink(block *goquery.Selection) string {
	if s := firstText(block, "url"); s != "" {
		return s
	}
	if href, ok := block.Find("link").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

// firstText returns the text of the first selector that matches a
// non-empty element.
func firstText(block *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if s := strings.TrimSpace(block.Find(sel).First().Text()); s != "" {
			return s
		}
	}
	return ""
}

func parseBulkTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	for _, layout := range bulkTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, hkLoc); err == nil {
			return t
		}
	}
	return time.Time{}
}
