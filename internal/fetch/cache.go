package fetch

import (
	"context"
	"net/http"
)

// ConditionalCache remembers ETag / Last-Modified validators between
// runs so unchanged upstreams can answer 304 instead of a full body.
// A nil cache disables conditional requests.
type ConditionalCache interface {
	Load(ctx context.Context, url string) (etag, lastModified string, err error)
	Save(ctx context.Context, url, etag, lastModified string) error
}

// addValidators attaches cached validators to an outgoing request.
// Cache trouble never blocks a fetch.
func (f *Fetcher) addValidators(ctx context.Context, req *http.Request, url string) {
	if f.cache == nil {
		return
	}
	etag, lastMod, err := f.cache.Load(ctx, url)
	if err != nil {
		f.log.WithError(err).WithField("url", url).Debug("validator load failed")
		return
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}
}

func (f *Fetcher) saveValidators(ctx context.Context, url string, res *http.Response) {
	if f.cache == nil {
		return
	}
	etag := res.Header.Get("ETag")
	lastMod := res.Header.Get("Last-Modified")
	if etag == "" && lastMod == "" {
		return
	}
	if err := f.cache.Save(ctx, url, etag, lastMod); err != nil {
		f.log.WithError(err).WithField("url", url).Debug("validator save failed")
	}
}
