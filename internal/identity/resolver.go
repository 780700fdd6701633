package identity

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"govsignal-engine/internal/domain"
	"govsignal-engine/internal/text"
)

// Feed groups with agency-specific URL conventions. Everything else
// goes through the generic path-segment strategy.
var (
	weatherGroups = map[string]bool{
		"weather_warnings": true,
	}
	monetaryPressGroups = map[string]bool{
		"hkma_press":     true,
		"monetary_press": true,
	}
)

var (
	// HKMA press releases sit under .../press-releases/YYYY/MM/YYYYMMDD-N/.
	hkmaRe = regexp.MustCompile(`/(\d{8}-\d+)/?`)

	sanitizeRe = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// knownExtensions are stripped from path segments before they are used
// as identities.
var knownExtensions = []string{".htm", ".html", ".shtml", ".php", ".asp", ".aspx", ".jsp", ".pdf", ".xml"}

// genericSegments are final path segments too common to identify a
// notice.
var genericSegments = map[string]bool{
	"index":   true,
	"default": true,
	"main":    true,
}

// Resolver derives a stable notice identity from an item's link. The
// strategies run in order and the first hit wins; the digest fallback
// means every item with a link or title gets an identity.
type Resolver struct {
	log logrus.FieldLogger

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp // source pattern -> compiled, nil if invalid
}

func NewResolver(log logrus.FieldLogger) *Resolver {
	return &Resolver{log: log, patterns: make(map[string]*regexp.Regexp)}
}

// Resolve returns the notice identity for a link published by src.
// The empty string comes back only when there is nothing at all to
// work with (no link and no title).
func (r *Resolver) Resolve(link string, src *domain.FeedSource, title string) string {
	if id := r.fromPattern(link, src); id != "" {
		return id
	}
	if src != nil && weatherGroups[src.FeedGroup] {
		if id := finalSegment(link); id != "" {
			return id
		}
	}
	if src != nil && monetaryPressGroups[src.FeedGroup] {
		if id := hkmaIdentity(link); id != "" {
			return id
		}
	}
	if id := genericIdentity(link); id != "" {
		return id
	}
	return digestIdentity(link, title)
}

// fromPattern applies the source-configured extraction regexp to the
// link. A pattern that does not compile is logged once and then
// behaves as "no match".
func (r *Resolver) fromPattern(link string, src *domain.FeedSource) string {
	if src == nil || src.Scraping.IdentityPattern == "" {
		return ""
	}
	pat := src.Scraping.IdentityPattern

	r.mu.Lock()
	re, seen := r.patterns[pat]
	if !seen {
		var err error
		re, err = regexp.Compile(pat)
		if err != nil {
			re = nil
			r.log.WithFields(logrus.Fields{"source": src.ID, "pattern": pat}).
				WithError(err).Warn("invalid identity pattern, ignoring")
		}
		r.patterns[pat] = re
	}
	r.mu.Unlock()

	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(link)
	if len(m) < 2 || m[1] == "" {
		return ""
	}
	return m[1]
}

// finalSegment returns the last URL path segment with any known
// extension stripped.
func finalSegment(link string) string {
	segs := pathSegments(link)
	if len(segs) == 0 {
		return ""
	}
	return stripExtension(segs[len(segs)-1])
}

// hkmaIdentity extracts the date-sequence token HKMA embeds in press
// release paths, normalized to underscore form (20240815-3 becomes
// 20240815_3).
func hkmaIdentity(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	m := hkmaRe.FindStringSubmatch(u.Path)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "-", "_")
}

// genericIdentity uses the final path segment, or the last two joined
// when the final one is too short or too common to be meaningful.
func genericIdentity(link string) string {
	segs := pathSegments(link)
	if len(segs) == 0 {
		return ""
	}
	last := stripExtension(segs[len(segs)-1])
	if len(last) >= 3 && !genericSegments[strings.ToLower(last)] {
		return last
	}
	if len(segs) < 2 {
		return ""
	}
	joined := stripExtension(segs[len(segs)-2]) + "_" + last
	joined = sanitizeRe.ReplaceAllString(joined, "_")
	return strings.Trim(joined, "_")
}

// digestIdentity is the guaranteed last resort: a short digest of
// link and title under a fixed marker prefix.
func digestIdentity(link, title string) string {
	if link == "" && title == "" {
		return ""
	}
	return "h_" + hashPrefix(link+"|"+title)
}

func hashPrefix(s string) string {
	return text.Hash(s)[:16]
}

func pathSegments(link string) []string {
	u, err := url.Parse(link)
	if err != nil {
		return nil
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func stripExtension(seg string) string {
	lower := strings.ToLower(seg)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			return seg[:len(seg)-len(ext)]
		}
	}
	return seg
}
