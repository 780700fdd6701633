package text

import (
	"regexp"
	"strings"
)

var (
	tagRe = regexp.MustCompile(`<[^>]*>`)
	wsRe  = regexp.MustCompile(`\s+`)

	// The entity set government feeds actually emit. A single-pass
	// replacer keeps double-encoded text (&amp;lt;) literal.
	entities = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
	)
)

// Normalize flattens feed markup to plain text. CDATA wrappers must go
// before tag stripping or the tag regexp swallows the wrapped text up
// to the closing marker. Entities decode after tags so &lt;b&gt; stays
// literal. Idempotent on already-plain text.
func Normalize(raw string) string {
	s := strings.ReplaceAll(raw, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	s = tagRe.ReplaceAllString(s, " ")
	s = entities.Replace(s)
	return Collapse(s)
}

// Collapse squeezes whitespace runs to single spaces and trims.
func Collapse(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
