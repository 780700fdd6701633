package domain

import "time"

// LanguageContent is one language rendition of a grouped signal.
type LanguageContent struct {
	Title string
	Body  string
	Link  string
	GUID  string
}

// Signal is a multilingual notice assembled from raw items that share
// a notice identity within one feed group. BasePriority is the
// largest priority boost among the sources that contributed to it.
type Signal struct {
	NoticeID     string
	FeedGroup    string
	Category     string
	BasePriority int
	PublishedAt  time.Time
	Languages    map[string]LanguageContent
	URLs         map[string]string
}

// HasAnchor reports whether the anchor language rendition is present.
func (s *Signal) HasAnchor(anchor string) bool {
	_, ok := s.Languages[anchor]
	return ok
}
