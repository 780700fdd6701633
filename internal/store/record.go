package store

import "time"

// Processing status of a persisted signal. The state machine is
// absent -> content_partial -> content_complete; a record never moves
// backward and is never deleted here.
const (
	StatusComplete = "content_complete"
	StatusPartial  = "content_partial"
)

// MetaBlock is the meta section of a signal's content document.
type MetaBlock struct {
	NoticeID     string            `json:"noticeId"`
	URLs         map[string]string `json:"urls,omitempty"`
	PublishedAt  time.Time         `json:"publishedAt"`
	DiscoveredAt time.Time         `json:"discoveredAt"`
}

// LanguageDoc is one language section of a signal's content document.
type LanguageDoc struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ContentHash string    `json:"contentHash"`
	WordCount   int       `json:"wordCount"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// ContentDoc is the JSON document held in the content column.
type ContentDoc struct {
	Meta      MetaBlock              `json:"meta"`
	Languages map[string]LanguageDoc `json:"languages"`
}

// SignalRecord is one persisted signal as read back from the store.
type SignalRecord struct {
	SourceIdentifier string     `json:"sourceIdentifier"`
	FeedGroup        string     `json:"feedGroup"`
	Category         string     `json:"category"`
	Content          ContentDoc `json:"content"`
	BasePriority     int        `json:"basePriority"`
	PriorityScore    int        `json:"priorityScore"`
	ProcessingStatus string     `json:"processingStatus"`
	ScrapingAttempts int        `json:"scrapingAttempts"`
	LanguageCount    int        `json:"languageCount"`
	PublishedAt      time.Time  `json:"publishedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
