package domain

import "time"

// RawItem is one notice in one language as pulled off the wire, before
// grouping. Source points back at the descriptor that produced it.
type RawItem struct {
	GUID      string
	Title     string
	Link      string
	Body      string
	Lang      string
	Published time.Time
	Source    *FeedSource
}
