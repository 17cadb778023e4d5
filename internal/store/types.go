package store

import (
	"slices"
	"time"
)

type StorySummary struct {
	ID             string
	Title          string
	ExperienceName string
	Tags           []string
	Exported       bool
	LastModified   time.Time
}

type SearchResult struct {
	ID      string
	Title   string
	Tags    []string
	Score   float64
	Snippet string
}

// EndingRecord tracks the endings one user has reached in one story.
// EndingsSeen never holds duplicates.
type EndingRecord struct {
	UserID         string    `json:"userEmail"`
	StoryID        string    `json:"storyId"`
	EndingsSeen    []string  `json:"endingsSeen"`
	AllEndings     []string  `json:"allEndings"`
	ExperienceName string    `json:"experienceName"`
	LastPlayed     time.Time `json:"lastPlayed"`
}

// HasSeen reports whether ending is in EndingsSeen.
func (r *EndingRecord) HasSeen(ending string) bool {
	return slices.Contains(r.EndingsSeen, ending)
}
