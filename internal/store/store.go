// Package store persists story documents and per-user ending records.
// Backends live in the postgres and sqlite subpackages and are chosen by DSN
// scheme.
//
// Getters return nil and no error when the row does not exist. Saves are
// upserts, so concurrent writers to the same story resolve last-write-wins.
package store

import (
	"context"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveStory(ctx context.Context, doc *story.Document, sourceHash string) error
	GetStory(ctx context.Context, id string) (*story.Document, error)
	ListStories(ctx context.Context, tag string) ([]StorySummary, error)
	DeleteStory(ctx context.Context, id string) (bool, error)
	GetStoryHash(ctx context.Context, id string) (string, error)
	SearchStories(ctx context.Context, query string) ([]SearchResult, error)

	GetEndingRecord(ctx context.Context, userID, storyID string) (*EndingRecord, error)
	SaveEndingRecord(ctx context.Context, rec *EndingRecord) error
	ListEndingRecords(ctx context.Context, userID string) ([]EndingRecord, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
