package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction. IF NOT EXISTS keeps
	// reruns idempotent; anything destructive needs a real migration.
	ddl := `
CREATE TABLE IF NOT EXISTS stories (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL DEFAULT '',
    experience_name TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    tags            TEXT[] NOT NULL DEFAULT '{}',
    exported        BOOLEAN NOT NULL DEFAULT FALSE,
    document        JSONB NOT NULL,
    source_hash     TEXT NOT NULL DEFAULT '',
    last_modified   TIMESTAMPTZ NOT NULL,
    saved_at        TIMESTAMPTZ DEFAULT now(),
    search_vector   TSVECTOR
);

CREATE TABLE IF NOT EXISTS ending_records (
    user_id         TEXT NOT NULL,
    story_id        TEXT NOT NULL,
    endings_seen    TEXT[] NOT NULL DEFAULT '{}',
    all_endings     TEXT[] NOT NULL DEFAULT '{}',
    experience_name TEXT NOT NULL DEFAULT '',
    last_played     TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, story_id)
);

CREATE INDEX IF NOT EXISTS idx_stories_search ON stories USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_stories_tags ON stories USING GIN (tags);
CREATE INDEX IF NOT EXISTS idx_stories_last_modified ON stories (last_modified);
CREATE INDEX IF NOT EXISTS idx_ending_records_story ON ending_records (story_id);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
