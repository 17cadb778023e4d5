package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func (c *Client) SaveStory(ctx context.Context, doc *story.Document, sourceHash string) error {
	if doc.ID == "" {
		return fmt.Errorf("saving story: missing id")
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling story: %w", err)
	}
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
INSERT INTO stories (id, title, experience_name, description, tags, exported, document, source_hash, last_modified, saved_at, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(),
    setweight(to_tsvector('simple', coalesce($2, '') || ' ' || coalesce($3, '')), 'A') ||
    setweight(to_tsvector('english', coalesce(array_to_string($5::text[], ' '), '')), 'B') ||
    setweight(to_tsvector('english', coalesce($4, '')), 'C')
)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    experience_name = EXCLUDED.experience_name,
    description = EXCLUDED.description,
    tags = EXCLUDED.tags,
    exported = EXCLUDED.exported,
    document = EXCLUDED.document,
    source_hash = EXCLUDED.source_hash,
    last_modified = EXCLUDED.last_modified,
    saved_at = now(),
    search_vector = EXCLUDED.search_vector
`

	_, err = c.pool.Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.ExperienceName,
		doc.Description,
		tags,
		doc.Exported,
		docJSON,
		sourceHash,
		doc.LastModified,
	)
	if err != nil {
		return fmt.Errorf("upserting story: %w", err)
	}
	c.logger.Debug("story saved", zap.String("id", doc.ID))
	return nil
}

func (c *Client) GetStory(ctx context.Context, id string) (*story.Document, error) {
	var docJSON []byte
	err := c.pool.QueryRow(ctx, `SELECT document FROM stories WHERE id = $1`, id).Scan(&docJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}

	var doc story.Document
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling story %s: %w", id, err)
	}
	return &doc, nil
}

func (c *Client) ListStories(ctx context.Context, tag string) ([]store.StorySummary, error) {
	query := `
SELECT id, title, experience_name, tags, exported, last_modified
FROM stories
WHERE ($1 = '' OR $1 = ANY(tags))
ORDER BY last_modified DESC, id
`

	rows, err := c.pool.Query(ctx, query, tag)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	summaries := []store.StorySummary{}
	for rows.Next() {
		var s store.StorySummary
		if err := rows.Scan(&s.ID, &s.Title, &s.ExperienceName, &s.Tags, &s.Exported, &s.LastModified); err != nil {
			return nil, fmt.Errorf("scanning story summary: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating story summaries: %w", err)
	}
	return summaries, nil
}

func (c *Client) DeleteStory(ctx context.Context, id string) (bool, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting story: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) GetStoryHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := c.pool.QueryRow(ctx, `SELECT source_hash FROM stories WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting story hash: %w", err)
	}
	return hash, nil
}
