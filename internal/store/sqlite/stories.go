package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

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
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `
	INSERT INTO stories (id, title, experience_name, description, tags, exported, document, source_hash, last_modified, saved_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		experience_name = excluded.experience_name,
		description = excluded.description,
		tags = excluded.tags,
		exported = excluded.exported,
		document = excluded.document,
		source_hash = excluded.source_hash,
		last_modified = excluded.last_modified,
		saved_at = datetime('now')
	`

	_, err = c.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.ExperienceName,
		doc.Description,
		string(tagsJSON),
		doc.Exported,
		string(docJSON),
		sourceHash,
		formatTime(doc.LastModified),
	)
	if err != nil {
		return fmt.Errorf("upserting story: %w", err)
	}
	c.logger.Debug("story saved", zap.String("id", doc.ID))
	return nil
}

func (c *Client) GetStory(ctx context.Context, id string) (*story.Document, error) {
	var docJSON string
	err := c.db.QueryRowContext(ctx, `SELECT document FROM stories WHERE id = ?`, id).Scan(&docJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting story: %w", err)
	}

	var doc story.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling story %s: %w", id, err)
	}
	return &doc, nil
}

func (c *Client) ListStories(ctx context.Context, tag string) ([]store.StorySummary, error) {
	query := `
	SELECT id, title, experience_name, tags, exported, last_modified
	FROM stories
	ORDER BY last_modified DESC, id
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing stories: %w", err)
	}
	defer rows.Close()

	summaries := []store.StorySummary{}
	for rows.Next() {
		var s store.StorySummary
		var tagsJSON, modified string
		if err := rows.Scan(&s.ID, &s.Title, &s.ExperienceName, &tagsJSON, &s.Exported, &modified); err != nil {
			return nil, fmt.Errorf("scanning story summary: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &s.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		if tag != "" && !slices.Contains(s.Tags, tag) {
			continue
		}
		if s.LastModified, err = parseTime(modified); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating story summaries: %w", err)
	}
	return summaries, nil
}

func (c *Client) DeleteStory(ctx context.Context, id string) (bool, error) {
	result, err := c.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting story: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

func (c *Client) GetStoryHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := c.db.QueryRowContext(ctx, `SELECT source_hash FROM stories WHERE id = ?`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting story hash: %w", err)
	}
	return hash, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
