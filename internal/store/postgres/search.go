package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
)

func (c *Client) SearchStories(ctx context.Context, query string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	sql := `
SELECT id, title, tags,
    ts_rank(search_vector, websearch_to_tsquery('english', $1)) AS score,
    CASE WHEN description <> '' THEN
        ts_headline('english', description, websearch_to_tsquery('english', $1),
            'MaxFragments=2, MaxWords=30, MinWords=10, StartSel=**, StopSel=**')
    ELSE '' END AS snippet
FROM stories
WHERE search_vector @@ websearch_to_tsquery('english', $1)
ORDER BY score DESC, title ASC
LIMIT 50
`

	rows, err := c.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("searching stories: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var score float32
		if err := rows.Scan(&r.ID, &r.Title, &r.Tags, &score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Score = float64(score)
		if r.Tags == nil {
			r.Tags = []string{}
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}
