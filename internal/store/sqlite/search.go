package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
)

func (c *Client) SearchStories(ctx context.Context, query string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	ftsQuery := convertWebsearchToFTS5(query)

	sqlQuery := `
	SELECT s.id, s.title, s.tags,
		   bm25(stories_fts, 10.0, 10.0, 4.0, 1.0) AS score,
		   snippet(stories_fts, 3, '**', '**', '...', 30) AS snippet
	FROM stories_fts
	JOIN stories s ON stories_fts.rowid = s.rowid
	WHERE stories_fts MATCH ?
	ORDER BY score, s.title ASC
	LIMIT 50
	`

	rows, err := c.db.QueryContext(ctx, sqlQuery, ftsQuery)
	if err != nil {
		return nil, fmt.Errorf("searching stories: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var tagsJSON string
		if err := rows.Scan(&r.ID, &r.Title, &tagsJSON, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		if r.Tags == nil {
			r.Tags = []string{}
		}
		// bm25 ranks better matches lower; flip it so higher is better.
		r.Score = -r.Score
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}
	return results, nil
}

// convertWebsearchToFTS5 rewrites a web-search style query (implicit AND,
// "-term" negation, quoted phrases) into FTS5 MATCH syntax.
func convertWebsearchToFTS5(query string) string {
	var result strings.Builder
	var inQuote bool
	var current strings.Builder

	flushToken := func() {
		token := current.String()
		current.Reset()
		if token == "" {
			return
		}

		upper := strings.ToUpper(token)
		switch upper {
		case "AND", "OR", "NOT":
			if result.Len() > 0 {
				result.WriteString(" ")
			}
			result.WriteString(upper)
			return
		}

		if result.Len() > 0 {
			switch lastWord(result.String()) {
			case "AND", "OR", "NOT", "":
				result.WriteString(" ")
			default:
				result.WriteString(" AND ")
			}
		}

		if negated, ok := strings.CutPrefix(token, "-"); ok && negated != "" {
			result.WriteString("NOT ")
			result.WriteString(negated)
			return
		}
		result.WriteString(token)
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '"':
			if inQuote {
				inQuote = false
				token := current.String()
				current.Reset()
				if token != "" {
					if result.Len() > 0 {
						result.WriteString(" AND ")
					}
					result.WriteString(`"`)
					result.WriteString(token)
					result.WriteString(`"`)
				}
			} else {
				flushToken()
				inQuote = true
			}
		case inQuote:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t':
			flushToken()
		default:
			current.WriteByte(ch)
		}
	}

	flushToken()

	return result.String()
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
