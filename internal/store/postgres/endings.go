package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
)

const endingColumns = `user_id, story_id, endings_seen, all_endings, experience_name, last_played`

func (c *Client) GetEndingRecord(ctx context.Context, userID, storyID string) (*store.EndingRecord, error) {
	query := `SELECT ` + endingColumns + ` FROM ending_records WHERE user_id = $1 AND story_id = $2`
	rec, err := scanEndingRecord(c.pool.QueryRow(ctx, query, userID, storyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting ending record: %w", err)
	}
	return rec, nil
}

func (c *Client) SaveEndingRecord(ctx context.Context, rec *store.EndingRecord) error {
	query := `
INSERT INTO ending_records (` + endingColumns + `)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, story_id) DO UPDATE SET
    endings_seen = EXCLUDED.endings_seen,
    all_endings = EXCLUDED.all_endings,
    experience_name = EXCLUDED.experience_name,
    last_played = EXCLUDED.last_played
`
	_, err := c.pool.Exec(ctx, query,
		rec.UserID,
		rec.StoryID,
		nonNil(rec.EndingsSeen),
		nonNil(rec.AllEndings),
		rec.ExperienceName,
		rec.LastPlayed,
	)
	if err != nil {
		return fmt.Errorf("upserting ending record: %w", err)
	}
	return nil
}

func (c *Client) ListEndingRecords(ctx context.Context, userID string) ([]store.EndingRecord, error) {
	query := `SELECT ` + endingColumns + ` FROM ending_records WHERE user_id = $1 ORDER BY last_played DESC, story_id`
	rows, err := c.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing ending records: %w", err)
	}
	defer rows.Close()

	records := []store.EndingRecord{}
	for rows.Next() {
		rec, err := scanEndingRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ending record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ending records: %w", err)
	}
	return records, nil
}

func scanEndingRecord(row pgx.Row) (*store.EndingRecord, error) {
	var rec store.EndingRecord
	err := row.Scan(&rec.UserID, &rec.StoryID, &rec.EndingsSeen, &rec.AllEndings, &rec.ExperienceName, &rec.LastPlayed)
	if err != nil {
		return nil, err
	}
	rec.EndingsSeen = nonNil(rec.EndingsSeen)
	rec.AllEndings = nonNil(rec.AllEndings)
	return &rec, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
