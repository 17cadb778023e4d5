package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
)

func (c *Client) GetEndingRecord(ctx context.Context, userID, storyID string) (*store.EndingRecord, error) {
	query := `
	SELECT user_id, story_id, endings_seen, all_endings, experience_name, last_played
	FROM ending_records
	WHERE user_id = ? AND story_id = ?
	`
	rec, err := scanEndingRecord(c.db.QueryRowContext(ctx, query, userID, storyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting ending record: %w", err)
	}
	return rec, nil
}

func (c *Client) SaveEndingRecord(ctx context.Context, rec *store.EndingRecord) error {
	seenJSON, err := json.Marshal(nonNil(rec.EndingsSeen))
	if err != nil {
		return fmt.Errorf("marshaling endings seen: %w", err)
	}
	allJSON, err := json.Marshal(nonNil(rec.AllEndings))
	if err != nil {
		return fmt.Errorf("marshaling all endings: %w", err)
	}

	query := `
	INSERT INTO ending_records (user_id, story_id, endings_seen, all_endings, experience_name, last_played)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, story_id) DO UPDATE SET
		endings_seen = excluded.endings_seen,
		all_endings = excluded.all_endings,
		experience_name = excluded.experience_name,
		last_played = excluded.last_played
	`
	_, err = c.db.ExecContext(ctx, query,
		rec.UserID,
		rec.StoryID,
		string(seenJSON),
		string(allJSON),
		rec.ExperienceName,
		formatTime(rec.LastPlayed),
	)
	if err != nil {
		return fmt.Errorf("upserting ending record: %w", err)
	}
	return nil
}

func (c *Client) ListEndingRecords(ctx context.Context, userID string) ([]store.EndingRecord, error) {
	query := `
	SELECT user_id, story_id, endings_seen, all_endings, experience_name, last_played
	FROM ending_records
	WHERE user_id = ?
	ORDER BY last_played DESC, story_id
	`
	rows, err := c.db.QueryContext(ctx, query, userID)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEndingRecord(row scanner) (*store.EndingRecord, error) {
	var rec store.EndingRecord
	var seenJSON, allJSON, played string
	if err := row.Scan(&rec.UserID, &rec.StoryID, &seenJSON, &allJSON, &rec.ExperienceName, &played); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(seenJSON), &rec.EndingsSeen); err != nil {
		return nil, fmt.Errorf("unmarshaling endings seen: %w", err)
	}
	if err := json.Unmarshal([]byte(allJSON), &rec.AllEndings); err != nil {
		return nil, fmt.Errorf("unmarshaling all endings: %w", err)
	}
	var err error
	if rec.LastPlayed, err = parseTime(played); err != nil {
		return nil, err
	}
	return &rec, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
