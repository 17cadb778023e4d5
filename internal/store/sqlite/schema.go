package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS stories (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL DEFAULT '',
		experience_name TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		tags            TEXT NOT NULL DEFAULT '[]',
		exported        INTEGER NOT NULL DEFAULT 0,
		document        TEXT NOT NULL,
		source_hash     TEXT NOT NULL DEFAULT '',
		last_modified   TEXT NOT NULL,
		saved_at        TEXT DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS ending_records (
		user_id         TEXT NOT NULL,
		story_id        TEXT NOT NULL,
		endings_seen    TEXT NOT NULL DEFAULT '[]',
		all_endings     TEXT NOT NULL DEFAULT '[]',
		experience_name TEXT NOT NULL DEFAULT '',
		last_played     TEXT NOT NULL,
		PRIMARY KEY (user_id, story_id)
	);

	CREATE INDEX IF NOT EXISTS idx_stories_last_modified ON stories (last_modified);
	CREATE INDEX IF NOT EXISTS idx_ending_records_story ON ending_records (story_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS stories_fts USING fts5(
		title,
		experience_name,
		tags,
		description,
		content=stories,
		content_rowid=rowid
	);

	CREATE TRIGGER IF NOT EXISTS stories_ai AFTER INSERT ON stories BEGIN
		INSERT INTO stories_fts(rowid, title, experience_name, tags, description)
		VALUES (new.rowid, new.title, new.experience_name, new.tags, new.description);
	END;

	CREATE TRIGGER IF NOT EXISTS stories_ad AFTER DELETE ON stories BEGIN
		INSERT INTO stories_fts(stories_fts, rowid, title, experience_name, tags, description)
		VALUES ('delete', old.rowid, old.title, old.experience_name, old.tags, old.description);
	END;

	CREATE TRIGGER IF NOT EXISTS stories_au AFTER UPDATE ON stories BEGIN
		INSERT INTO stories_fts(stories_fts, rowid, title, experience_name, tags, description)
		VALUES ('delete', old.rowid, old.title, old.experience_name, old.tags, old.description);
		INSERT INTO stories_fts(rowid, title, experience_name, tags, description)
		VALUES (new.rowid, new.title, new.experience_name, new.tags, new.description);
	END;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}

// splitStatements splits on lines ending in ';'. Trigger bodies span several
// lines and end with "END;", which keeps them whole.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	depth := 0

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		upper := strings.ToUpper(stripped)
		if strings.HasSuffix(upper, " BEGIN") {
			depth++
			continue
		}
		if depth > 0 {
			if upper == "END;" {
				depth--
			} else {
				continue
			}
		}
		if depth == 0 && strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}
	return statements
}
