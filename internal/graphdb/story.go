package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

type PushResult struct {
	Steps   int
	Links   int
	Removed int64
}

// PushStory mirrors doc as (:Story)-[:HAS_STEP]->(:Step) nodes joined by
// [:NEXT] relationships. Steps of the story that are no longer in doc are
// detached and deleted. The whole push runs in one write transaction.
func (c *Client) PushStory(ctx context.Context, doc *story.Document, sourceHash string) (PushResult, error) {
	if doc == nil || doc.ID == "" {
		return PushResult{}, fmt.Errorf("pushing story: missing id")
	}

	steps := make([]any, 0, len(doc.Nodes))
	ids := make([]string, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		steps = append(steps, stepParams(n))
		ids = append(ids, n.ID)
	}
	links := make([]any, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		links = append(links, map[string]any{
			"id":     e.ID,
			"source": e.Source,
			"target": e.Target,
			"handle": e.SourceHandle,
		})
	}

	params := map[string]any{
		"story_id":        doc.ID,
		"title":           doc.Title,
		"experience_name": doc.ExperienceName,
		"source_hash":     sourceHash,
		"steps":           steps,
		"links":           links,
		"ids":             ids,
	}

	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
MERGE (s:Story {id: $story_id})
SET s.title = $title,
    s.experience_name = $experience_name,
    s.source_hash = $source_hash,
    s.pushed_at = datetime()
WITH s
UNWIND $steps AS step
MERGE (n:Step {story_id: $story_id, id: step.id})
SET n.type = step.type,
    n.name = step.name,
    n.ending = step.ending,
    n.character = step.character,
    n.trigger_type = step.trigger_type,
    n.trigger_target = step.trigger_target
MERGE (s)-[:HAS_STEP]->(n)
`, params); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
MATCH (:Step {story_id: $story_id})-[r:NEXT]->()
DELETE r
`, params); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
UNWIND $links AS link
MATCH (a:Step {story_id: $story_id, id: link.source})
MATCH (b:Step {story_id: $story_id, id: link.target})
CREATE (a)-[:NEXT {edge_id: link.id, handle: link.handle}]->(b)
`, params); err != nil {
			return nil, err
		}

		res, err := tx.Run(ctx, `
MATCH (n:Step {story_id: $story_id})
WHERE NOT n.id IN $ids
DETACH DELETE n
RETURN count(n) AS deleted
`, params)
		if err != nil {
			return nil, err
		}
		var deleted int64
		if res.Next(ctx) {
			value, _ := res.Record().Get("deleted")
			deleted, _ = value.(int64)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return deleted, nil
	})
	if err != nil {
		return PushResult{}, fmt.Errorf("pushing story %s: %w", doc.ID, err)
	}

	out := PushResult{Steps: len(steps), Links: len(links), Removed: result.(int64)}
	c.logger.Info("story pushed to graph",
		zap.String("story", doc.ID),
		zap.Int("steps", out.Steps),
		zap.Int("links", out.Links),
		zap.Int64("removed", out.Removed),
	)
	return out, nil
}

func stepParams(n story.Node) map[string]any {
	p := map[string]any{
		"id":             n.ID,
		"type":           string(n.Type),
		"name":           n.Data.Name,
		"ending":         nil,
		"character":      nil,
		"trigger_type":   nil,
		"trigger_target": nil,
	}
	if n.Type == story.NodeEnd {
		p["ending"] = n.Data.EndingID
	}
	if n.Data.Character != nil {
		p["character"] = n.Data.Character.Name
	}
	if t := n.Data.EntryTrigger; t != nil && t.Type != "" {
		p["trigger_type"] = t.Type
		p["trigger_target"] = t.Name
	}
	return p
}

// StoryHash returns the source hash recorded by the last push, or "" when
// the story has never been pushed.
func (c *Client) StoryHash(ctx context.Context, storyID string) (string, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (s:Story {id: $story_id}) RETURN s.source_hash AS source_hash`,
			map[string]any{"story_id": storyID})
		if err != nil {
			return nil, err
		}
		hash := ""
		if res.Next(ctx) {
			value, _ := res.Record().Get("source_hash")
			hash = toString(value)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return hash, nil
	})
	if err != nil {
		return "", fmt.Errorf("query story hash: %w", err)
	}
	return result.(string), nil
}

// DeleteStory removes the story node and all of its steps.
func (c *Client) DeleteStory(ctx context.Context, storyID string) (int64, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
OPTIONAL MATCH (n:Step {story_id: $story_id})
DETACH DELETE n
WITH count(n) AS deleted
OPTIONAL MATCH (s:Story {id: $story_id})
DETACH DELETE s
RETURN deleted
`, map[string]any{"story_id": storyID})
		if err != nil {
			return nil, err
		}
		var deleted int64
		if res.Next(ctx) {
			value, _ := res.Record().Get("deleted")
			deleted, _ = value.(int64)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return deleted, nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting story %s from graph: %w", storyID, err)
	}
	return result.(int64), nil
}
