package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ListUnreachableSteps returns steps no path from the story's begin step
// reaches.
func (c *Client) ListUnreachableSteps(ctx context.Context, storyID string) ([]Step, error) {
	return c.listSteps(ctx, "listing unreachable steps", `
MATCH (n:Step {story_id: $story_id})
WHERE n.type <> 'begin'
  AND NOT EXISTS {
    MATCH (:Step {story_id: $story_id, type: 'begin'})-[:NEXT*]->(n)
  }
RETURN n
ORDER BY n.id
`, storyID)
}

// ListDeadEnds returns non-end steps without an outgoing NEXT.
func (c *Client) ListDeadEnds(ctx context.Context, storyID string) ([]Step, error) {
	return c.listSteps(ctx, "listing dead ends", `
MATCH (n:Step {story_id: $story_id})
WHERE n.type <> 'end' AND NOT (n)-[:NEXT]->()
RETURN n
ORDER BY n.id
`, storyID)
}

func (c *Client) listSteps(ctx context.Context, op, query, storyID string) ([]Step, error) {
	session := c.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"story_id": storyID})
		if err != nil {
			return nil, err
		}
		steps := []Step{}
		for res.Next(ctx) {
			value, _ := res.Record().Get("n")
			node, ok := value.(neo4j.Node)
			if !ok {
				continue
			}
			steps = append(steps, stepFromNode(node))
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return steps, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result.([]Step), nil
}
