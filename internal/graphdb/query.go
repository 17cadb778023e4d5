package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Step struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Name          string `json:"name,omitempty"`
	Ending        string `json:"ending,omitempty"`
	Character     string `json:"character,omitempty"`
	TriggerType   string `json:"trigger_type,omitempty"`
	TriggerTarget string `json:"trigger_target,omitempty"`
}

type Hop struct {
	From   Step   `json:"from"`
	To     Step   `json:"to"`
	Handle string `json:"handle,omitempty"`
	Depth  int    `json:"depth"`
}

const maxDepth = 10

func (c *Client) ListSteps(ctx context.Context, storyID string) ([]Step, error) {
	return c.listSteps(ctx, "listing steps", `MATCH (n:Step {story_id: $story_id}) RETURN n ORDER BY n.id`, storyID)
}

// Successors walks NEXT relationships outward from stepID up to depth hops.
func (c *Client) Successors(ctx context.Context, storyID, stepID string, depth int) ([]Hop, error) {
	if depth < 1 || depth > maxDepth {
		return nil, fmt.Errorf("depth must be between 1 and %d", maxDepth)
	}

	session := c.session(ctx)
	defer session.Close(ctx)

	query := fmt.Sprintf(`
MATCH p=(start:Step {story_id: $story_id, id: $step_id})-[:NEXT*1..%d]->(:Step)
WITH p, nodes(p) AS ns, relationships(p) AS rs
UNWIND range(0, size(rs) - 1) AS idx
WITH DISTINCT ns[idx] AS hopFrom, ns[idx+1] AS hopTo, rs[idx] AS rel, idx
RETURN hopFrom, hopTo, rel.handle AS handle, idx
ORDER BY idx, hopFrom.id, hopTo.id
`, depth)

	params := map[string]any{
		"story_id": storyID,
		"step_id":  stepID,
	}

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		hops := []Hop{}
		for res.Next(ctx) {
			record := res.Record()
			hopFrom, _ := record.Get("hopFrom")
			hopTo, _ := record.Get("hopTo")
			handle, _ := record.Get("handle")
			idxValue, _ := record.Get("idx")

			fromNode, okFrom := hopFrom.(neo4j.Node)
			toNode, okTo := hopTo.(neo4j.Node)
			if !okFrom || !okTo {
				continue
			}
			idx, _ := idxValue.(int64)
			hops = append(hops, Hop{
				From:   stepFromNode(fromNode),
				To:     stepFromNode(toNode),
				Handle: toString(handle),
				Depth:  int(idx) + 1,
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return hops, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking successors: %w", err)
	}

	return result.([]Hop), nil
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func stepFromNode(node neo4j.Node) Step {
	props := node.Props
	return Step{
		ID:            toString(props["id"]),
		Type:          toString(props["type"]),
		Name:          toString(props["name"]),
		Ending:        toString(props["ending"]),
		Character:     toString(props["character"]),
		TriggerType:   toString(props["trigger_type"]),
		TriggerTarget: toString(props["trigger_target"]),
	}
}
