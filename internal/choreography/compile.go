// Package choreography compiles an editable story graph into the linear,
// goToStep-linked step list consumed by the player.
package choreography

import (
	"strconv"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// Input is everything the compiler reads. Catalogs are passed explicitly.
type Input struct {
	Nodes       []story.Node
	Edges       []story.Edge
	Characters  []story.Character
	Locations   []story.Location
	Title       string
	Description string
	Metadata    Metadata
}

// InputFromDocument collects the compiler input from a persisted story.
func InputFromDocument(doc *story.Document) Input {
	title := doc.ExperienceName
	if title == "" {
		title = doc.Title
	}
	return Input{
		Nodes:       doc.Nodes,
		Edges:       doc.Edges,
		Characters:  doc.Characters,
		Locations:   doc.Locations,
		Title:       title,
		Description: doc.Description,
	}
}

type compiler struct {
	edges      []story.Edge
	characters map[string]story.Character
	locations  map[string]story.Location
}

func newCompiler(edges []story.Edge, characters []story.Character, locations []story.Location) *compiler {
	c := &compiler{
		edges:      edges,
		characters: make(map[string]story.Character, len(characters)),
		locations:  make(map[string]story.Location, len(locations)),
	}
	for _, character := range characters {
		c.characters[character.ID] = character
	}
	for _, location := range locations {
		c.locations[location.ID] = location
	}
	return c
}

// Compile emits one step per node, in node order. Nodes whose type has no
// step mapping are skipped and their ids returned.
func Compile(in Input) (*Choreography, []string) {
	c := newCompiler(in.Edges, in.Characters, in.Locations)

	metadata := in.Metadata
	metadata.Description = in.Description
	out := &Choreography{
		ExperienceName: in.Title,
		Metadata:       metadata,
		Story:          make([]Step, 0, len(in.Nodes)),
	}

	var skipped []string
	for _, node := range in.Nodes {
		step, ok := c.compile(node)
		if !ok {
			skipped = append(skipped, node.ID)
			continue
		}
		out.Story = append(out.Story, step)
	}
	return out, skipped
}

// CompileNode compiles a single node against the given edges, without
// catalogs. ok is false for unmapped node types.
func CompileNode(node story.Node, edges []story.Edge) (Step, bool) {
	return newCompiler(edges, nil, nil).compile(node)
}

func (c *compiler) compile(node story.Node) (Step, bool) {
	data := node.Data
	switch node.Type {
	case story.NodeBegin:
		return Step{
			ID:       node.ID,
			Action:   ActionBegin,
			Location: cloneString(data.Location),
			GoToStep: c.firstEdgeTarget(node.ID),
		}, true

	case story.NodeText:
		return Step{
			ID:       node.ID,
			Action:   ActionText,
			Actor:    c.actor(data.Character),
			Trigger:  c.trigger(data.EntryTrigger),
			Data:     Data{Text: data.Name},
			GoToStep: c.firstEdgeTarget(node.ID),
		}, true

	case story.NodeQuiz, story.NodeChoice:
		text := data.Question
		if text == "" {
			text = data.Name
		}
		options := make([]Option, len(data.Answers))
		for i, answer := range data.Answers {
			options[i] = Option{Label: answer, GoToStep: c.handleTarget(node.ID, strconv.Itoa(i))}
		}
		return Step{
			ID:      node.ID,
			Action:  ActionChoice,
			Actor:   c.actor(data.Character),
			Trigger: c.trigger(data.EntryTrigger),
			Data:    Data{Text: text, Options: options},
		}, true

	case story.NodeEnd:
		ending := data.EndingID
		if ending == "" {
			ending = DefaultEnding
		}
		return Step{ID: node.ID, Action: ActionEnd, Data: Data{Ending: ending}}, true
	}
	return Step{}, false
}

func (c *compiler) firstEdgeTarget(source string) *string {
	for _, edge := range c.edges {
		if edge.Source == source {
			target := edge.Target
			return &target
		}
	}
	return nil
}

func (c *compiler) handleTarget(source, handle string) *string {
	for _, edge := range c.edges {
		if edge.Source == source && edge.SourceHandle == handle {
			target := edge.Target
			return &target
		}
	}
	return nil
}

// actor prefers the catalog entry over the copy embedded in the node.
func (c *compiler) actor(embedded *story.Character) *Actor {
	if embedded == nil {
		return nil
	}
	if live, ok := c.characters[embedded.ID]; ok {
		return &Actor{ID: live.ID, Name: live.Name}
	}
	return &Actor{ID: embedded.ID, Name: embedded.Name}
}

// trigger requires both an interaction type and a target name. A target id
// found in the catalogs refreshes the name.
func (c *compiler) trigger(entry *story.Trigger) *Trigger {
	if entry == nil || entry.Type == "" || entry.Name == "" {
		return nil
	}
	target := entry.Name
	if entry.Type == story.TriggerEnter {
		if location, ok := c.locations[entry.ID]; ok && location.Name != "" {
			target = location.Name
		}
	} else if character, ok := c.characters[entry.ID]; ok && character.Name != "" {
		target = character.Name
	}
	return &Trigger{Interaction: entry.Type, Target: target, TargetID: entry.ID}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
