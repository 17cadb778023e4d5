package player

import (
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// navigator answers step lookups for one playable story representation.
type navigator interface {
	begin() (choreography.Step, bool)
	step(id string) (choreography.Step, bool)
	next(current choreography.Step) []choreography.Step
}

type choreographyNavigator struct {
	steps []choreography.Step
	byID  map[string]int
}

func newChoreographyNavigator(ch *choreography.Choreography) *choreographyNavigator {
	n := &choreographyNavigator{byID: map[string]int{}}
	if ch != nil {
		n.steps = ch.Story
	}
	for i, step := range n.steps {
		if _, ok := n.byID[step.ID]; !ok {
			n.byID[step.ID] = i
		}
	}
	return n
}

func (n *choreographyNavigator) begin() (choreography.Step, bool) {
	for _, step := range n.steps {
		if step.Action == choreography.ActionBegin {
			return step, true
		}
	}
	return choreography.Step{}, false
}

func (n *choreographyNavigator) step(id string) (choreography.Step, bool) {
	idx, ok := n.byID[id]
	if !ok {
		return choreography.Step{}, false
	}
	return n.steps[idx], true
}

func (n *choreographyNavigator) next(current choreography.Step) []choreography.Step {
	return followLinks(n, current)
}

// followLinks resolves a step's options, or its single goToStep, dropping
// targets that do not exist.
func followLinks(n navigator, current choreography.Step) []choreography.Step {
	var out []choreography.Step
	if current.Action == choreography.ActionChoice {
		for _, option := range current.Data.Options {
			if option.GoToStep == nil {
				continue
			}
			if target, ok := n.step(*option.GoToStep); ok {
				out = append(out, target)
			}
		}
		return out
	}
	if current.GoToStep != nil {
		if target, ok := n.step(*current.GoToStep); ok {
			out = append(out, target)
		}
	}
	return out
}

// graphNavigator plays an uncompiled story graph, compiling nodes on demand.
// Used by the editor preview.
type graphNavigator struct {
	nodes []story.Node
	edges []story.Edge
	byID  map[string]int
}

func newGraphNavigator(nodes []story.Node, edges []story.Edge) *graphNavigator {
	n := &graphNavigator{
		nodes: story.CloneNodes(nodes),
		edges: append([]story.Edge(nil), edges...),
		byID:  make(map[string]int, len(nodes)),
	}
	for i, node := range n.nodes {
		if _, ok := n.byID[node.ID]; !ok {
			n.byID[node.ID] = i
		}
	}
	return n
}

func (n *graphNavigator) begin() (choreography.Step, bool) {
	for _, node := range n.nodes {
		if node.Type == story.NodeBegin {
			return choreography.CompileNode(node, n.edges)
		}
	}
	return choreography.Step{}, false
}

func (n *graphNavigator) step(id string) (choreography.Step, bool) {
	idx, ok := n.byID[id]
	if !ok {
		return choreography.Step{}, false
	}
	return choreography.CompileNode(n.nodes[idx], n.edges)
}

// next lists every playable node reached by an edge leaving current. Choice
// steps follow their options.
func (n *graphNavigator) next(current choreography.Step) []choreography.Step {
	if current.Action == choreography.ActionChoice {
		return followLinks(n, current)
	}
	var out []choreography.Step
	for _, edge := range n.edges {
		if edge.Source != current.ID {
			continue
		}
		if target, ok := n.step(edge.Target); ok {
			out = append(out, target)
		}
	}
	return out
}
