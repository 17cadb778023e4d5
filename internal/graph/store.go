// Package graph is the in-memory story graph owned by one editing session.
// It enforces referential integrity on every mutation: edges only connect
// existing nodes, (source, sourceHandle) pairs are unique, and embedded
// character copies are re-synced whenever the catalog changes.
package graph

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// NodeSpacing is the X offset between a new node and the previous one.
const NodeSpacing = 250.0

var (
	ErrMapNotFound     = errors.New("map not found")
	ErrAnchorNotFound  = errors.New("anchor not found")
	ErrDuplicateAnchor = errors.New("anchor id already used in map")
)

type Option func(*Store)

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type Store struct {
	doc    *story.Document
	newID  func() string
	logger *zap.Logger
}

func New(opts ...Option) *Store {
	return FromDocument(&story.Document{}, opts...)
}

// FromDocument starts a session from a persisted document. The store keeps
// its own copy.
func FromDocument(doc *story.Document, opts ...Option) *Store {
	s := &Store{
		doc:    doc.Clone(),
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns a snapshot of the session state.
func (s *Store) Document() *story.Document {
	return s.doc.Clone()
}

func (s *Store) Nodes() []story.Node {
	return story.CloneNodes(s.doc.Nodes)
}

func (s *Store) Edges() []story.Edge {
	return append([]story.Edge{}, s.doc.Edges...)
}

func (s *Store) Characters() []story.Character {
	return s.Document().Characters
}

func (s *Store) Locations() []story.Location {
	return s.Document().Locations
}

func (s *Store) Interactions() []story.Interaction {
	return append([]story.Interaction{}, s.doc.Interactions...)
}

func (s *Store) Node(id string) (story.Node, bool) {
	idx := s.nodeIndex(id)
	if idx < 0 {
		return story.Node{}, false
	}
	return s.doc.Nodes[idx].Clone(), true
}

func (s *Store) nodeIndex(id string) int {
	for i := range s.doc.Nodes {
		if s.doc.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) freshID() string {
	for {
		id := s.newID()
		if s.nodeIndex(id) < 0 && s.edgeIndex(id) < 0 {
			return id
		}
	}
}

// AddNode creates a node of the given type with its schema defaults, then
// applies initial on top of them.
func (s *Store) AddNode(nodeType story.NodeType, initial map[string]any) (story.Node, error) {
	if _, err := story.ParseNodeType(string(nodeType)); err != nil {
		return story.Node{}, err
	}
	if nodeType == story.NodeBegin {
		for _, node := range s.doc.Nodes {
			if node.Type == story.NodeBegin {
				return story.Node{}, story.ErrDuplicateBegin
			}
		}
	}

	data, err := story.DefaultData(nodeType)
	if err != nil {
		return story.Node{}, err
	}
	if len(initial) > 0 {
		data, err = story.ApplyPatch(data, nodeType, initial)
		if err != nil {
			return story.Node{}, fmt.Errorf("adding %s node: %w", nodeType, err)
		}
	}

	position := story.Position{}
	if n := len(s.doc.Nodes); n > 0 {
		last := s.doc.Nodes[n-1].Position
		position = story.Position{X: last.X + NodeSpacing, Y: last.Y}
	}

	node := story.Node{
		ID:       s.freshID(),
		Type:     nodeType,
		Position: position,
		Data:     data,
	}
	node = ReindexCharacterReferences([]story.Node{node}, s.doc.Characters)[0]
	s.doc.Nodes = append(s.doc.Nodes, node)

	s.logger.Debug("node added", zap.String("id", node.ID), zap.String("type", string(nodeType)))
	return node.Clone(), nil
}

// RemoveNode deletes a node together with every edge touching it. A
// character node's dialog goes with it.
func (s *Store) RemoveNode(id string) error {
	idx := s.nodeIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", story.ErrNodeNotFound, id)
	}
	s.doc.Nodes = append(s.doc.Nodes[:idx], s.doc.Nodes[idx+1:]...)

	kept := s.doc.Edges[:0]
	removed := 0
	for _, edge := range s.doc.Edges {
		if edge.Source == id || edge.Target == id {
			removed++
			continue
		}
		kept = append(kept, edge)
	}
	s.doc.Edges = kept

	s.logger.Debug("node removed", zap.String("id", id), zap.Int("edges_removed", removed))
	return nil
}

// UpdateNodeData merges patch into the node's data. Dialog edits on a
// character node also repair the outer edges leaving that node.
func (s *Store) UpdateNodeData(id string, patch map[string]any) (story.Node, error) {
	idx := s.nodeIndex(id)
	if idx < 0 {
		return story.Node{}, fmt.Errorf("%w: %s", story.ErrNodeNotFound, id)
	}
	node := s.doc.Nodes[idx]
	oldEnds := node.Data.Dialog.EndNames()

	data, err := story.ApplyPatch(node.Data, node.Type, patch)
	if err != nil {
		return story.Node{}, fmt.Errorf("updating node %s: %w", id, err)
	}
	node.Data = data
	if _, ok := patch["character"]; ok {
		node = ReindexCharacterReferences([]story.Node{node}, s.doc.Characters)[0]
	}
	s.doc.Nodes[idx] = node

	if _, ok := patch["dialog"]; ok && node.Type == story.NodeCharacter {
		before := len(s.doc.Edges)
		s.doc.Edges = repairDialogEdges(s.doc.Edges, id, oldEnds, node.Data.Dialog.EndNames())
		if dropped := before - len(s.doc.Edges); dropped > 0 {
			s.logger.Info("dialog edges dropped", zap.String("node", id), zap.Int("count", dropped))
		}
	}

	return node.Clone(), nil
}

func (s *Store) edgeIndex(id string) int {
	for i := range s.doc.Edges {
		if s.doc.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// AddEdge connects source to target. An existing edge with the same
// (source, sourceHandle) is rewired instead of duplicated.
func (s *Store) AddEdge(source, target, sourceHandle string) (story.Edge, error) {
	if s.nodeIndex(source) < 0 {
		return story.Edge{}, fmt.Errorf("%w: source %s", story.ErrInvalidEdgeReference, source)
	}
	if s.nodeIndex(target) < 0 {
		return story.Edge{}, fmt.Errorf("%w: target %s", story.ErrInvalidEdgeReference, target)
	}

	for i, edge := range s.doc.Edges {
		if edge.Source == source && edge.SourceHandle == sourceHandle {
			s.doc.Edges[i].Target = target
			s.logger.Debug("edge rewired", zap.String("id", edge.ID), zap.String("target", target))
			return s.doc.Edges[i], nil
		}
	}

	edge := story.Edge{
		ID:           s.freshID(),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
	}
	s.doc.Edges = append(s.doc.Edges, edge)
	return edge, nil
}

func (s *Store) RemoveEdge(id string) error {
	idx := s.edgeIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", story.ErrEdgeNotFound, id)
	}
	s.doc.Edges = append(s.doc.Edges[:idx], s.doc.Edges[idx+1:]...)
	return nil
}

func (s *Store) SetLocations(locations []story.Location) {
	s.doc.Locations = (&story.Document{Locations: locations}).Clone().Locations
}

func (s *Store) SetInteractions(interactions []story.Interaction) {
	s.doc.Interactions = append([]story.Interaction{}, interactions...)
}
