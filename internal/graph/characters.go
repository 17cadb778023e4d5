package graph

import (
	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// SetCharacters replaces the character catalog and re-syncs every embedded
// character copy against it.
func (s *Store) SetCharacters(characters []story.Character) {
	s.doc.Characters = (&story.Document{Characters: characters}).Clone().Characters
	s.ReindexCharacterReferences(s.doc.Characters)
}

func (s *Store) ReindexCharacterReferences(characters []story.Character) {
	s.doc.Nodes = ReindexCharacterReferences(s.doc.Nodes, characters)
	s.logger.Debug("character references reindexed", zap.Int("characters", len(characters)))
}

// ReindexCharacterReferences returns a copy of nodes where every embedded
// character, including those inside dialog sub-graphs, is replaced by the
// live catalog entry with the same id, or by story.NotFoundCharacter.
func ReindexCharacterReferences(nodes []story.Node, characters []story.Character) []story.Node {
	byID := make(map[string]story.Character, len(characters))
	for _, character := range characters {
		byID[character.ID] = character
	}
	return reindex(nodes, byID)
}

func reindex(nodes []story.Node, byID map[string]story.Character) []story.Node {
	out := story.CloneNodes(nodes)
	for i := range out {
		data := &out[i].Data
		if data.Character != nil {
			live, ok := byID[data.Character.ID]
			if !ok {
				live = story.NotFoundCharacter
			}
			c := live.Clone()
			data.Character = &c
		}
		if data.Dialog != nil {
			data.Dialog.Nodes = reindex(data.Dialog.Nodes, byID)
		}
	}
	return out
}
