// Package storetest is the behaviour suite every store backend must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func sampleStory(id string) *story.Document {
	location := "l1"
	return &story.Document{
		ID:             id,
		Title:          "Ribeira at dusk",
		ExperienceName: "Porto Walk",
		Description:    "A walk along the river front",
		Tags:           []string{"porto", "outdoor"},
		Nodes: []story.Node{
			{ID: "b", Type: story.NodeBegin, Data: story.NodeData{Location: &location}},
			{ID: "t", Type: story.NodeText, Position: story.Position{X: 250}, Data: story.NodeData{
				Name:         "Olá",
				Character:    &story.Character{ID: "c1", Name: "Guide"},
				EntryTrigger: &story.Trigger{Type: story.TriggerEnter, ID: "l1", Name: "Ribeira"},
			}},
			{ID: "e", Type: story.NodeEnd, Position: story.Position{X: 500}, Data: story.NodeData{EndingID: "Fim"}},
		},
		Edges: []story.Edge{
			{ID: "e1", Source: "b", Target: "t"},
			{ID: "e2", Source: "t", Target: "e"},
		},
		Characters: []story.Character{{ID: "c1", Name: "Guide"}},
		Locations:  []story.Location{{ID: "l1", Name: "Ribeira"}},
		Maps: []story.Map{{ID: "m1", Name: "Centre", Scale: 1, Anchors: []story.Anchor{
			{AnchorID: "o", AnchorType: story.AnchorTypeAnchor, Coords: story.LatLng{Lat: 41.14, Lng: -8.61}, LocationID: "l1"},
		}}},
		Interactions: []story.Interaction{{Type: "talk_to", Label: "Talk"}},
		LastModified: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

// Run exercises s against the store contract. s must start empty with its
// schema ensured.
func Run(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("stories", func(t *testing.T) {
		got, err := s.GetStory(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)

		doc := sampleStory("s1")
		require.NoError(t, s.SaveStory(ctx, doc, "hash-1"))

		got, err = s.GetStory(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, doc.Nodes, got.Nodes)
		assert.Equal(t, doc.Edges, got.Edges)
		assert.Equal(t, doc.Maps, got.Maps)
		assert.True(t, doc.LastModified.Equal(got.LastModified))

		hash, err := s.GetStoryHash(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "hash-1", hash)

		hash, err = s.GetStoryHash(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, hash)
	})

	t.Run("last write wins", func(t *testing.T) {
		doc := sampleStory("s1")
		doc.Title = "Ribeira at night"
		doc.Exported = true
		doc.StoryEndings = []string{"Fim"}
		require.NoError(t, s.SaveStory(ctx, doc, "hash-2"))

		got, err := s.GetStory(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "Ribeira at night", got.Title)
		assert.Equal(t, []string{"Fim"}, got.StoryEndings)

		hash, err := s.GetStoryHash(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "hash-2", hash)
	})

	t.Run("list", func(t *testing.T) {
		other := sampleStory("s2")
		other.Title = "Clérigos tower"
		other.Tags = []string{"indoor"}
		other.LastModified = other.LastModified.Add(time.Hour)
		require.NoError(t, s.SaveStory(ctx, other, ""))

		all, err := s.ListStories(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "s2", all[0].ID, "newest first")
		assert.True(t, all[1].Exported)
		assert.Equal(t, []string{"porto", "outdoor"}, all[1].Tags)

		tagged, err := s.ListStories(ctx, "indoor")
		require.NoError(t, err)
		require.Len(t, tagged, 1)
		assert.Equal(t, "s2", tagged[0].ID)
	})

	t.Run("search", func(t *testing.T) {
		results, err := s.SearchStories(ctx, "tower")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "s2", results[0].ID)

		_, err = s.SearchStories(ctx, "  ")
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := s.DeleteStory(ctx, "s2")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = s.DeleteStory(ctx, "s2")
		require.NoError(t, err)
		assert.False(t, deleted)

		results, err := s.SearchStories(ctx, "tower")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("ending records", func(t *testing.T) {
		got, err := s.GetEndingRecord(ctx, "u1", "s1")
		require.NoError(t, err)
		assert.Nil(t, got)

		played := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
		rec := &store.EndingRecord{
			UserID:         "u1",
			StoryID:        "s1",
			EndingsSeen:    []string{"Fim"},
			AllEndings:     []string{"Fim", "Outro"},
			ExperienceName: "Porto Walk",
			LastPlayed:     played,
		}
		require.NoError(t, s.SaveEndingRecord(ctx, rec))

		rec.EndingsSeen = []string{"Fim", "Outro"}
		rec.LastPlayed = played.Add(time.Minute)
		require.NoError(t, s.SaveEndingRecord(ctx, rec))

		got, err = s.GetEndingRecord(ctx, "u1", "s1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{"Fim", "Outro"}, got.EndingsSeen)
		assert.Equal(t, []string{"Fim", "Outro"}, got.AllEndings)
		assert.True(t, rec.LastPlayed.Equal(got.LastPlayed))

		require.NoError(t, s.SaveEndingRecord(ctx, &store.EndingRecord{
			UserID: "u1", StoryID: "s9", LastPlayed: played,
		}))
		list, err := s.ListEndingRecords(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "s1", list[0].StoryID, "most recently played first")
		assert.Empty(t, list[1].EndingsSeen)

		none, err := s.ListEndingRecords(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("run sql", func(t *testing.T) {
		rows, err := s.RunSQL(ctx, "SELECT id, title FROM stories WHERE id = $1", map[string]any{"1": "s1"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ribeira at night", rows[0]["title"])
	})
}
