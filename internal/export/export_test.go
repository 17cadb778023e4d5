package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/manifest"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func testDocument() *story.Document {
	return &story.Document{
		ID:             "s1",
		Title:          "draft",
		ExperienceName: "Porto Walk",
		Description:    "A walk",
		Nodes: []story.Node{
			{ID: "b", Type: story.NodeBegin},
			{ID: "q", Type: story.NodeQuiz, Data: story.NodeData{Question: "Which way?", Answers: []string{"river", "tower"}}},
			{ID: "e1", Type: story.NodeEnd, Data: story.NodeData{EndingID: "River"}},
			{ID: "e2", Type: story.NodeEnd},
			{ID: "e3", Type: story.NodeEnd, Data: story.NodeData{EndingID: "River"}},
			{ID: "pic", Type: story.NodeImage},
		},
		Edges: []story.Edge{
			{ID: "1", Source: "b", Target: "q"},
			{ID: "2", Source: "q", SourceHandle: "0", Target: "e1"},
			{ID: "3", Source: "q", SourceHandle: "1", Target: "e2"},
		},
		Characters: []story.Character{{ID: "c1", Name: "Guide"}},
		Locations:  []story.Location{{ID: "l1", Name: "Ribeira"}},
		Maps: []story.Map{{ID: "m", Anchors: []story.Anchor{
			{AnchorID: "o", AnchorType: story.AnchorTypeAnchor, Coords: story.LatLng{Lat: 41.14, Lng: -8.61}, LocationID: "l1"},
		}}},
	}
}

func TestBuild(t *testing.T) {
	doc := testDocument()
	bundle, err := Build(context.Background(), doc, Options{
		Author:          "tiago",
		BaseManifestURL: "https://cdn.example/base.json",
		VRMapping:       manifest.Mapping{Actors: map[string]string{"Guide": "guide_01"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Porto Walk", bundle.Choreography.ExperienceName)
	assert.Equal(t, choreography.Metadata{
		Author:          "tiago",
		Description:     "A walk",
		BaseManifestURL: "https://cdn.example/base.json",
	}, bundle.Choreography.Metadata)
	assert.Len(t, bundle.Choreography.Story, 5)
	assert.Equal(t, []string{"pic"}, bundle.Skipped)

	assert.Equal(t, []string{"River", choreography.DefaultEnding}, bundle.Document.StoryEndings)
	assert.True(t, bundle.Document.Exported)
	assert.False(t, doc.Exported, "input document must not change")

	require.Len(t, bundle.VR.Characters, 1)
	assert.Equal(t, "guide_01", *bundle.VR.Characters[0].ThreeDObject)
	require.NotNil(t, bundle.AR.Locations[0].TriggerType)
	assert.Equal(t, manifest.TriggerGPS, bundle.AR.Locations[0].TriggerType.Type)
	assert.Len(t, bundle.Base.Characters, 1)
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, testDocument(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDir(t *testing.T) {
	bundle, err := Build(context.Background(), testDocument(), Options{})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, bundle.WriteDir(dir))

	for _, name := range []string{ChoreographyFile, BaseManifestFile, VRManifestFile, ARManifestFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, ChoreographyFile))
	require.NoError(t, err)
	parsed, err := choreography.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, bundle.Choreography.Story, parsed.Story)
}
