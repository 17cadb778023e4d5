//go:build integration

package graphdb

import (
	"context"
	"testing"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func quizStory() *story.Document {
	return &story.Document{
		ID:    "graphdb-test",
		Title: "Quiz walk",
		Nodes: []story.Node{
			{ID: "b", Type: story.NodeBegin},
			{ID: "q", Type: story.NodeQuiz, Data: story.NodeData{Question: "Left or right?", Answers: []string{"L", "R"}}},
			{ID: "e1", Type: story.NodeEnd, Data: story.NodeData{EndingID: "Left"}},
			{ID: "e2", Type: story.NodeEnd, Data: story.NodeData{EndingID: "Right"}},
			{ID: "lost", Type: story.NodeText, Data: story.NodeData{Name: "Nobody reads me"}},
		},
		Edges: []story.Edge{
			{ID: "x1", Source: "b", Target: "q"},
			{ID: "x2", Source: "q", Target: "e1", SourceHandle: "0"},
			{ID: "x3", Source: "q", Target: "e2", SourceHandle: "1"},
		},
	}
}

func TestPushStory(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	doc := quizStory()
	clearStory(t, client, doc.ID)
	t.Cleanup(func() { clearStory(t, client, doc.ID) })

	result, err := client.PushStory(ctx, doc, "hash-1")
	if err != nil {
		t.Fatalf("push story: %v", err)
	}
	if result.Steps != 5 || result.Links != 3 || result.Removed != 0 {
		t.Fatalf("unexpected push result: %+v", result)
	}

	hash, err := client.StoryHash(ctx, doc.ID)
	if err != nil {
		t.Fatalf("story hash: %v", err)
	}
	if hash != "hash-1" {
		t.Fatalf("expected hash-1, got %q", hash)
	}

	hops, err := client.Successors(ctx, doc.ID, "b", 2)
	if err != nil {
		t.Fatalf("successors: %v", err)
	}
	if len(hops) != 3 {
		t.Fatalf("expected 3 hops, got %d: %+v", len(hops), hops)
	}
	if hops[0].To.ID != "q" || hops[0].Depth != 1 {
		t.Fatalf("unexpected first hop: %+v", hops[0])
	}
	if hops[1].Handle != "0" || hops[1].To.Ending != "Left" {
		t.Fatalf("unexpected second hop: %+v", hops[1])
	}

	unreachable, err := client.ListUnreachableSteps(ctx, doc.ID)
	if err != nil {
		t.Fatalf("unreachable steps: %v", err)
	}
	if len(unreachable) != 1 || unreachable[0].ID != "lost" {
		t.Fatalf("expected lost to be unreachable, got %+v", unreachable)
	}

	deadEnds, err := client.ListDeadEnds(ctx, doc.ID)
	if err != nil {
		t.Fatalf("dead ends: %v", err)
	}
	if len(deadEnds) != 1 || deadEnds[0].ID != "lost" {
		t.Fatalf("expected lost to be a dead end, got %+v", deadEnds)
	}
}

func TestPushStory_RemovesStaleSteps(t *testing.T) {
	ctx := context.Background()
	client := testClient(t)
	doc := quizStory()
	clearStory(t, client, doc.ID)
	t.Cleanup(func() { clearStory(t, client, doc.ID) })

	if _, err := client.PushStory(ctx, doc, "hash-1"); err != nil {
		t.Fatalf("push story: %v", err)
	}

	doc.Nodes = doc.Nodes[:4]
	doc.Edges = doc.Edges[:2]
	result, err := client.PushStory(ctx, doc, "hash-2")
	if err != nil {
		t.Fatalf("second push: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("expected 1 removed step, got %d", result.Removed)
	}

	steps, err := client.ListSteps(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list steps: %v", err)
	}
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}

	hops, err := client.Successors(ctx, doc.ID, "q", 1)
	if err != nil {
		t.Fatalf("successors: %v", err)
	}
	if len(hops) != 1 || hops[0].To.ID != "e1" {
		t.Fatalf("expected only q->e1 after rewire, got %+v", hops)
	}
}

func TestSuccessors_InvalidDepth(t *testing.T) {
	client := testClient(t)
	if _, err := client.Successors(context.Background(), "any", "b", 0); err == nil {
		t.Fatalf("expected depth error")
	}
}
