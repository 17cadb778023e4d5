package document

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func TestFormatOf(t *testing.T) {
	cases := map[string]Format{
		"a.json":     FormatJSON,
		"b.YAML":     FormatYAML,
		"dir/c.yml":  FormatYAML,
		"story.JSON": FormatJSON,
	}
	for path, want := range cases {
		got, err := FormatOf(path)
		if err != nil {
			t.Fatalf("format of %s: %v", path, err)
		}
		if got != want {
			t.Fatalf("format of %s: expected %s, got %s", path, want, got)
		}
	}

	if _, err := FormatOf("notes.md"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseFile_JSON(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "porto.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.ID != "porto-walk" || doc.ExperienceName != "Porto Walk" {
		t.Fatalf("unexpected header: %+v", doc)
	}
	if len(doc.Nodes) != 3 || len(doc.Edges) != 2 {
		t.Fatalf("expected 3 nodes and 2 edges, got %d and %d", len(doc.Nodes), len(doc.Edges))
	}
	if doc.Nodes[1].Data.Character == nil || doc.Nodes[1].Data.Character.Name != "Guide" {
		t.Fatalf("expected embedded character, got %+v", doc.Nodes[1].Data)
	}
	want := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if !doc.LastModified.Equal(want) {
		t.Fatalf("expected lastModified %s, got %s", want, doc.LastModified)
	}
}

func TestParseFile_YAMLDefaultsID(t *testing.T) {
	doc, err := ParseFile(filepath.Join("testdata", "clerigos.yaml"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.ID != "clerigos" {
		t.Fatalf("expected id from file name, got %q", doc.ID)
	}
	if doc.Nodes[1].Type != story.NodeQuiz {
		t.Fatalf("expected quiz node, got %s", doc.Nodes[1].Type)
	}
	if !reflect.DeepEqual(doc.Nodes[1].Data.Answers, []string{"Climb", "Rest"}) {
		t.Fatalf("unexpected answers: %v", doc.Nodes[1].Data.Answers)
	}
	if doc.Edges[2].SourceHandle != "1" {
		t.Fatalf("expected handle 1, got %q", doc.Edges[2].SourceHandle)
	}
	if !reflect.DeepEqual(doc.Tags, []string{"porto", "indoor"}) {
		t.Fatalf("unexpected tags: %v", doc.Tags)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := ParseFile(filepath.Join("testdata", "bad_type.json"))
	if !errors.Is(err, ErrInvalidDocument) || !errors.Is(err, story.ErrInvalidNodeType) {
		t.Fatalf("expected invalid node type error, got %v", err)
	}

	if _, err := Parse([]byte("{not json"), FormatJSON); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}

	if _, err := Parse([]byte("{}"), Format("toml")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	doc, err := Parse([]byte(`{"id":"empty"}`), FormatJSON)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if doc.Nodes == nil || doc.Edges == nil {
		t.Fatalf("expected non-nil node and edge lists")
	}
}

func TestHash(t *testing.T) {
	got := Hash([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

type mockStore struct {
	saved  map[string]*story.Document
	hashes map[string]string
	saves  int
}

func newMockStore() *mockStore {
	return &mockStore{saved: map[string]*story.Document{}, hashes: map[string]string{}}
}

func (m *mockStore) SaveStory(ctx context.Context, doc *story.Document, sourceHash string) error {
	m.saves++
	m.saved[doc.ID] = doc
	m.hashes[doc.ID] = sourceHash
	return nil
}

func (m *mockStore) GetStoryHash(ctx context.Context, id string) (string, error) {
	return m.hashes[id], nil
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	db := newMockStore()
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	opts := Options{Now: func() time.Time { return now }}

	result, err := Import(ctx, db, []string{"testdata"}, opts)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !reflect.DeepEqual(result.Imported, []string{"clerigos", "porto-walk"}) {
		t.Fatalf("unexpected imported ids: %v", result.Imported)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error for the bad file, got %v", result.Errors)
	}
	if !db.saved["clerigos"].LastModified.Equal(now) {
		t.Fatalf("expected lastModified to be stamped, got %s", db.saved["clerigos"].LastModified)
	}
	if db.saved["porto-walk"].LastModified.Equal(now) {
		t.Fatalf("expected existing lastModified to be kept")
	}
	if len(db.hashes["porto-walk"]) != 64 {
		t.Fatalf("expected sha256 hex hash, got %q", db.hashes["porto-walk"])
	}

	result, err = Import(ctx, db, []string{"testdata"}, opts)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(result.Imported) != 0 || result.Skipped != 2 {
		t.Fatalf("expected unchanged files to be skipped, got %+v", result)
	}

	opts.Full = true
	result, err = Import(ctx, db, []string{"testdata"}, opts)
	if err != nil {
		t.Fatalf("full import: %v", err)
	}
	if len(result.Imported) != 2 || db.saves != 4 {
		t.Fatalf("expected full import to re-save, got %+v (saves %d)", result, db.saves)
	}
}

func TestImport_ExcludeAndSingleFile(t *testing.T) {
	ctx := context.Background()
	db := newMockStore()

	result, err := Import(ctx, db, []string{"testdata"}, Options{
		Exclude: []string{filepath.Join("testdata", "bad_type.json")},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result.Errors) != 0 || len(result.Imported) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	db = newMockStore()
	result, err = Import(ctx, db, []string{filepath.Join("testdata", "porto.json")}, Options{})
	if err != nil {
		t.Fatalf("import single file: %v", err)
	}
	if !reflect.DeepEqual(result.Imported, []string{"porto-walk"}) {
		t.Fatalf("unexpected imported ids: %v", result.Imported)
	}
}

func TestImport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Import(ctx, newMockStore(), []string{"testdata"}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
