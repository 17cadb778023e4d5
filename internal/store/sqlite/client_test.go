package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "stories.db")

	c, err := New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer c.Close(ctx)

	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema twice: %v", err)
	}

	storetest.Run(t, c)
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		want    string
		wantErr bool
	}{
		{name: "memory", dsn: "sqlite://:memory:", want: ":memory:"},
		{name: "absolute", dsn: "sqlite:///var/lib/storyweaver.db", want: "/var/lib/storyweaver.db"},
		{name: "relative", dsn: "sqlite://stories.db", want: "./stories.db"},
		{name: "dot relative", dsn: "sqlite://./data/stories.db", want: "./data/stories.db"},
		{name: "escaped", dsn: "sqlite://my%20stories.db", want: "./my stories.db"},
		{name: "query kept", dsn: "sqlite://stories.db?cache=shared", want: "./stories.db?cache=shared"},
		{name: "wrong scheme", dsn: "postgres://localhost/db", wantErr: true},
		{name: "empty path", dsn: "sqlite://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDSN(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.dsn)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	ddl := `
	CREATE TABLE a (id INTEGER);
	-- comment;
	CREATE TRIGGER t AFTER INSERT ON a BEGIN
		INSERT INTO b VALUES (new.id);
		INSERT INTO c VALUES (new.id);
	END;
	CREATE INDEX i ON a (id);
	`
	got := splitStatements(ddl)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
	}
}
