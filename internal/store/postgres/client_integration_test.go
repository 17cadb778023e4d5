//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	dsn := os.Getenv("STORYWEAVER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STORYWEAVER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	c, err := New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer c.Close(ctx)

	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	if _, err := c.pool.Exec(ctx, `TRUNCATE stories, ending_records`); err != nil {
		t.Fatalf("truncating: %v", err)
	}

	storetest.Run(t, c)
}
