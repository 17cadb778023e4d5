package endings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store/sqlite"
)

func TestTrackerWithSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "endings.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(ctx) })
	require.NoError(t, s.EnsureSchema(ctx))

	played := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	tracker := NewTracker(s, WithClock(func() time.Time { return played }))

	_, err = tracker.RecordEnding(ctx, "u1", "s1", "EndingA", []string{"EndingA", "EndingB"}, "Exp")
	require.NoError(t, err)
	played = played.Add(time.Hour)
	_, err = tracker.RecordEnding(ctx, "u1", "s1", "EndingA", []string{"EndingA", "EndingB"}, "Exp")
	require.NoError(t, err)

	rec, err := s.GetEndingRecord(ctx, "u1", "s1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"EndingA"}, rec.EndingsSeen)
	assert.True(t, played.Equal(rec.LastPlayed))
}
