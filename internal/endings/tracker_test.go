package endings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
)

type memoryRepo struct {
	records map[[2]string]store.EndingRecord
	saves   int
	getErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[[2]string]store.EndingRecord{}}
}

func (m *memoryRepo) GetEndingRecord(ctx context.Context, userID, storyID string) (*store.EndingRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[[2]string{userID, storyID}]
	if !ok {
		return nil, nil
	}
	rec.EndingsSeen = append([]string(nil), rec.EndingsSeen...)
	return &rec, nil
}

func (m *memoryRepo) SaveEndingRecord(ctx context.Context, rec *store.EndingRecord) error {
	m.saves++
	m.records[[2]string{rec.UserID, rec.StoryID}] = *rec
	return nil
}

type tickingClock struct{ t time.Time }

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func TestRecordEndingIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	clock := &tickingClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	tracker := NewTracker(repo, WithClock(clock.now))
	ctx := context.Background()
	all := []string{"EndingA", "EndingB"}

	first, err := tracker.RecordEnding(ctx, "u1", "s1", "EndingA", all, "Exp")
	require.NoError(t, err)
	firstPlayed := first.LastPlayed

	second, err := tracker.RecordEnding(ctx, "u1", "s1", "EndingA", all, "Exp")
	require.NoError(t, err)

	assert.Equal(t, []string{"EndingA"}, second.EndingsSeen)
	assert.True(t, second.LastPlayed.After(firstPlayed))
	assert.Equal(t, 2, repo.saves)

	stored := repo.records[[2]string{"u1", "s1"}]
	assert.Equal(t, []string{"EndingA"}, stored.EndingsSeen)
	assert.Equal(t, clock.t, stored.LastPlayed)
}

func TestRecordEndingManyCalls(t *testing.T) {
	repo := newMemoryRepo()
	tracker := NewTracker(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := tracker.RecordEnding(ctx, "u1", "s1", "EndingA", nil, "Exp")
		require.NoError(t, err)
	}
	rec, err := repo.GetEndingRecord(ctx, "u1", "s1")
	require.NoError(t, err)
	count := 0
	for _, e := range rec.EndingsSeen {
		if e == "EndingA" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRecordEndingGrowsAndRefreshes(t *testing.T) {
	repo := newMemoryRepo()
	tracker := NewTracker(repo)
	ctx := context.Background()

	_, err := tracker.RecordEnding(ctx, "u1", "s1", "EndingA", []string{"EndingA"}, "Old name")
	require.NoError(t, err)
	rec, err := tracker.RecordEnding(ctx, "u1", "s1", "EndingB", []string{"EndingA", "EndingB", "EndingC"}, "New name")
	require.NoError(t, err)

	assert.Equal(t, []string{"EndingA", "EndingB"}, rec.EndingsSeen)
	assert.Equal(t, []string{"EndingA", "EndingB", "EndingC"}, rec.AllEndings)
	assert.Equal(t, "New name", rec.ExperienceName)

	rec, err = tracker.RecordEnding(ctx, "u1", "s1", "EndingA", []string{"EndingA"}, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, []string{"EndingA", "EndingB"}, rec.EndingsSeen, "seen set never shrinks")
	assert.Equal(t, []string{"EndingA"}, rec.AllEndings)
	assert.Equal(t, "Renamed", rec.ExperienceName)

	other, err := tracker.RecordEnding(ctx, "u2", "s1", "EndingC", nil, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, []string{"EndingC"}, other.EndingsSeen)
}

func TestRecordEndingErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		_, err := NewTracker(newMemoryRepo()).RecordEnding(ctx, "", "s1", "A", nil, "")
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := newMemoryRepo()
		repo.getErr = errors.New("connection refused")
		_, err := NewTracker(repo).RecordEnding(ctx, "u1", "s1", "A", nil, "")
		assert.ErrorIs(t, err, repo.getErr)
		assert.Zero(t, repo.saves)
	})
}

func TestApply(t *testing.T) {
	var u Update
	payload := `{"storyId":"s1","userEmail":"ana@example.com","ending":"Fim1","experienceName":"Porto Walk","allEndings":["Fim1","Fim2"]}`
	require.NoError(t, json.Unmarshal([]byte(payload), &u))

	repo := newMemoryRepo()
	rec, err := NewTracker(repo).Apply(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", rec.UserID)
	assert.Equal(t, []string{"Fim1"}, rec.EndingsSeen)
	assert.Equal(t, []string{"Fim1", "Fim2"}, rec.AllEndings)
}
