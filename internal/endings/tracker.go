// Package endings records which endings each user has reached per story.
package endings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/store"
)

var ErrMissingField = errors.New("ending update is missing a required field")

// Repository is the slice of store.Store the tracker needs. GetEndingRecord
// returns nil without error when no record exists.
type Repository interface {
	GetEndingRecord(ctx context.Context, userID, storyID string) (*store.EndingRecord, error)
	SaveEndingRecord(ctx context.Context, rec *store.EndingRecord) error
}

// Update is the ending message sent by a player when a session ends.
type Update struct {
	StoryID        string   `json:"storyId"`
	UserEmail      string   `json:"userEmail"`
	Ending         string   `json:"ending"`
	ExperienceName string   `json:"experienceName"`
	AllEndings     []string `json:"allEndings"`
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

type Tracker struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewTracker(repo Repository, opts ...Option) *Tracker {
	t := &Tracker{repo: repo, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordEnding adds endingID to the user's seen set for storyID. The
// record's allEndings, experienceName and lastPlayed are refreshed on every
// call, whether or not the ending was new.
func (t *Tracker) RecordEnding(ctx context.Context, userID, storyID, endingID string, allEndings []string, experienceName string) (*store.EndingRecord, error) {
	if userID == "" || storyID == "" || endingID == "" {
		return nil, fmt.Errorf("%w: user, story and ending are required", ErrMissingField)
	}

	rec, err := t.repo.GetEndingRecord(ctx, userID, storyID)
	if err != nil {
		return nil, fmt.Errorf("loading ending record: %w", err)
	}

	switch {
	case rec == nil:
		rec = &store.EndingRecord{
			UserID:      userID,
			StoryID:     storyID,
			EndingsSeen: []string{endingID},
		}
		t.logger.Info("first ending recorded", zap.String("user", userID), zap.String("story", storyID), zap.String("ending", endingID))
	case !rec.HasSeen(endingID):
		rec.EndingsSeen = append(rec.EndingsSeen, endingID)
		t.logger.Info("new ending recorded", zap.String("user", userID), zap.String("story", storyID), zap.String("ending", endingID))
	default:
		t.logger.Debug("ending already seen", zap.String("user", userID), zap.String("story", storyID), zap.String("ending", endingID))
	}

	rec.AllEndings = append([]string{}, allEndings...)
	rec.ExperienceName = experienceName
	rec.LastPlayed = t.now().UTC()

	if err := t.repo.SaveEndingRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving ending record: %w", err)
	}
	return rec, nil
}

// Apply records the ending carried by an update message.
func (t *Tracker) Apply(ctx context.Context, u Update) (*store.EndingRecord, error) {
	return t.RecordEnding(ctx, u.UserEmail, u.StoryID, u.Ending, u.AllEndings, u.ExperienceName)
}
