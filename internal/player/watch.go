package player

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// PositionSource yields the player's current position.
type PositionSource interface {
	Position(ctx context.Context) (story.LatLng, error)
}

type PositionFunc func(ctx context.Context) (story.LatLng, error)

func (f PositionFunc) Position(ctx context.Context) (story.LatLng, error) { return f(ctx) }

// Watch polls src once immediately and then every poll interval, feeding
// each sample to UpdatePosition. It replaces any running watch and stops
// when ctx is cancelled or the session is closed.
func (s *Session) Watch(ctx context.Context, src PositionSource) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	prevCancel, prevDone := s.stopWatch, s.watchDone
	s.stopWatch = cancel
	s.watchDone = done
	interval := s.poll
	s.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil {
				return
			}
			s.sample(ctx, src)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *Session) sample(ctx context.Context, src PositionSource) {
	p, err := src.Position(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("position sample failed", zap.Error(err))
		}
		return
	}
	s.UpdatePosition(p)
}

func (s *Session) stopWatching() {
	s.mu.Lock()
	cancel, done := s.stopWatch, s.watchDone
	s.stopWatch, s.watchDone = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Close stops the position watcher. The session can still be inspected.
func (s *Session) Close() {
	s.stopWatching()
}
