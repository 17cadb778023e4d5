// Package player drives step-by-step playback of a compiled choreography,
// or of a raw story graph for editor previews.
//
// A Session moves through Loading, Ready, Waiting and Terminal. Steps with a
// trigger hold the session in Waiting until the trigger is satisfied: an
// enter trigger by a position within the geofence radius of its target, any
// other trigger by an interaction event naming its target. Conditions are
// re-evaluated on every position update or event, so a gate that is not yet
// satisfied stays open to being satisfied later. Once a step has been
// released it is never blocked again.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

const (
	DefaultGeofenceRadius = 10.0
	DefaultPollInterval   = 3 * time.Second
)

var (
	ErrMissingBeginStep        = errors.New("story has no begin step")
	ErrNoSuchTransition        = errors.New("no such transition")
	ErrTriggerPending          = errors.New("step is waiting on its trigger")
	ErrUnresolvedTriggerTarget = errors.New("trigger target cannot be resolved")
	ErrSessionEnded            = errors.New("session has ended")
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateWaiting
	StateTerminal
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateWaiting:
		return "waiting"
	case StateTerminal:
		return "terminal"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Snapshot is a consistent view of a session, handed to observers.
type Snapshot struct {
	State   State
	Current choreography.Step
	Next    []choreography.Step
	Gate    *Gate
	Ending  string
}

type Option func(*Session)

func WithGeofenceRadius(meters float64) Option {
	return func(s *Session) {
		if meters > 0 {
			s.radius = meters
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.poll = d
		}
	}
}

func WithResolver(r TargetResolver) Option {
	return func(s *Session) { s.resolver = r }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers fn to be called after every state change. It runs
// outside the session lock.
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) { s.observer = fn }
}

type Session struct {
	mu sync.Mutex

	nav      navigator
	state    State
	err      error
	current  choreography.Step
	next     []choreography.Step
	gate     *Gate
	position *story.LatLng

	radius   float64
	poll     time.Duration
	resolver TargetResolver
	logger   *zap.Logger
	observer func(Snapshot)

	stopWatch context.CancelFunc
	watchDone chan struct{}
}

func newSession(opts []Option) *Session {
	s := &Session{
		state:  StateLoading,
		radius: DefaultGeofenceRadius,
		poll:   DefaultPollInterval,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession starts playback of a compiled choreography at its begin step.
func NewSession(ch *choreography.Choreography, opts ...Option) (*Session, error) {
	s := newSession(opts)
	if err := s.Load(ch); err != nil {
		return nil, err
	}
	return s, nil
}

// NewGraphSession starts playback of an uncompiled story graph.
func NewGraphSession(nodes []story.Node, edges []story.Edge, opts ...Option) (*Session, error) {
	s := newSession(opts)
	if err := s.load(newGraphNavigator(nodes, edges)); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the story being played and restarts at its begin step. On
// failure the session is left in StateError.
func (s *Session) Load(ch *choreography.Choreography) error {
	return s.load(newChoreographyNavigator(ch))
}

func (s *Session) load(nav navigator) error {
	s.mu.Lock()
	s.nav = nav
	s.state = StateLoading
	err := s.restartLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return err
}

// Reset moves the session back to the begin step.
func (s *Session) Reset() error {
	s.mu.Lock()
	err := s.restartLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return err
}

func (s *Session) restartLocked() error {
	begin, ok := s.nav.begin()
	if !ok {
		s.state = StateError
		s.err = ErrMissingBeginStep
		s.current = choreography.Step{}
		s.next = nil
		s.gate = nil
		return ErrMissingBeginStep
	}
	s.err = nil
	s.enterLocked(begin)
	return nil
}

// enterLocked makes step current and decides the resulting state.
func (s *Session) enterLocked(step choreography.Step) {
	s.current = step
	s.next = s.nav.next(step)
	s.gate = nil

	switch {
	case step.Action == choreography.ActionEnd:
		s.state = StateTerminal
		s.logger.Info("ending reached", zap.String("step", step.ID), zap.String("ending", step.Data.Ending))
		return
	case step.Action != choreography.ActionBegin && step.Trigger != nil:
		s.gate = newGate(step.Trigger, s.resolver)
		s.state = StateWaiting
		if s.gate.Err != nil {
			s.logger.Warn("trigger target unresolved, step stays blocked",
				zap.String("step", step.ID), zap.String("target", step.Trigger.Target))
		}
		if s.position != nil {
			s.evaluateLocked(*s.position)
		}
		return
	}
	s.state = StateReady
}

func (s *Session) evaluateLocked(position story.LatLng) bool {
	if s.state != StateWaiting || s.gate == nil {
		return false
	}
	if !s.gate.measure(position, s.radius) {
		return false
	}
	s.logger.Debug("geofence reached", zap.String("step", s.current.ID), zap.Float64("distance", s.gate.Distance))
	s.releaseLocked()
	return true
}

func (s *Session) releaseLocked() {
	s.gate = nil
	s.state = StateReady
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that put the session in StateError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Current() choreography.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// NextSteps lists the steps reachable from the current one.
func (s *Session) NextSteps() []choreography.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]choreography.Step(nil), s.next...)
}

// Gate returns a copy of the current gate, or nil when the session is not
// waiting.
func (s *Session) Gate() *Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		return nil
	}
	g := *s.gate
	return &g
}

// Ending returns the ending reached, once the session is terminal.
func (s *Session) Ending() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTerminal {
		return "", false
	}
	return s.current.Data.Ending, true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   s.state,
		Current: s.current,
		Next:    append([]choreography.Step(nil), s.next...),
	}
	if s.gate != nil {
		g := *s.gate
		snap.Gate = &g
	}
	if s.state == StateTerminal {
		snap.Ending = s.current.Data.Ending
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.observer != nil {
		s.observer(snap)
	}
}

// Advance follows the goToStep of a linear step.
func (s *Session) Advance() error {
	return s.move(func() (*string, error) {
		if s.current.Action == choreography.ActionChoice {
			return nil, fmt.Errorf("%w: step %s needs a choice", ErrNoSuchTransition, s.current.ID)
		}
		return s.current.GoToStep, nil
	})
}

// Choose follows option i of a choice step.
func (s *Session) Choose(i int) error {
	return s.move(func() (*string, error) {
		if s.current.Action != choreography.ActionChoice {
			return nil, fmt.Errorf("%w: step %s is not a choice", ErrNoSuchTransition, s.current.ID)
		}
		options := s.current.Data.Options
		if i < 0 || i >= len(options) {
			return nil, fmt.Errorf("%w: step %s has no option %d", ErrNoSuchTransition, s.current.ID, i)
		}
		return options[i].GoToStep, nil
	})
}

func (s *Session) move(target func() (*string, error)) error {
	s.mu.Lock()
	switch s.state {
	case StateWaiting:
		s.mu.Unlock()
		return ErrTriggerPending
	case StateTerminal, StateError, StateLoading:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionEnded, state)
	}

	id, err := target()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if id == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: step %s leads nowhere", ErrNoSuchTransition, s.current.ID)
	}
	next, ok := s.nav.step(*id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: step %s not found", ErrNoSuchTransition, *id)
	}
	from := s.current.ID
	s.enterLocked(next)
	s.logger.Debug("advanced", zap.String("from", from), zap.String("to", next.ID), zap.Stringer("state", s.state))
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// JumpTo makes step id current regardless of the current state, for
// previews that start mid-story. The step's trigger applies as usual.
func (s *Session) JumpTo(id string) error {
	s.mu.Lock()
	if s.nav == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no story loaded", ErrNoSuchTransition)
	}
	step, ok := s.nav.step(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: step %s not found", ErrNoSuchTransition, id)
	}
	s.err = nil
	s.enterLocked(step)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

// UpdatePosition records a position sample and re-evaluates a geofence
// gate. It reports whether the sample released the current step.
func (s *Session) UpdatePosition(p story.LatLng) bool {
	s.mu.Lock()
	s.position = &p
	waiting := s.state == StateWaiting
	released := s.evaluateLocked(p)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if waiting {
		s.notify(snap)
	}
	return released
}

// Interact delivers an interaction event. It reports whether the event
// released the current step.
func (s *Session) Interact(e Event) bool {
	s.mu.Lock()
	if s.state != StateWaiting || s.gate == nil || !s.gate.matches(e) {
		s.mu.Unlock()
		return false
	}
	s.logger.Debug("interaction matched", zap.String("step", s.current.ID), zap.String("target", s.gate.Target))
	s.releaseLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return true
}
