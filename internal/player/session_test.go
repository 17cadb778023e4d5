package player

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/geo"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/manifest"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

var ribeira = story.LatLng{Lat: 41.1406, Lng: -8.6132}

// northOf returns the point meters north of p.
func northOf(p story.LatLng, meters float64) story.LatLng {
	return story.LatLng{Lat: p.Lat + meters/geo.EarthRadius*180/math.Pi, Lng: p.Lng}
}

func ptr(s string) *string { return &s }

func gatedChoreography(trigger *choreography.Trigger) *choreography.Choreography {
	return &choreography.Choreography{
		ExperienceName: "Porto Walk",
		Story: []choreography.Step{
			{ID: "b", Action: choreography.ActionBegin, GoToStep: ptr("t")},
			{ID: "t", Action: choreography.ActionText, Trigger: trigger, Data: choreography.Data{Text: "Welcome"}, GoToStep: ptr("q")},
			{ID: "q", Action: choreography.ActionChoice, Data: choreography.Data{
				Text: "Which way?",
				Options: []choreography.Option{
					{Label: "river", GoToStep: ptr("e1")},
					{Label: "tower", GoToStep: ptr("e2")},
					{Label: "unfinished"},
					{Label: "broken", GoToStep: ptr("gone")},
				},
			}},
			{ID: "e1", Action: choreography.ActionEnd, Data: choreography.Data{Ending: "River"}},
			{ID: "e2", Action: choreography.ActionEnd, Data: choreography.Data{Ending: "Tower"}},
		},
	}
}

func TestNewSession(t *testing.T) {
	t.Run("starts at begin", func(t *testing.T) {
		s, err := NewSession(gatedChoreography(nil))
		require.NoError(t, err)
		assert.Equal(t, StateReady, s.State())
		assert.Equal(t, "b", s.Current().ID)
		next := s.NextSteps()
		require.Len(t, next, 1)
		assert.Equal(t, "t", next[0].ID)
	})

	t.Run("missing begin", func(t *testing.T) {
		_, err := NewSession(&choreography.Choreography{Story: []choreography.Step{
			{ID: "e", Action: choreography.ActionEnd},
		}})
		assert.ErrorIs(t, err, ErrMissingBeginStep)
	})

	t.Run("load failure leaves error state", func(t *testing.T) {
		s, err := NewSession(gatedChoreography(nil))
		require.NoError(t, err)
		err = s.Load(&choreography.Choreography{})
		assert.ErrorIs(t, err, ErrMissingBeginStep)
		assert.Equal(t, StateError, s.State())
		assert.ErrorIs(t, s.Err(), ErrMissingBeginStep)
		assert.ErrorIs(t, s.Advance(), ErrSessionEnded)
	})
}

func TestAdvanceAndChoose(t *testing.T) {
	s, err := NewSession(gatedChoreography(nil))
	require.NoError(t, err)

	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	assert.Equal(t, "q", s.Current().ID)
	assert.Len(t, s.NextSteps(), 2, "unresolved options are filtered")

	assert.ErrorIs(t, s.Advance(), ErrNoSuchTransition)
	assert.ErrorIs(t, s.Choose(2), ErrNoSuchTransition)
	assert.ErrorIs(t, s.Choose(3), ErrNoSuchTransition)
	assert.ErrorIs(t, s.Choose(9), ErrNoSuchTransition)
	assert.Equal(t, "q", s.Current().ID, "failed transitions stay on the step")

	require.NoError(t, s.Choose(1))
	assert.Equal(t, StateTerminal, s.State())
	ending, ok := s.Ending()
	require.True(t, ok)
	assert.Equal(t, "Tower", ending)
	assert.ErrorIs(t, s.Advance(), ErrSessionEnded)

	require.NoError(t, s.Reset())
	assert.Equal(t, "b", s.Current().ID)
	_, ok = s.Ending()
	assert.False(t, ok)
}

func TestAdvanceDanglingStep(t *testing.T) {
	s, err := NewSession(&choreography.Choreography{Story: []choreography.Step{
		{ID: "b", Action: choreography.ActionBegin},
	}})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Advance(), ErrNoSuchTransition)
	assert.ErrorIs(t, s.Choose(0), ErrNoSuchTransition)
	assert.Equal(t, StateReady, s.State())
}

func TestGeofenceGate(t *testing.T) {
	trigger := &choreography.Trigger{Interaction: story.TriggerEnter, Target: "Ribeira"}
	resolver := StaticResolver{"Ribeira": ribeira}

	t.Run("blocks until within radius", func(t *testing.T) {
		s, err := NewSession(gatedChoreography(trigger), WithResolver(resolver))
		require.NoError(t, err)

		s.UpdatePosition(northOf(ribeira, 50))
		require.NoError(t, s.Advance())
		assert.Equal(t, StateWaiting, s.State())
		gate := s.Gate()
		require.NotNil(t, gate)
		assert.Equal(t, GateGeofence, gate.Kind)
		assert.True(t, gate.Measured)
		assert.InDelta(t, 50, gate.Distance, 0.01)
		assert.ErrorIs(t, s.Advance(), ErrTriggerPending)

		assert.False(t, s.UpdatePosition(northOf(ribeira, 20)))
		assert.InDelta(t, 20, s.Gate().Distance, 0.01)

		assert.True(t, s.UpdatePosition(northOf(ribeira, 5)))
		assert.Equal(t, StateReady, s.State())
		assert.Nil(t, s.Gate())
		assert.Equal(t, "t", s.Current().ID)

		assert.False(t, s.UpdatePosition(northOf(ribeira, 80)))
		assert.Equal(t, StateReady, s.State(), "released step is not blocked again")
		require.NoError(t, s.Advance())
		assert.Equal(t, "q", s.Current().ID)
	})

	t.Run("already inside on arrival", func(t *testing.T) {
		s, err := NewSession(gatedChoreography(trigger), WithResolver(resolver))
		require.NoError(t, err)
		s.UpdatePosition(northOf(ribeira, 2))
		require.NoError(t, s.Advance())
		assert.Equal(t, StateReady, s.State())
	})

	t.Run("custom radius", func(t *testing.T) {
		s, err := NewSession(gatedChoreography(trigger), WithResolver(resolver), WithGeofenceRadius(60))
		require.NoError(t, err)
		require.NoError(t, s.Advance())
		assert.Equal(t, StateWaiting, s.State())
		assert.False(t, s.Gate().Measured)
		assert.True(t, s.UpdatePosition(northOf(ribeira, 50)))
	})

	t.Run("unresolved target never opens", func(t *testing.T) {
		s, err := NewSession(gatedChoreography(trigger))
		require.NoError(t, err)
		require.NoError(t, s.Advance())

		gate := s.Gate()
		require.NotNil(t, gate)
		assert.ErrorIs(t, gate.Err, ErrUnresolvedTriggerTarget)
		assert.False(t, s.UpdatePosition(ribeira))
		assert.Equal(t, StateWaiting, s.State())
	})
}

func TestInteractionGate(t *testing.T) {
	s, err := NewSession(gatedChoreography(&choreography.Trigger{Interaction: "talk_to", Target: "Guide"}))
	require.NoError(t, err)
	require.NoError(t, s.Advance())

	gate := s.Gate()
	require.NotNil(t, gate)
	assert.Equal(t, GateInteraction, gate.Kind)
	assert.NoError(t, gate.Err)

	assert.False(t, s.UpdatePosition(ribeira))
	assert.False(t, s.Interact(Event{CharacterID: "Fisherman"}))
	assert.False(t, s.Interact(Event{Interaction: "go_near", CharacterID: "Guide"}))
	assert.Equal(t, StateWaiting, s.State())

	assert.True(t, s.Interact(Event{Interaction: "talk_to", ObjectName: "Guide"}))
	assert.Equal(t, StateReady, s.State())
	assert.False(t, s.Interact(Event{CharacterID: "Guide"}))
}

func TestInteractionGateByCharacterID(t *testing.T) {
	ch, _ := choreography.Compile(choreography.Input{
		Nodes: []story.Node{
			{ID: "b", Type: story.NodeBegin},
			{ID: "t", Type: story.NodeText, Data: story.NodeData{
				Name:         "Ready?",
				EntryTrigger: &story.Trigger{Type: story.TriggerInteract, ID: "c1", Name: "Guide"},
			}},
			{ID: "e", Type: story.NodeEnd},
		},
		Edges: []story.Edge{
			{ID: "x1", Source: "b", Target: "t"},
			{ID: "x2", Source: "t", Target: "e"},
		},
		Characters: []story.Character{{ID: "c1", Name: "Guide"}},
	})

	t.Run("id", func(t *testing.T) {
		s, err := NewSession(ch)
		require.NoError(t, err)
		require.NoError(t, s.Advance())
		require.Equal(t, StateWaiting, s.State())

		assert.False(t, s.Interact(Event{CharacterID: "c2"}))
		assert.True(t, s.Interact(Event{CharacterID: "c1"}))
		assert.Equal(t, StateReady, s.State())
	})

	t.Run("name", func(t *testing.T) {
		s, err := NewSession(ch)
		require.NoError(t, err)
		require.NoError(t, s.Advance())
		assert.True(t, s.Interact(Event{ObjectName: "Guide"}))
	})

	t.Run("exported document has no id", func(t *testing.T) {
		b, err := json.Marshal(ch)
		require.NoError(t, err)
		parsed, err := choreography.Parse(b)
		require.NoError(t, err)

		s, err := NewSession(parsed)
		require.NoError(t, err)
		require.NoError(t, s.Advance())
		assert.False(t, s.Interact(Event{CharacterID: "c1"}))
		assert.True(t, s.Interact(Event{CharacterID: "Guide"}))
	})
}

func TestBeginTriggerIgnored(t *testing.T) {
	ch := gatedChoreography(nil)
	ch.Story[0].Trigger = &choreography.Trigger{Interaction: "talk_to", Target: "Guide"}
	s, err := NewSession(ch)
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
}

func TestJumpTo(t *testing.T) {
	s, err := NewSession(gatedChoreography(&choreography.Trigger{Interaction: "talk_to", Target: "Guide"}))
	require.NoError(t, err)

	require.NoError(t, s.JumpTo("q"))
	assert.Equal(t, StateReady, s.State())
	require.NoError(t, s.Choose(1))
	assert.Equal(t, StateTerminal, s.State())

	require.NoError(t, s.JumpTo("t"), "jumping works from a terminal session")
	assert.Equal(t, StateWaiting, s.State())
	require.NotNil(t, s.Gate())

	err = s.JumpTo("nowhere")
	assert.ErrorIs(t, err, ErrNoSuchTransition)
	assert.Equal(t, "t", s.Current().ID)
}

func TestGraphSession(t *testing.T) {
	nodes := []story.Node{
		{ID: "b", Type: story.NodeBegin},
		{ID: "t1", Type: story.NodeText, Data: story.NodeData{Name: "one"}},
		{ID: "t2", Type: story.NodeText, Data: story.NodeData{Name: "two"}},
		{ID: "img", Type: story.NodeImage},
		{ID: "e", Type: story.NodeEnd, Data: story.NodeData{EndingID: "Done"}},
	}
	edges := []story.Edge{
		{ID: "1", Source: "b", Target: "t1"},
		{ID: "2", Source: "b", Target: "t2"},
		{ID: "3", Source: "b", Target: "img"},
		{ID: "4", Source: "t1", Target: "e"},
	}
	s, err := NewGraphSession(nodes, edges)
	require.NoError(t, err)

	var ids []string
	for _, step := range s.NextSteps() {
		ids = append(ids, step.ID)
	}
	assert.Equal(t, []string{"t1", "t2"}, ids)

	require.NoError(t, s.Advance())
	assert.Equal(t, "one", s.Current().Data.Text)
	require.NoError(t, s.Advance())
	ending, ok := s.Ending()
	require.True(t, ok)
	assert.Equal(t, "Done", ending)

	_, err = NewGraphSession(nodes[1:], edges)
	assert.ErrorIs(t, err, ErrMissingBeginStep)
}

func TestObserver(t *testing.T) {
	var mu sync.Mutex
	var states []State
	s, err := NewSession(gatedChoreography(nil), WithObserver(func(snap Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	}))
	require.NoError(t, err)
	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	require.NoError(t, s.Choose(0))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateReady, StateReady, StateReady, StateTerminal}, states)
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	var position atomic.Pointer[story.LatLng]
	far := northOf(ribeira, 50)
	position.Store(&far)
	var calls atomic.Int32
	src := PositionFunc(func(ctx context.Context) (story.LatLng, error) {
		if calls.Add(1)%3 == 0 {
			return story.LatLng{}, errors.New("gps unavailable")
		}
		return *position.Load(), nil
	})

	s, err := NewSession(
		gatedChoreography(&choreography.Trigger{Interaction: story.TriggerEnter, Target: "Ribeira"}),
		WithResolver(StaticResolver{"Ribeira": ribeira}),
		WithPollInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	require.NoError(t, s.Advance())

	s.Watch(context.Background(), src)
	defer s.Close()

	require.Eventually(t, func() bool {
		g := s.Gate()
		return g != nil && g.Measured
	}, time.Second, time.Millisecond)
	assert.Equal(t, StateWaiting, s.State())

	near := northOf(ribeira, 5)
	position.Store(&near)
	require.Eventually(t, func() bool { return s.State() == StateReady }, time.Second, time.Millisecond)

	s.Close()
	s.Close()
}

func TestWatchStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := NewSession(gatedChoreography(nil), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Watch(ctx, PositionFunc(func(ctx context.Context) (story.LatLng, error) {
		return ribeira, nil
	}))
	s.Watch(ctx, PositionFunc(func(ctx context.Context) (story.LatLng, error) {
		return ribeira, nil
	}))
	cancel()
	s.Close()
}

func TestWatchConcurrentReplace(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := NewSession(gatedChoreography(nil), WithPollInterval(time.Millisecond))
	require.NoError(t, err)

	src := PositionFunc(func(ctx context.Context) (story.LatLng, error) {
		return ribeira, nil
	})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Watch(context.Background(), src)
		}()
	}
	wg.Wait()
	s.Close()
}

func TestResolvers(t *testing.T) {
	ar := &manifest.ARManifest{
		Locations: []manifest.ARLocation{
			{Location: manifest.Location{ID: "l1", Name: "Ribeira"}, TriggerType: &manifest.ARTrigger{Type: manifest.TriggerGPS, Coords: &ribeira}},
			{Location: manifest.Location{ID: "l2", Name: "Tower"}, TriggerType: &manifest.ARTrigger{Type: manifest.TriggerQRCode, Value: "x"}},
		},
	}
	r := ResolverFromAR(ar)
	for _, key := range []string{"l1", "Ribeira"} {
		got, ok := r.Resolve(key)
		assert.True(t, ok, key)
		assert.Equal(t, ribeira, got)
	}
	_, ok := r.Resolve("Tower")
	assert.False(t, ok)

	doc := &story.Document{
		Locations: []story.Location{{ID: "l2", Name: "Tower", ARType: &story.ARType{TriggerMode: story.TriggerModeQRCode, QRCode: "x"}}},
		Maps: []story.Map{{Anchors: []story.Anchor{
			{AnchorID: "a", AnchorType: story.AnchorTypeAnchor, Coords: ribeira, LocationID: "l2"},
		}}},
	}
	got, ok := ResolverFromDocument(doc).Resolve("Tower")
	assert.True(t, ok)
	assert.Equal(t, ribeira, got)
}
