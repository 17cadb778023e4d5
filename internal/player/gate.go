package player

import (
	"fmt"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/geo"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

type GateKind int

const (
	// GateGeofence waits for the player to get close to a location.
	GateGeofence GateKind = iota + 1
	// GateInteraction waits for an interaction event naming the target.
	GateInteraction
)

func (k GateKind) String() string {
	switch k {
	case GateGeofence:
		return "geofence"
	case GateInteraction:
		return "interaction"
	}
	return "unknown"
}

// Gate is the blocking condition of a step waiting on its trigger.
type Gate struct {
	Kind        GateKind
	Interaction string
	Target      string
	// TargetID is the catalog id of the target, when the step was compiled
	// from a story graph. Events may name the target by either.
	TargetID string
	// Distance is the last measured distance to the target in meters. Only
	// meaningful when Measured is set.
	Distance float64
	Measured bool
	// Err is ErrUnresolvedTriggerTarget when the target has no coordinates.
	// Such a gate never opens.
	Err error

	coords   story.LatLng
	resolved bool
}

// Event is an interaction reported by the rendering host.
type Event struct {
	Interaction string
	CharacterID string
	ObjectName  string
}

func (e Event) names(targets ...string) bool {
	for _, target := range targets {
		if target != "" && (e.CharacterID == target || e.ObjectName == target) {
			return true
		}
	}
	return false
}

func newGate(trigger *choreography.Trigger, resolver TargetResolver) *Gate {
	g := &Gate{
		Kind:        GateInteraction,
		Interaction: trigger.Interaction,
		Target:      trigger.Target,
		TargetID:    trigger.TargetID,
	}
	if trigger.Interaction != story.TriggerEnter {
		return g
	}
	g.Kind = GateGeofence
	if resolver != nil {
		g.coords, g.resolved = resolver.Resolve(trigger.Target)
		if !g.resolved && trigger.TargetID != "" {
			g.coords, g.resolved = resolver.Resolve(trigger.TargetID)
		}
	}
	if !g.resolved {
		g.Err = fmt.Errorf("%w: %s", ErrUnresolvedTriggerTarget, trigger.Target)
	}
	return g
}

// measure updates the distance and reports whether the player is inside
// the geofence.
func (g *Gate) measure(position story.LatLng, radius float64) bool {
	if g.Kind != GateGeofence || !g.resolved {
		return false
	}
	g.Distance = geo.Distance(position, g.coords)
	g.Measured = true
	return g.Distance < radius
}

func (g *Gate) matches(e Event) bool {
	if g.Kind != GateInteraction {
		return false
	}
	if e.Interaction != "" && e.Interaction != g.Interaction {
		return false
	}
	return e.names(g.Target, g.TargetID)
}
