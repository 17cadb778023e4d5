package player

import (
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/manifest"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// TargetResolver maps a trigger target to real-world coordinates.
type TargetResolver interface {
	Resolve(target string) (story.LatLng, bool)
}

type ResolverFunc func(target string) (story.LatLng, bool)

func (f ResolverFunc) Resolve(target string) (story.LatLng, bool) { return f(target) }

// StaticResolver resolves from a fixed table keyed by target name or id.
type StaticResolver map[string]story.LatLng

func (r StaticResolver) Resolve(target string) (story.LatLng, bool) {
	coords, ok := r[target]
	return coords, ok
}

// ResolverFromAR indexes every GPS-triggered character and location of an
// AR manifest by both name and id.
func ResolverFromAR(ar *manifest.ARManifest) StaticResolver {
	r := StaticResolver{}
	if ar == nil {
		return r
	}
	add := func(id, name string, trigger *manifest.ARTrigger) {
		if trigger == nil || trigger.Type != manifest.TriggerGPS || trigger.Coords == nil {
			return
		}
		for _, key := range []string{id, name} {
			if _, taken := r[key]; key != "" && !taken {
				r[key] = *trigger.Coords
			}
		}
	}
	for _, l := range ar.Locations {
		add(l.ID, l.Name, l.TriggerType)
	}
	for _, c := range ar.Characters {
		add(c.ID, c.Name, c.TriggerType)
	}
	return r
}

// ResolverFromDocument resolves targets straight from a story's map
// anchors, for previews that have no exported manifest. Unlike the AR
// manifest, anchors are used even for entries tracked by QR code or image.
func ResolverFromDocument(doc *story.Document) StaticResolver {
	gps := manifest.GPSIndex(doc.Maps)
	r := StaticResolver{}
	add := func(id, name string) {
		coords, ok := gps[id]
		if !ok {
			return
		}
		for _, key := range []string{id, name} {
			if _, taken := r[key]; key != "" && !taken {
				r[key] = coords
			}
		}
	}
	for _, l := range doc.Locations {
		add(l.ID, l.Name)
	}
	for _, c := range doc.Characters {
		add(c.ID, c.Name)
	}
	return r
}
