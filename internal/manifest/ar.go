package manifest

import (
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

const (
	TriggerQRCode        = "qr_code"
	TriggerImageTracking = "image_tracking"
	TriggerGPS           = "gps"
)

// ARTrigger is how the AR player detects a character or location.
// Value holds the QR text or the tracked image filename; Coords is set for
// GPS triggers.
type ARTrigger struct {
	Type   string        `json:"type"`
	Value  string        `json:"value,omitempty"`
	Coords *story.LatLng `json:"coords,omitempty"`
}

type ARCharacter struct {
	Character
	TriggerType *ARTrigger `json:"trigger_type"`
}

type ARLocation struct {
	Location
	TriggerType *ARTrigger `json:"trigger_type"`
}

type ARInteraction struct {
	Interaction
	Method string `json:"method,omitempty"`
}

type ARManifest struct {
	Characters   []ARCharacter   `json:"characters"`
	Locations    []ARLocation    `json:"locations"`
	Interactions []ARInteraction `json:"interactions"`
}

// GPSIndex flattens the anchors of every map into locationId -> coords. The
// first anchor seen for a location wins.
func GPSIndex(maps []story.Map) map[string]story.LatLng {
	index := make(map[string]story.LatLng)
	for _, m := range maps {
		for _, anchor := range m.Anchors {
			if anchor.LocationID == "" {
				continue
			}
			if _, ok := index[anchor.LocationID]; !ok {
				index[anchor.LocationID] = anchor.Coords
			}
		}
	}
	return index
}

// resolveTrigger applies the priority order: explicit QR code, explicit
// tracked image, derived GPS position, nothing.
func resolveTrigger(id string, ar *story.ARType, gps map[string]story.LatLng) *ARTrigger {
	if ar != nil {
		switch ar.TriggerMode {
		case story.TriggerModeQRCode:
			if ar.QRCode != "" {
				return &ARTrigger{Type: TriggerQRCode, Value: ar.QRCode}
			}
		case story.TriggerModeImageTracking:
			if ar.Image != "" {
				return &ARTrigger{Type: TriggerImageTracking, Value: ar.Image}
			}
		}
	}
	if coords, ok := gps[id]; ok {
		return &ARTrigger{Type: TriggerGPS, Coords: &coords}
	}
	return nil
}

func BuildAR(cat Catalog, maps []story.Map) *ARManifest {
	gps := GPSIndex(maps)
	out := &ARManifest{
		Characters:   make([]ARCharacter, 0, len(cat.Characters)),
		Locations:    make([]ARLocation, 0, len(cat.Locations)),
		Interactions: make([]ARInteraction, 0, len(cat.Interactions)),
	}
	for _, c := range cat.Characters {
		out.Characters = append(out.Characters, ARCharacter{
			Character:   baseCharacter(c),
			TriggerType: resolveTrigger(c.ID, c.ARType, gps),
		})
	}
	for _, l := range cat.Locations {
		out.Locations = append(out.Locations, ARLocation{
			Location:    baseLocation(l),
			TriggerType: resolveTrigger(l.ID, l.ARType, gps),
		})
	}
	for _, i := range cat.Interactions {
		out.Interactions = append(out.Interactions, ARInteraction{
			Interaction: Interaction{Type: i.Type, Label: i.Label},
			Method:      i.MethodAR,
		})
	}
	return out
}
