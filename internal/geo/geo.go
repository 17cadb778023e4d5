// Package geo holds the distance and map georeferencing math used by the
// editor's map anchors and the player's geofence triggers.
package geo

import (
	"math"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// EarthRadius is the mean earth radius in meters.
const EarthRadius = 6371000.0

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the haversine distance in meters between two coordinates.
func Distance(a, b story.LatLng) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PixelToCoords converts an image position into real coordinates using a
// local flat-earth approximation around the origin anchor. Image y grows
// downwards, so it maps to decreasing latitude. scale is meters per pixel.
func PixelToCoords(origin story.LatLng, originPx, px story.Pixel, scale float64) story.LatLng {
	east := (px.X - originPx.X) * scale
	north := -(px.Y - originPx.Y) * scale
	out := story.LatLng{Lat: origin.Lat + degrees(north/EarthRadius), Lng: origin.Lng}
	// Longitude is undefined at the poles.
	if cos := math.Cos(radians(origin.Lat)); math.Abs(cos) > 1e-9 {
		out.Lng += degrees(east / (EarthRadius * cos))
	}
	return out
}

// CoordsToPixel is the inverse of PixelToCoords.
func CoordsToPixel(origin story.LatLng, originPx story.Pixel, coords story.LatLng, scale float64) story.Pixel {
	if scale == 0 {
		return originPx
	}
	north := radians(coords.Lat-origin.Lat) * EarthRadius
	east := radians(coords.Lng-origin.Lng) * EarthRadius * math.Cos(radians(origin.Lat))
	return story.Pixel{
		X: originPx.X + east/scale,
		Y: originPx.Y - north/scale,
	}
}

// Georeference recomputes the coordinates of every anchor in m from its
// origin anchor. Maps without an origin are left untouched.
func Georeference(m *story.Map) {
	origin := m.Origin()
	if origin < 0 {
		return
	}
	base := m.Anchors[origin]
	for i := range m.Anchors {
		if i == origin {
			continue
		}
		m.Anchors[i].Coords = PixelToCoords(base.Coords, base.ImgCoords, m.Anchors[i].ImgCoords, m.Scale)
	}
}
