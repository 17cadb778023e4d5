package geo

import (
	"math"
	"testing"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

const tolerance = 1e-6

func TestDistance(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		p := story.LatLng{Lat: 41.15, Lng: -8.61}
		if d := Distance(p, p); d != 0 {
			t.Fatalf("expected 0, got %f", d)
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := Distance(story.LatLng{Lat: 0, Lng: 0}, story.LatLng{Lat: 1, Lng: 0})
		want := EarthRadius * math.Pi / 180
		if math.Abs(d-want) > 1e-3 {
			t.Fatalf("expected %f, got %f", want, d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := story.LatLng{Lat: 41.15, Lng: -8.61}
		b := story.LatLng{Lat: 41.16, Lng: -8.60}
		if math.Abs(Distance(a, b)-Distance(b, a)) > tolerance {
			t.Fatalf("expected symmetric distance")
		}
	})
}

func TestPixelToCoords(t *testing.T) {
	t.Run("marker east of the origin", func(t *testing.T) {
		got := PixelToCoords(story.LatLng{}, story.Pixel{}, story.Pixel{X: 100, Y: 0}, 1)
		wantLng := 100 / EarthRadius * (180 / math.Pi)
		if math.Abs(got.Lng-wantLng) > 1e-12 {
			t.Fatalf("expected lng %g, got %g", wantLng, got.Lng)
		}
		if math.Abs(got.Lat) > 1e-12 {
			t.Fatalf("expected lat 0, got %g", got.Lat)
		}
	})

	t.Run("image y grows southwards", func(t *testing.T) {
		got := PixelToCoords(story.LatLng{Lat: 10, Lng: 10}, story.Pixel{}, story.Pixel{Y: 50}, 2)
		if got.Lat >= 10 {
			t.Fatalf("expected latitude to decrease, got %f", got.Lat)
		}
	})

	t.Run("distance matches pixel offset", func(t *testing.T) {
		origin := story.LatLng{Lat: 41.1496, Lng: -8.6109}
		got := PixelToCoords(origin, story.Pixel{X: 10, Y: 10}, story.Pixel{X: 10, Y: 110}, 0.5)
		if d := Distance(origin, got); math.Abs(d-50) > 0.01 {
			t.Fatalf("expected ~50m, got %f", d)
		}
	})
}

func TestPixelToCoords_Pole(t *testing.T) {
	for _, lat := range []float64{90, -90} {
		origin := story.LatLng{Lat: lat, Lng: 12}
		got := PixelToCoords(origin, story.Pixel{}, story.Pixel{X: 100, Y: 20}, 1)
		if math.IsNaN(got.Lng) || math.IsInf(got.Lng, 0) || math.IsNaN(got.Lat) {
			t.Fatalf("expected finite coordinates at lat %g, got %+v", lat, got)
		}
		if got.Lng != 12 {
			t.Fatalf("expected origin longitude at lat %g, got %g", lat, got.Lng)
		}
	}
}

func TestPixelRoundTrip(t *testing.T) {
	origins := []story.LatLng{{Lat: 0, Lng: 0}, {Lat: 41.1496, Lng: -8.6109}, {Lat: -33.86, Lng: 151.2}}
	offsets := []story.Pixel{{X: 100, Y: 0}, {X: -250, Y: 40}, {X: 3, Y: -977}}
	originPx := story.Pixel{X: 120, Y: 80}

	for _, origin := range origins {
		for _, offset := range offsets {
			px := story.Pixel{X: originPx.X + offset.X, Y: originPx.Y + offset.Y}
			coords := PixelToCoords(origin, originPx, px, 1.5)
			back := CoordsToPixel(origin, originPx, coords, 1.5)
			if math.Abs(back.X-px.X) > tolerance || math.Abs(back.Y-px.Y) > tolerance {
				t.Fatalf("round trip mismatch for %+v at %+v: got %+v", px, origin, back)
			}
		}
	}
}

func TestGeoreference(t *testing.T) {
	m := &story.Map{
		Scale: 1,
		Anchors: []story.Anchor{
			{AnchorID: "m1", AnchorType: story.AnchorTypeMarker, ImgCoords: story.Pixel{X: 100}},
			{AnchorID: "a1", AnchorType: story.AnchorTypeAnchor, Coords: story.LatLng{Lat: 1, Lng: 2}},
		},
	}
	Georeference(m)

	if m.Anchors[1].Coords != (story.LatLng{Lat: 1, Lng: 2}) {
		t.Fatalf("expected origin coordinates to be untouched, got %+v", m.Anchors[1].Coords)
	}
	want := PixelToCoords(story.LatLng{Lat: 1, Lng: 2}, story.Pixel{}, story.Pixel{X: 100}, 1)
	if m.Anchors[0].Coords != want {
		t.Fatalf("expected %+v, got %+v", want, m.Anchors[0].Coords)
	}
}
