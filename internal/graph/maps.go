package graph

import (
	"fmt"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/geo"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

func (s *Store) Maps() []story.Map {
	return s.Document().Maps
}

func (s *Store) mapIndex(id string) int {
	for i := range s.doc.Maps {
		if s.doc.Maps[i].ID == id {
			return i
		}
	}
	return -1
}

// AddMap registers a map and georeferences its anchors.
func (s *Store) AddMap(m story.Map) (story.Map, error) {
	if m.ID == "" {
		m.ID = s.newID()
	}
	if s.mapIndex(m.ID) >= 0 {
		return story.Map{}, fmt.Errorf("map %s already exists", m.ID)
	}
	m = m.Clone()
	seen := make(map[string]struct{}, len(m.Anchors))
	for _, anchor := range m.Anchors {
		if _, ok := seen[anchor.AnchorID]; ok {
			return story.Map{}, fmt.Errorf("%w: %s", ErrDuplicateAnchor, anchor.AnchorID)
		}
		seen[anchor.AnchorID] = struct{}{}
	}
	geo.Georeference(&m)
	s.doc.Maps = append(s.doc.Maps, m)
	return m.Clone(), nil
}

func (s *Store) RemoveMap(id string) error {
	idx := s.mapIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrMapNotFound, id)
	}
	s.doc.Maps = append(s.doc.Maps[:idx], s.doc.Maps[idx+1:]...)
	return nil
}

func (s *Store) anchor(mapID, anchorID string) (*story.Map, int, error) {
	idx := s.mapIndex(mapID)
	if idx < 0 {
		return nil, -1, fmt.Errorf("%w: %s", ErrMapNotFound, mapID)
	}
	m := &s.doc.Maps[idx]
	for i := range m.Anchors {
		if m.Anchors[i].AnchorID == anchorID {
			return m, i, nil
		}
	}
	return m, -1, fmt.Errorf("%w: %s", ErrAnchorNotFound, anchorID)
}

// PlaceAnchor adds an anchor or marker to a map.
func (s *Store) PlaceAnchor(mapID string, anchor story.Anchor) (story.Anchor, error) {
	if anchor.AnchorID == "" {
		anchor.AnchorID = s.newID()
	}
	m, _, err := s.anchor(mapID, anchor.AnchorID)
	if err == nil {
		return story.Anchor{}, fmt.Errorf("%w: %s", ErrDuplicateAnchor, anchor.AnchorID)
	}
	if m == nil {
		return story.Anchor{}, err
	}
	m.Anchors = append(m.Anchors, anchor)
	geo.Georeference(m)
	return m.Anchors[len(m.Anchors)-1], nil
}

// MoveAnchor drags an anchor to a new image position. Moving the origin
// shifts every other anchor's coordinates.
func (s *Store) MoveAnchor(mapID, anchorID string, px story.Pixel) (story.Anchor, error) {
	m, idx, err := s.anchor(mapID, anchorID)
	if err != nil {
		return story.Anchor{}, err
	}
	m.Anchors[idx].ImgCoords = px
	geo.Georeference(m)
	return m.Anchors[idx], nil
}

// SetAnchorCoords pins an anchor to real coordinates. On the origin this
// re-georeferences the whole map; on any other anchor the image position is
// derived from the coordinates instead.
func (s *Store) SetAnchorCoords(mapID, anchorID string, coords story.LatLng) (story.Anchor, error) {
	m, idx, err := s.anchor(mapID, anchorID)
	if err != nil {
		return story.Anchor{}, err
	}
	origin := m.Origin()
	if origin < 0 || origin == idx {
		m.Anchors[idx].Coords = coords
		geo.Georeference(m)
		return m.Anchors[idx], nil
	}
	base := m.Anchors[origin]
	m.Anchors[idx].ImgCoords = geo.CoordsToPixel(base.Coords, base.ImgCoords, coords, m.Scale)
	m.Anchors[idx].Coords = coords
	return m.Anchors[idx], nil
}

func (s *Store) RemoveAnchor(mapID, anchorID string) error {
	m, idx, err := s.anchor(mapID, anchorID)
	if err != nil {
		return err
	}
	m.Anchors = append(m.Anchors[:idx], m.Anchors[idx+1:]...)
	geo.Georeference(m)
	return nil
}
