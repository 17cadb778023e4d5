// Package manifest derives the platform catalogs shipped next to a
// choreography: a platform-agnostic base manifest, a VR manifest carrying
// 3D asset ids and an AR manifest carrying tracking triggers.
//
// Builders read a snapshot and never fail. Missing optional data becomes
// null in the output.
package manifest

import (
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// Catalog is the story snapshot every builder reads from.
type Catalog struct {
	Characters   []story.Character
	Locations    []story.Location
	Interactions []story.Interaction
}

func CatalogFromDocument(doc *story.Document) Catalog {
	return Catalog{
		Characters:   doc.Characters,
		Locations:    doc.Locations,
		Interactions: doc.Interactions,
	}
}

type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type Location struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Interaction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

type BaseManifest struct {
	Characters   []Character   `json:"characters"`
	Locations    []Location    `json:"locations"`
	Interactions []Interaction `json:"interactions"`
}

func baseCharacter(c story.Character) Character {
	return Character{ID: c.ID, Name: c.Name, Description: c.Description, Image: c.Image}
}

func baseLocation(l story.Location) Location {
	return Location{ID: l.ID, Name: l.Name, Description: l.Description}
}

func BuildBase(cat Catalog) *BaseManifest {
	out := &BaseManifest{
		Characters:   make([]Character, 0, len(cat.Characters)),
		Locations:    make([]Location, 0, len(cat.Locations)),
		Interactions: make([]Interaction, 0, len(cat.Interactions)),
	}
	for _, c := range cat.Characters {
		out.Characters = append(out.Characters, baseCharacter(c))
	}
	for _, l := range cat.Locations {
		out.Locations = append(out.Locations, baseLocation(l))
	}
	for _, i := range cat.Interactions {
		out.Interactions = append(out.Interactions, Interaction{Type: i.Type, Label: i.Label})
	}
	return out
}
