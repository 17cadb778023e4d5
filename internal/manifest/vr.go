package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

// Mapping resolves character and location names to VR asset ids.
type Mapping struct {
	Actors    map[string]string `yaml:"actors" json:"actors"`
	Locations map[string]string `yaml:"locations" json:"locations"`
}

// LoadMapping reads the actor and location mapping files. Each file is a
// flat name: asset-id map in YAML or JSON. Empty paths are skipped.
func LoadMapping(actorsPath, locationsPath string) (Mapping, error) {
	var m Mapping
	var err error
	if m.Actors, err = loadNameMap(actorsPath); err != nil {
		return Mapping{}, fmt.Errorf("loading vr actor mapping: %w", err)
	}
	if m.Locations, err = loadNameMap(locationsPath); err != nil {
		return Mapping{}, fmt.Errorf("loading vr location mapping: %w", err)
	}
	return m, nil
}

func loadNameMap(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

type VRCharacter struct {
	Character
	ThreeDObject *string `json:"threeDObject"`
}

type VRLocation struct {
	Location
	ThreeDObject *string `json:"threeDObject"`
}

type VRInteraction struct {
	Interaction
	Method string `json:"method,omitempty"`
}

type VRManifest struct {
	Characters   []VRCharacter   `json:"characters"`
	Locations    []VRLocation    `json:"locations"`
	Interactions []VRInteraction `json:"interactions"`
}

func lookup(m map[string]string, name string) *string {
	asset, ok := m[name]
	if !ok {
		return nil
	}
	return &asset
}

func BuildVR(cat Catalog, mapping Mapping) *VRManifest {
	out := &VRManifest{
		Characters:   make([]VRCharacter, 0, len(cat.Characters)),
		Locations:    make([]VRLocation, 0, len(cat.Locations)),
		Interactions: make([]VRInteraction, 0, len(cat.Interactions)),
	}
	for _, c := range cat.Characters {
		out.Characters = append(out.Characters, VRCharacter{
			Character:    baseCharacter(c),
			ThreeDObject: lookup(mapping.Actors, c.Name),
		})
	}
	for _, l := range cat.Locations {
		out.Locations = append(out.Locations, VRLocation{
			Location:     baseLocation(l),
			ThreeDObject: lookup(mapping.Locations, l.Name),
		})
	}
	for _, i := range cat.Interactions {
		out.Interactions = append(out.Interactions, vrInteraction(i))
	}
	return out
}

func vrInteraction(i story.Interaction) VRInteraction {
	return VRInteraction{Interaction: Interaction{Type: i.Type, Label: i.Label}, Method: i.MethodVR}
}
