package story

import "time"

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// NodeData holds every field any node type can carry. Which fields apply to
// a given type is declared by its schema (see Schema).
type NodeData struct {
	Name         string     `json:"name,omitempty" yaml:"name,omitempty"`
	Text         string     `json:"text,omitempty" yaml:"text,omitempty"`
	Question     string     `json:"question,omitempty" yaml:"question,omitempty"`
	Answers      []string   `json:"answers,omitempty" yaml:"answers,omitempty"`
	Character    *Character `json:"character,omitempty" yaml:"character,omitempty"`
	Location     *string    `json:"location,omitempty" yaml:"location,omitempty"`
	EntryTrigger *Trigger   `json:"entry_trigger,omitempty" yaml:"entry_trigger,omitempty"`
	EndingID     string     `json:"id,omitempty" yaml:"id,omitempty"`
	File         string     `json:"file,omitempty" yaml:"file,omitempty"`
	Path         string     `json:"path,omitempty" yaml:"path,omitempty"`
	Dialog       *Dialog    `json:"dialog,omitempty" yaml:"dialog,omitempty"`
}

type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
}

type Character struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Image       string  `json:"image,omitempty" yaml:"image,omitempty"`
	ARType      *ARType `json:"ar_type,omitempty" yaml:"ar_type,omitempty"`
}

// NotFoundCharacter replaces embedded characters whose id is no longer in
// the catalog.
var NotFoundCharacter = Character{
	ID:   "not_found",
	Name: "Character not found",
}

type Location struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	MarkerType  string  `json:"markerType,omitempty" yaml:"markerType,omitempty"`
	ARType      *ARType `json:"ar_type,omitempty" yaml:"ar_type,omitempty"`
}

const (
	TriggerModeQRCode        = "QR-Code"
	TriggerModeImageTracking = "Image Tracking"
)

type ARType struct {
	TriggerMode string `json:"trigger_mode" yaml:"trigger_mode"`
	QRCode      string `json:"qr_code,omitempty" yaml:"qr_code,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
}

type Interaction struct {
	Type     string `json:"type" yaml:"type"`
	Label    string `json:"label" yaml:"label"`
	MethodAR string `json:"methodAr,omitempty" yaml:"methodAr,omitempty"`
	MethodVR string `json:"methodVr,omitempty" yaml:"methodVr,omitempty"`
}

const (
	TriggerEnter    = "enter"
	TriggerInteract = "interact"
)

type Trigger struct {
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

const (
	AnchorTypeAnchor = "anchor"
	AnchorTypeMarker = "marker"
)

type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type Pixel struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Anchor struct {
	AnchorID   string `json:"anchorId" yaml:"anchorId"`
	AnchorType string `json:"anchorType" yaml:"anchorType"`
	Coords     LatLng `json:"coords" yaml:"coords"`
	ImgCoords  Pixel  `json:"imgCoords" yaml:"imgCoords"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	LocationID string `json:"locationId,omitempty" yaml:"locationId,omitempty"`
}

type MapSize struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type Map struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	MapSize MapSize  `json:"mapSize" yaml:"mapSize"`
	Scale   float64  `json:"scale" yaml:"scale"`
	Anchors []Anchor `json:"anchors" yaml:"anchors"`
}

// Origin returns the index of the georeferencing anchor, or -1.
func (m *Map) Origin() int {
	for i, anchor := range m.Anchors {
		if anchor.AnchorType == AnchorTypeAnchor {
			return i
		}
	}
	return -1
}

// Dialog is the sub-graph owned by a character node.
type Dialog struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// EndNames returns the branch identifiers of the dialog's end nodes in node
// order.
func (d *Dialog) EndNames() []string {
	if d == nil {
		return nil
	}
	var names []string
	for _, node := range d.Nodes {
		if node.Type == DialogEnd {
			names = append(names, node.Data.Name)
		}
	}
	return names
}

type Document struct {
	ID             string        `json:"id" yaml:"id"`
	Title          string        `json:"title" yaml:"title"`
	Nodes          []Node        `json:"nodes" yaml:"nodes"`
	Edges          []Edge        `json:"edges" yaml:"edges"`
	Characters     []Character   `json:"characters" yaml:"characters"`
	Maps           []Map         `json:"maps" yaml:"maps"`
	Locations      []Location    `json:"locations" yaml:"locations"`
	Interactions   []Interaction `json:"interactions" yaml:"interactions"`
	Exported       bool          `json:"exported,omitempty" yaml:"exported,omitempty"`
	ExperienceName string        `json:"experienceName" yaml:"experienceName"`
	Description    string        `json:"description" yaml:"description"`
	Tags           []string      `json:"tags" yaml:"tags"`
	StoryEndings   []string      `json:"storyEndings,omitempty" yaml:"storyEndings,omitempty"`
	LastModified   time.Time     `json:"lastModified" yaml:"lastModified"`
}
