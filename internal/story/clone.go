package story

func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

func (d NodeData) Clone() NodeData {
	if d.Answers != nil {
		d.Answers = append([]string{}, d.Answers...)
	}
	if d.Character != nil {
		c := d.Character.Clone()
		d.Character = &c
	}
	if d.Location != nil {
		loc := *d.Location
		d.Location = &loc
	}
	if d.EntryTrigger != nil {
		trigger := *d.EntryTrigger
		d.EntryTrigger = &trigger
	}
	if d.Dialog != nil {
		d.Dialog = d.Dialog.Clone()
	}
	return d
}

func (c Character) Clone() Character {
	if c.ARType != nil {
		ar := *c.ARType
		c.ARType = &ar
	}
	return c
}

func (l Location) Clone() Location {
	if l.ARType != nil {
		ar := *l.ARType
		l.ARType = &ar
	}
	return l
}

func (m Map) Clone() Map {
	m.Anchors = append([]Anchor(nil), m.Anchors...)
	return m
}

func (d *Dialog) Clone() *Dialog {
	if d == nil {
		return nil
	}
	return &Dialog{Nodes: CloneNodes(d.Nodes), Edges: append([]Edge(nil), d.Edges...)}
}

func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, node := range nodes {
		out[i] = node.Clone()
	}
	return out
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Nodes = CloneNodes(d.Nodes)
	out.Edges = append([]Edge(nil), d.Edges...)
	if d.Characters != nil {
		out.Characters = make([]Character, len(d.Characters))
		for i, c := range d.Characters {
			out.Characters[i] = c.Clone()
		}
	}
	if d.Locations != nil {
		out.Locations = make([]Location, len(d.Locations))
		for i, l := range d.Locations {
			out.Locations[i] = l.Clone()
		}
	}
	if d.Maps != nil {
		out.Maps = make([]Map, len(d.Maps))
		for i, m := range d.Maps {
			out.Maps[i] = m.Clone()
		}
	}
	out.Interactions = append([]Interaction(nil), d.Interactions...)
	out.Tags = append([]string(nil), d.Tags...)
	out.StoryEndings = append([]string(nil), d.StoryEndings...)
	return &out
}
