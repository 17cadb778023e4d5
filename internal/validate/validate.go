// Package validate lints story documents before they are compiled or
// played.
package validate

import (
	"fmt"

	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/choreography"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/player"
	"github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeMissingBegin       = "missing_begin"
	codeDuplicateBegin     = "duplicate_begin"
	codeMissingEnd         = "missing_end"
	codeDanglingEdge       = "dangling_edge"
	codeDuplicateHandle    = "duplicate_handle"
	codeUnmappedNodeType   = "unmapped_node_type"
	codeUnresolvedTrigger  = "unresolved_trigger"
	codeMissingCharacter   = "missing_character"
	codeDialogMissingBegin = "dialog_missing_begin"
	codeUnreachableNode    = "unreachable_node"
	codeDuplicateAnchorID  = "duplicate_anchor_id"
	codeDeadEnd            = "dead_end"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Story    string   `json:"story,omitempty"`
	Node     string   `json:"node,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

type checker struct {
	doc    *story.Document
	issues []Issue
}

func (c *checker) add(severity Severity, code, node, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Story:    c.doc.ID,
		Node:     node,
	})
}

// Run lints doc. A nil doc yields an empty report.
func Run(doc *story.Document) *Report {
	if doc == nil {
		return &Report{Issues: []Issue{}}
	}
	c := &checker{doc: doc, issues: make([]Issue, 0)}

	c.checkBeginAndEnd()
	c.checkEdges()
	c.checkNodes()
	c.checkReachability()
	c.checkMaps()

	return &Report{Issues: c.issues}
}

func (c *checker) checkBeginAndEnd() {
	var begins []string
	ends := 0
	for _, n := range c.doc.Nodes {
		switch n.Type {
		case story.NodeBegin:
			begins = append(begins, n.ID)
		case story.NodeEnd:
			ends++
		}
	}
	if len(begins) == 0 {
		c.add(SeverityError, codeMissingBegin, "", "story has no begin node")
	}
	for _, id := range begins[min(1, len(begins)):] {
		c.add(SeverityError, codeDuplicateBegin, id, "additional begin node %s (first is %s)", id, begins[0])
	}
	if ends == 0 {
		c.add(SeverityError, codeMissingEnd, "", "story has no end node")
	}
}

func (c *checker) checkEdges() {
	ids := make(map[string]bool, len(c.doc.Nodes))
	for _, n := range c.doc.Nodes {
		ids[n.ID] = true
	}

	type handleKey struct{ source, handle string }
	seen := make(map[handleKey]string, len(c.doc.Edges))
	for _, e := range c.doc.Edges {
		if !ids[e.Source] {
			c.add(SeverityError, codeDanglingEdge, e.Source, "edge %s starts at unknown node %s", e.ID, e.Source)
		}
		if !ids[e.Target] {
			c.add(SeverityError, codeDanglingEdge, e.Target, "edge %s ends at unknown node %s", e.ID, e.Target)
		}
		key := handleKey{e.Source, e.SourceHandle}
		if first, ok := seen[key]; ok {
			c.add(SeverityError, codeDuplicateHandle, e.Source, "edges %s and %s leave %s from the same handle %q", first, e.ID, e.Source, e.SourceHandle)
			continue
		}
		seen[key] = e.ID
	}
}

func (c *checker) checkNodes() {
	characters := make(map[string]bool, len(c.doc.Characters))
	for _, ch := range c.doc.Characters {
		characters[ch.ID] = true
	}
	resolver := player.ResolverFromDocument(c.doc)

	for _, n := range c.doc.Nodes {
		if _, ok := choreography.CompileNode(n, c.doc.Edges); !ok {
			c.add(SeverityWarn, codeUnmappedNodeType, n.ID, "%s node %s is not played and will be skipped on export", n.Type, n.ID)
		}

		if ch := n.Data.Character; ch != nil && !characters[ch.ID] {
			c.add(SeverityWarn, codeMissingCharacter, n.ID, "node %s references character %q that is not in the catalog", n.ID, ch.Name)
		}

		if t := n.Data.EntryTrigger; t != nil && n.Type != story.NodeBegin {
			switch t.Type {
			case story.TriggerEnter:
				if _, ok := resolver.Resolve(t.ID); !ok {
					if _, ok := resolver.Resolve(t.Name); !ok {
						c.add(SeverityWarn, codeUnresolvedTrigger, n.ID, "enter trigger on %s targets %q which has no map coordinates", n.ID, t.Name)
					}
				}
			case story.TriggerInteract:
				if t.ID != "" && !characters[t.ID] {
					c.add(SeverityWarn, codeMissingCharacter, n.ID, "interact trigger on %s targets unknown character %q", n.ID, t.Name)
				}
			}
		}

		if n.Type == story.NodeCharacter && n.Data.Dialog != nil && !hasDialogBegin(n.Data.Dialog) {
			c.add(SeverityError, codeDialogMissingBegin, n.ID, "dialog of character node %s has no begin node", n.ID)
		}
	}
}

func hasDialogBegin(d *story.Dialog) bool {
	for _, n := range d.Nodes {
		if n.Type == story.DialogBegin {
			return true
		}
	}
	return false
}

func (c *checker) checkReachability() {
	var start string
	for _, n := range c.doc.Nodes {
		if n.Type == story.NodeBegin {
			start = n.ID
			break
		}
	}
	if start == "" {
		return
	}

	next := make(map[string][]string)
	outgoing := make(map[string]bool)
	for _, e := range c.doc.Edges {
		next[e.Source] = append(next[e.Source], e.Target)
		outgoing[e.Source] = true
	}

	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, target := range next[id] {
			if !reached[target] {
				reached[target] = true
				queue = append(queue, target)
			}
		}
	}

	for _, n := range c.doc.Nodes {
		if !reached[n.ID] {
			c.add(SeverityWarn, codeUnreachableNode, n.ID, "node %s cannot be reached from the begin node", n.ID)
		}
		if n.Type != story.NodeEnd && !outgoing[n.ID] {
			c.add(SeverityWarn, codeDeadEnd, n.ID, "%s node %s has no outgoing edge", n.Type, n.ID)
		}
	}
}

func (c *checker) checkMaps() {
	for _, m := range c.doc.Maps {
		seen := make(map[string]bool, len(m.Anchors))
		for _, a := range m.Anchors {
			if seen[a.AnchorID] {
				c.add(SeverityError, codeDuplicateAnchorID, "", "map %s has more than one anchor with id %s", m.Name, a.AnchorID)
				continue
			}
			seen[a.AnchorID] = true
		}
	}
}
