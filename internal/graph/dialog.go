package graph

import "github.com/TiagoMRib/StoryWeaver-AR-VR-sub000/internal/story"

// repairDialogEdges keeps the outer edges leaving a character node in line
// with the end branches of its dialog. Edges leaving source are keyed by the
// branch name in SourceHandle.
//
// When branches were removed, every edge naming a branch that no longer
// exists is dropped. When the branch count is unchanged, a branch renamed in
// place has its edge handle rewritten, unless another edge of source already
// holds the new name. Added branches need no repair.
func repairDialogEdges(edges []story.Edge, source string, oldEnds, newEnds []string) []story.Edge {
	switch {
	case len(newEnds) < len(oldEnds):
		remaining := make(map[string]struct{}, len(newEnds))
		for _, name := range newEnds {
			remaining[name] = struct{}{}
		}
		removed := make(map[string]struct{})
		for _, name := range oldEnds {
			if _, ok := remaining[name]; !ok {
				removed[name] = struct{}{}
			}
		}
		if len(removed) == 0 {
			// Duplicate names collapsed; drop the branch at the first divergence.
			if idx := firstDivergence(oldEnds, newEnds); idx >= 0 {
				removed[oldEnds[idx]] = struct{}{}
			}
		}
		kept := make([]story.Edge, 0, len(edges))
		for _, edge := range edges {
			if edge.Source == source {
				if _, gone := removed[edge.SourceHandle]; gone {
					continue
				}
			}
			kept = append(kept, edge)
		}
		return kept

	case len(newEnds) == len(oldEnds):
		renames := make(map[string]string)
		for i := range oldEnds {
			if oldEnds[i] != newEnds[i] {
				renames[oldEnds[i]] = newEnds[i]
			}
		}
		if len(renames) == 0 {
			return edges
		}
		// A rename onto a handle another edge of source keeps is dropped, so
		// (source, handle) stays unique.
		held := make(map[string]struct{})
		for _, edge := range edges {
			if _, renamed := renames[edge.SourceHandle]; edge.Source == source && !renamed {
				held[edge.SourceHandle] = struct{}{}
			}
		}
		out := make([]story.Edge, 0, len(edges))
		for _, edge := range edges {
			if edge.Source == source {
				if renamed, ok := renames[edge.SourceHandle]; ok {
					if _, taken := held[renamed]; taken {
						continue
					}
					held[renamed] = struct{}{}
					edge.SourceHandle = renamed
				}
			}
			out = append(out, edge)
		}
		return out
	}
	return edges
}

// firstDivergence returns the first index where a and b differ, treating
// the end of the shorter sequence as a difference. -1 when equal.
func firstDivergence(a, b []string) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	if len(b) > len(a) {
		return len(a)
	}
	return -1
}
