// Package relation decides whether a dependency edge may be added.
package relation

import (
	"sort"

	"github.com/metalagman/timeline/internal/task"
)

// Verdict is the outcome of a link check.
type Verdict int

const (
	// Allowed means the edge can be added.
	Allowed Verdict = iota
	// RejectedSelf means both ends are the same task.
	RejectedSelf
	// RejectedAncestry means one task is an ancestor of the other.
	RejectedAncestry
	// RejectedDisabled means the target does not accept new relations.
	RejectedDisabled
	// RejectedDuplicate means the same edge already exists on the target.
	RejectedDuplicate
	// RejectedCycle means the edge would close a dependency cycle.
	RejectedCycle
)

// String returns the string representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case RejectedSelf:
		return "self_relation"
	case RejectedAncestry:
		return "ancestor_or_descendant"
	case RejectedDisabled:
		return "relation_disabled"
	case RejectedDuplicate:
		return "duplicate_relation"
	case RejectedCycle:
		return "dependency_cycle"
	default:
		return "unknown"
	}
}

// Check validates an edge from the fromTarget endpoint of from to the
// toTarget endpoint of to. related is the caller's answer to whether the two
// tasks are ancestor and descendant of each other.
func Check(from, to task.Task, fromTarget, toTarget task.Extremity, related bool) Verdict {
	switch {
	case from.ID == to.ID:
		return RejectedSelf
	case related:
		return RejectedAncestry
	case to.IsRelationDisabled:
		return RejectedDisabled
	case to.HasDependency(Edge(from.ID, fromTarget, toTarget)):
		return RejectedDuplicate
	default:
		return Allowed
	}
}

// CanLink reports whether Check allows the edge.
func CanLink(from, to task.Task, fromTarget, toTarget task.Extremity, related bool) bool {
	return Check(from, to, fromTarget, toTarget, related) == Allowed
}

// Edge builds the dependency stored on the target task.
func Edge(sourceID string, sourceTarget, ownTarget task.Extremity) task.Dependency {
	return task.Dependency{SourceID: sourceID, SourceTarget: sourceTarget, OwnTarget: ownTarget}
}

// WouldCycle reports the dependency path that adding an edge from fromID to
// toID would close, or nil when the dependency graph stays acyclic. Edges
// point from a source to the task that depends on it.
func WouldCycle(tasks []task.Task, fromID, toID string) []string {
	adj := make(map[string][]string)
	for _, t := range tasks {
		for _, dep := range t.Dependencies {
			adj[dep.SourceID] = append(adj[dep.SourceID], t.ID)
		}
	}
	for k := range adj {
		sort.Strings(adj[k])
	}

	// The new edge closes a cycle iff fromID is already reachable from toID.
	if fromID == toID {
		return []string{fromID, toID}
	}
	parent := map[string]string{}
	visited := map[string]bool{toID: true}
	queue := []string{toID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = cur
			if next == fromID {
				path := []string{fromID}
				for n := fromID; n != toID; {
					n = parent[n]
					path = append(path, n)
				}
				// Reverse to get forward order, then close the loop.
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return append(path, toID)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// DetectCycle returns a dependency cycle in tasks, or nil if there is none.
// It uses DFS with white/gray/black coloring.
func DetectCycle(tasks []task.Task) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	adj := make(map[string][]string)
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
		for _, dep := range t.Dependencies {
			adj[dep.SourceID] = append(adj[dep.SourceID], t.ID)
		}
	}
	sort.Strings(ids)
	for k := range adj {
		sort.Strings(adj[k])
	}

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				for cur := node; cur != next; {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
