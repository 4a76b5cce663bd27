package graph

import "sort"

// Assemble concatenates the parts in order, deduplicates relations by
// (from, to, type) and counts nodes per kind. Nodes are not deduplicated.
func Assemble(parts ...Part) *Graph {
	var nodeCount, relCount int
	for _, p := range parts {
		nodeCount += len(p.Nodes)
		relCount += len(p.Relations)
	}

	nodes := make([]Node, 0, nodeCount)
	rels := make([]Relation, 0, relCount)
	for _, p := range parts {
		nodes = append(nodes, p.Nodes...)
		rels = append(rels, p.Relations...)
	}

	return &Graph{
		Nodes:     nodes,
		Relations: Dedup(rels),
		Counts:    CountByKind(nodes),
	}
}

// Dedup returns the relations with only the first occurrence of each
// (from, to, type) triple, preserving order.
func Dedup(rels []Relation) []Relation {
	seen := make(map[string]struct{}, len(rels))
	out := make([]Relation, 0, len(rels))
	for _, r := range rels {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// CountByKind returns the number of nodes per kind.
func CountByKind(nodes []Node) map[Kind]int {
	counts := make(map[Kind]int)
	for i := range nodes {
		counts[nodes[i].Kind]++
	}
	return counts
}

// CountByRelation returns the number of relations per type.
func CountByRelation(rels []Relation) map[string]int {
	counts := make(map[string]int)
	for _, r := range rels {
		counts[r.Type]++
	}
	return counts
}

// Collision describes one id carried by nodes that are not the same entity.
type Collision struct {
	ID    string
	Nodes []Node
}

// Collisions reports ids shared by nodes whose kind, name, file or parent
// differ. Truncated hashes make these possible on large codebases.
func Collisions(nodes []Node) []Collision {
	byID := make(map[string][]Node)
	for _, n := range nodes {
		byID[n.ID] = append(byID[n.ID], n)
	}

	var out []Collision
	for id, group := range byID {
		if len(group) < 2 {
			continue
		}
		first := group[0]
		for _, n := range group[1:] {
			if n.Kind != first.Kind || n.Name != first.Name || n.FilePath != first.FilePath || n.ParentID != first.ParentID {
				out = append(out, Collision{ID: id, Nodes: group})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
