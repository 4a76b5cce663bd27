package store

import "context"

// Direction selects which relation endpoint a traversal follows.
type Direction string

const (
	Outbound Direction = "outbound"
	Inbound  Direction = "inbound"
)

// TraverseResult holds BFS traversal results.
type TraverseResult struct {
	Root      *Node      `json:"root"`
	Visited   []*NodeHop `json:"visited"`
	Relations []Relation `json:"relations"`
}

// NodeHop is a node with its BFS hop distance.
type NodeHop struct {
	Node *Node `json:"node"`
	Hop  int   `json:"hop"`
}

type bfsQueue struct {
	id  string
	hop int
}

// fetchRelations returns the relations of a node in a direction, restricted
// to relTypes when non-empty.
func (s *Store) fetchRelations(ctx context.Context, id string, dir Direction, relTypes []string) ([]Relation, error) {
	find := s.FindRelationsFrom
	if dir == Inbound {
		find = s.FindRelationsTo
	}
	if len(relTypes) == 0 {
		return find(ctx, id, "")
	}
	var rels []Relation
	for _, rt := range relTypes {
		found, err := find(ctx, id, rt)
		if err != nil {
			return nil, err
		}
		rels = append(rels, found...)
	}
	return rels, nil
}

// BFS performs breadth-first traversal from startID following relations of
// the given types. maxDepth caps the depth and maxResults the number of
// visited nodes. A missing start node yields a nil Root and no hops.
func (s *Store) BFS(ctx context.Context, startID string, dir Direction, relTypes []string, maxDepth, maxResults int) (*TraverseResult, error) {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if maxResults <= 0 {
		maxResults = 200
	}

	root, err := s.FindNode(ctx, startID)
	if err != nil {
		return nil, err
	}
	result := &TraverseResult{Root: root}
	if root == nil {
		return result, nil
	}

	visited := map[string]bool{startID: true}
	queue := []bfsQueue{{startID, 0}}

	for len(queue) > 0 && len(result.Visited) < maxResults {
		item := queue[0]
		queue = queue[1:]
		if item.hop >= maxDepth {
			continue
		}

		rels, err := s.fetchRelations(ctx, item.id, dir, relTypes)
		if err != nil {
			return nil, err
		}
		for _, r := range rels {
			result.Relations = append(result.Relations, r)
			next := r.To
			if dir == Inbound {
				next = r.From
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			n, err := s.FindNode(ctx, next)
			if err != nil {
				return nil, err
			}
			if n == nil {
				continue
			}
			result.Visited = append(result.Visited, &NodeHop{Node: n, Hop: item.hop + 1})
			queue = append(queue, bfsQueue{next, item.hop + 1})
			if len(result.Visited) >= maxResults {
				break
			}
		}
	}
	return result, nil
}
