package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// SearchParams defines structured search parameters. Empty fields do not
// filter.
type SearchParams struct {
	Label       string
	NamePattern string // regular expression matched against the name
	FilePattern string // glob matched against the file path
	Subtype     string
	Limit       int
	Offset      int
}

// SearchResult is a node with its relation degrees.
type SearchResult struct {
	Node      *Node `json:"node"`
	InDegree  int   `json:"in_degree"`
	OutDegree int   `json:"out_degree"`
}

// SearchOutput wraps search results with the total count for pagination.
type SearchOutput struct {
	Results []*SearchResult `json:"results"`
	Total   int             `json:"total"`
}

// Search returns the nodes matching params, ordered by label then name.
func (s *Store) Search(ctx context.Context, params SearchParams) (*SearchOutput, error) {
	if params.Limit <= 0 {
		params.Limit = 100
	}

	var re *regexp.Regexp
	if params.NamePattern != "" {
		var err error
		if re, err = regexp.Compile(params.NamePattern); err != nil {
			return nil, fmt.Errorf("invalid name pattern: %w", err)
		}
	}

	conditions := []string{"1=1"}
	var args []any
	if params.Label != "" {
		conditions = append(conditions, "label = ?")
		args = append(args, params.Label)
	}
	if params.FilePattern != "" {
		conditions = append(conditions, "file_path LIKE ?")
		args = append(args, globToLike(params.FilePattern))
	}
	if params.Subtype != "" {
		conditions = append(conditions, "json_extract(properties, '$.subtype') = ?")
		args = append(args, params.Subtype)
	}

	query := fmt.Sprintf("SELECT %s FROM nodes WHERE %s ORDER BY label, name, id",
		nodeCols, strings.Join(conditions, " AND "))
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	nodes, err := scanNodes(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if re != nil {
		filtered := nodes[:0]
		for _, n := range nodes {
			if re.MatchString(n.Name) {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
	}

	total := len(nodes)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)

	out := &SearchOutput{Total: total}
	for _, n := range nodes[start:end] {
		sr := &SearchResult{Node: n}
		if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM relations WHERE to_id=?", n.ID).Scan(&sr.InDegree); err != nil {
			return nil, err
		}
		if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM relations WHERE from_id=?", n.ID).Scan(&sr.OutDegree); err != nil {
			return nil, err
		}
		out.Results = append(out.Results, sr)
	}
	return out, nil
}

// globToLike converts a glob pattern to a SQL LIKE pattern.
func globToLike(pattern string) string {
	result := strings.ReplaceAll(pattern, "**", "%")
	result = strings.ReplaceAll(result, "*", "%")
	result = strings.ReplaceAll(result, "?", "_")
	return result
}
