package store

import (
	"context"
	"fmt"
	"sort"
)

// SchemaInfo contains graph schema statistics.
type SchemaInfo struct {
	NodeLabels           []LabelCount `json:"node_labels"`
	RelationshipTypes    []TypeCount  `json:"relationship_types"`
	RelationshipPatterns []string     `json:"relationship_patterns"`
	SampleClassNames     []string     `json:"sample_class_names"`
	SampleFunctionNames  []string     `json:"sample_function_names"`
	SampleRoutes         []string     `json:"sample_routes"`
}

// LabelCount is a label with its count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TypeCount is a relationship type with its count.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// GetSchema returns graph schema statistics.
func (s *Store) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	info := &SchemaInfo{}

	var err error
	if info.NodeLabels, err = s.schemaNodeLabels(ctx); err != nil {
		return nil, err
	}
	if info.RelationshipTypes, err = s.schemaRelationTypes(ctx); err != nil {
		return nil, err
	}
	if info.RelationshipPatterns, err = s.schemaRelPatterns(ctx); err != nil {
		return nil, err
	}
	if info.SampleClassNames, err = s.schemaSampleNames(ctx, "Class", 20); err != nil {
		return nil, err
	}
	if info.SampleFunctionNames, err = s.schemaSampleNames(ctx, "Function", 20); err != nil {
		return nil, err
	}
	if info.SampleRoutes, err = s.schemaSampleNames(ctx, "Route", 20); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *Store) schemaNodeLabels(ctx context.Context) ([]LabelCount, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT label, COUNT(*) as cnt FROM nodes GROUP BY label ORDER BY cnt DESC, label")
	if err != nil {
		return nil, fmt.Errorf("schema labels: %w", err)
	}
	defer rows.Close()
	var labels []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		labels = append(labels, lc)
	}
	return labels, rows.Err()
}

func (s *Store) schemaRelationTypes(ctx context.Context) ([]TypeCount, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT type, COUNT(*) as cnt FROM relations GROUP BY type ORDER BY cnt DESC, type")
	if err != nil {
		return nil, fmt.Errorf("schema relation types: %w", err)
	}
	defer rows.Close()
	var types []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		types = append(types, tc)
	}
	return types, rows.Err()
}

// schemaRelPatterns counts (label)-[type]->(label) triples using an id→label
// map and a single relation scan instead of a three-way join.
func (s *Store) schemaRelPatterns(ctx context.Context) ([]string, error) {
	idLabel := make(map[string]string, 4096)
	rows, err := s.q.QueryContext(ctx, "SELECT id, label FROM nodes")
	if err != nil {
		return nil, fmt.Errorf("schema id-label: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		idLabel[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	type patternKey struct{ src, rel, tgt string }
	patternCounts := make(map[patternKey]int)
	rows2, err := s.q.QueryContext(ctx, "SELECT from_id, to_id, type FROM relations")
	if err != nil {
		return nil, fmt.Errorf("schema relation scan: %w", err)
	}
	defer rows2.Close()
	for rows2.Next() {
		var from, to, relType string
		if err := rows2.Scan(&from, &to, &relType); err != nil {
			return nil, err
		}
		patternCounts[patternKey{src: idLabel[from], rel: relType, tgt: idLabel[to]}]++
	}
	if err := rows2.Err(); err != nil {
		return nil, err
	}

	type patternEntry struct {
		key patternKey
		cnt int
	}
	entries := make([]patternEntry, 0, len(patternCounts))
	for k, v := range patternCounts {
		entries = append(entries, patternEntry{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].cnt != entries[j].cnt {
			return entries[i].cnt > entries[j].cnt
		}
		a, b := entries[i].key, entries[j].key
		return a.src+a.rel+a.tgt < b.src+b.rel+b.tgt
	})
	if len(entries) > 25 {
		entries = entries[:25]
	}
	patterns := make([]string, 0, len(entries))
	for _, e := range entries {
		patterns = append(patterns, fmt.Sprintf("(:%s)-[:%s]->(:%s)  [%dx]", e.key.src, e.key.rel, e.key.tgt, e.cnt))
	}
	return patterns, nil
}

func (s *Store) schemaSampleNames(ctx context.Context, label string, limit int) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT name FROM nodes WHERE label=? ORDER BY name LIMIT ?", label, limit)
	if err != nil {
		return nil, fmt.Errorf("schema sample %s: %w", label, err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
