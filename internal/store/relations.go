package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DeusData/codebase-graph/internal/ingest"
)

// MergeRelations creates each relation at most once. Rows whose endpoints
// are not stored insert nothing.
func (s *Store) MergeRelations(ctx context.Context, relType string, rows []ingest.RelationRow) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := s.q.PrepareContext(ctx, `
		INSERT INTO relations (from_id, to_id, type)
		SELECT a.id, b.id, ? FROM nodes a, nodes b WHERE a.id=? AND b.id=?
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare merge relations: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, relType, r.From, r.To); err != nil {
			return fmt.Errorf("merge relation %s: %w", relType, err)
		}
	}
	return nil
}

// FindRelationsFrom returns the outbound relations of a node, optionally
// restricted to one type.
func (s *Store) FindRelationsFrom(ctx context.Context, id, relType string) ([]Relation, error) {
	return s.findRelations(ctx, "from_id", id, relType)
}

// FindRelationsTo returns the inbound relations of a node, optionally
// restricted to one type.
func (s *Store) FindRelationsTo(ctx context.Context, id, relType string) ([]Relation, error) {
	return s.findRelations(ctx, "to_id", id, relType)
}

func (s *Store) findRelations(ctx context.Context, col, id, relType string) ([]Relation, error) {
	query := "SELECT from_id, to_id, type FROM relations WHERE " + col + "=?"
	args := []any{id}
	if relType != "" {
		query += " AND type=?"
		args = append(args, relType)
	}
	query += " ORDER BY type, from_id, to_id"
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find relations: %w", err)
	}
	defer rows.Close()
	return scanRelations(rows)
}

// CountRelations returns the number of relations.
func (s *Store) CountRelations(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM relations").Scan(&count)
	return count, err
}

func scanRelations(rows *sql.Rows) ([]Relation, error) {
	var result []Relation
	for rows.Next() {
		var r Relation
		if err := rows.Scan(&r.From, &r.To, &r.Type); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
