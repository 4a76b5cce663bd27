package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/DeusData/codebase-graph/internal/ingest"
)

// SQLite allows 999 bind variables per statement.
const numNodeCols = 6
const nodesBatchSize = 999 / numNodeCols

const nodeCols = "id, label, name, file_path, parent_id, properties"

// MergeNodes upserts rows under label. An existing node keeps properties the
// row does not set; the row's properties overwrite the rest.
func (s *Store) MergeNodes(ctx context.Context, label string, rows []ingest.NodeRow) error {
	for i := 0; i < len(rows); i += nodesBatchSize {
		end := min(i+nodesBatchSize, len(rows))
		if err := s.mergeNodeChunk(ctx, label, rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) mergeNodeChunk(ctx context.Context, label string, rows []ingest.NodeRow) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(rows))
	args := make([]any, 0, len(rows)*numNodeCols)
	for i, r := range rows {
		placeholders[i] = "(?, ?, ?, ?, ?, ?)"
		args = append(args, r.ID, label,
			propString(r.Props, "name"),
			propString(r.Props, "filePath"),
			propString(r.Props, "parentId"),
			marshalProps(r.Props))
	}
	query := fmt.Sprintf(`INSERT INTO nodes (%s) VALUES %s
		ON CONFLICT(id) DO UPDATE SET
			label=excluded.label, name=excluded.name, file_path=excluded.file_path,
			parent_id=excluded.parent_id,
			properties=json_patch(nodes.properties, excluded.properties)`,
		nodeCols, strings.Join(placeholders, ","))
	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("merge nodes: %w", err)
	}
	return nil
}

func propString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

// FindNode returns the node with the given id, or nil.
func (s *Store) FindNode(ctx context.Context, id string) (*Node, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+nodeCols+" FROM nodes WHERE id=?", id)
	return scanNode(row)
}

// FindNodesByLabel returns all nodes with a label, ordered by name.
func (s *Store) FindNodesByLabel(ctx context.Context, label string) ([]*Node, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+nodeCols+" FROM nodes WHERE label=? ORDER BY name, id", label)
	if err != nil {
		return nil, fmt.Errorf("find by label: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// FindNodesByName returns all nodes with a name.
func (s *Store) FindNodesByName(ctx context.Context, name string) ([]*Node, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+nodeCols+" FROM nodes WHERE name=? ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("find by name: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// FindNodesByFile returns all nodes declared in a file.
func (s *Store) FindNodesByFile(ctx context.Context, filePath string) ([]*Node, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+nodeCols+" FROM nodes WHERE file_path=? ORDER BY id", filePath)
	if err != nil {
		return nil, fmt.Errorf("find by file: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// CountNodes returns the number of nodes.
func (s *Store) CountNodes(ctx context.Context) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*Node, error) {
	var n Node
	var props string
	err := row.Scan(&n.ID, &n.Label, &n.Name, &n.FilePath, &n.ParentID, &props)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	n.Properties = unmarshalProps(props)
	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]*Node, error) {
	var result []*Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
