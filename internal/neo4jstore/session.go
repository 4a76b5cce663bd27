package neo4jstore

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/DeusData/codebase-graph/internal/ingest"
)

type session struct {
	sess neo4j.SessionWithContext
}

func (s *session) run(ctx context.Context, query string, params map[string]any) error {
	res, err := s.sess.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (s *session) Ping(ctx context.Context) error {
	return s.run(ctx, "RETURN 1", nil)
}

func (s *session) Clean(ctx context.Context) error {
	return s.run(ctx, "MATCH (n) DETACH DELETE n", nil)
}

func (s *session) Begin(ctx context.Context) (ingest.Tx, error) {
	tx, err := s.sess.BeginTransaction(ctx)
	if err != nil {
		return nil, err
	}
	return &transaction{tx: tx}, nil
}

func (s *session) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

type transaction struct {
	tx neo4j.ExplicitTransaction
}

func (t *transaction) exec(ctx context.Context, query string, params map[string]any) error {
	res, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (t *transaction) MergeNodes(ctx context.Context, label string, rows []ingest.NodeRow) error {
	return t.exec(ctx, NodeMergeQuery(label), nodeParams(rows))
}

func (t *transaction) MergeRelations(ctx context.Context, relType string, rows []ingest.RelationRow) error {
	return t.exec(ctx, RelationMergeQuery(relType), relationParams(rows))
}

func (t *transaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *transaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

var _ ingest.Driver = (*Driver)(nil)
