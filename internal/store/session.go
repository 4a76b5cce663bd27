package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DeusData/codebase-graph/internal/ingest"
)

// Tx is an explicit transaction over a Store. Its merge and read methods
// run inside the transaction.
type Tx struct {
	*Store
	tx *sql.Tx
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{Store: &Store{db: s.db, q: tx, dbPath: s.dbPath}, tx: tx}, nil
}

func (t *Tx) Commit(context.Context) error {
	return t.tx.Commit()
}

func (t *Tx) Rollback(context.Context) error {
	return t.tx.Rollback()
}

// session adapts a Store to ingest.Session.
type session struct {
	s *Store
}

func (ss *session) Ping(ctx context.Context) error {
	return ss.s.db.PingContext(ctx)
}

func (ss *session) Clean(ctx context.Context) error {
	return ss.s.Clean(ctx)
}

func (ss *session) Begin(ctx context.Context) (ingest.Tx, error) {
	return ss.s.Begin(ctx)
}

func (ss *session) Close(context.Context) error {
	return ss.s.Close()
}

var (
	_ ingest.Driver = (*Router)(nil)
	_ ingest.Tx     = (*Tx)(nil)
)
