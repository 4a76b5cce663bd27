package ingest

import "context"

// NodeRow is one node in a merge batch. Props never contains the id.
type NodeRow struct {
	ID    string
	Props map[string]any
}

// RelationRow is one relation in a merge batch.
type RelationRow struct {
	From string
	To   string
}

// Driver provisions and opens graph databases.
type Driver interface {
	// EnsureDatabase creates the database. It returns ErrAlreadyExists
	// (possibly wrapped) when the database is already present.
	EnsureDatabase(ctx context.Context, name string) error
	// Open starts a session bound to one database. The caller owns the
	// session and must close it.
	Open(ctx context.Context, name string) (Session, error)
}

// Session is a connection to one database.
type Session interface {
	Ping(ctx context.Context) error
	// Clean removes every node and relation.
	Clean(ctx context.Context) error
	Begin(ctx context.Context) (Tx, error)
	Close(ctx context.Context) error
}

// Tx is an explicit write transaction. Merges are idempotent: a node is
// matched by id and its properties are overlaid, and a relation is created
// at most once per (from, to, type). Relations whose endpoints are missing
// are skipped.
type Tx interface {
	MergeNodes(ctx context.Context, label string, rows []NodeRow) error
	MergeRelations(ctx context.Context, relType string, rows []RelationRow) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
