// Package ingest merges an extracted graph into a graph database.
//
// An ingestion provisions the database, waits for it to answer, removes
// every existing node and relation, then imports nodes and relations in two
// separate transactions. Repeated ingestion of the same graph converges to
// the same store contents.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DeusData/codebase-graph/internal/graph"
)

const (
	DefaultRetries   = 10
	DefaultDelay     = time.Second
	DefaultBatchSize = 500
)

// Options tunes an Engine. Zero numeric values select the defaults.
type Options struct {
	// CreateDatabase runs the ensure-exists phase.
	CreateDatabase bool
	Retries        int
	Delay          time.Duration
	BatchSize      int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		CreateDatabase: true,
		Retries:        DefaultRetries,
		Delay:          DefaultDelay,
		BatchSize:      DefaultBatchSize,
	}
}

// Result summarizes a completed ingestion.
type Result struct {
	Database  string        `json:"database"`
	Nodes     int           `json:"nodes"`
	Relations int           `json:"relations"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Engine runs ingestions against a Driver. It holds no per-call state, so
// one Engine may ingest into distinct databases concurrently.
type Engine struct {
	driver Driver
	opts   Options
}

// New returns an Engine for d.
func New(d Driver, opts Options) *Engine {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Engine{driver: d, opts: opts}
}

// Ingest replaces the contents of database with g.
func (e *Engine) Ingest(ctx context.Context, database string, g *graph.Graph) (*Result, error) {
	start := time.Now()
	fail := func(phase Phase, err error) (*Result, error) {
		return nil, &PhaseError{Phase: phase, Database: database, Err: err}
	}

	if err := ValidateDatabaseName(database); err != nil {
		return fail(PhaseEnsureExists, err)
	}

	if e.opts.CreateDatabase {
		err := e.driver.EnsureDatabase(ctx, database)
		switch {
		case err == nil:
			slog.Info("ingest.db.created", "db", database)
		case errors.Is(err, ErrAlreadyExists):
			slog.Debug("ingest.db.exists", "db", database)
		default:
			return fail(PhaseEnsureExists, err)
		}
	}

	sess, err := e.driver.Open(ctx, database)
	if err != nil {
		return fail(PhaseWaitReady, fmt.Errorf("open session: %w", err))
	}
	defer func() {
		if cerr := sess.Close(context.WithoutCancel(ctx)); cerr != nil {
			slog.Warn("ingest.session.close.err", "db", database, "err", cerr)
		}
	}()

	if err := e.waitReady(ctx, sess, database); err != nil {
		return fail(PhaseWaitReady, err)
	}

	if err := sess.Clean(ctx); err != nil {
		return fail(PhaseClean, err)
	}

	nodes, err := e.importNodes(ctx, sess, g.Nodes)
	if err != nil {
		return fail(PhaseNodeImport, err)
	}
	rels, err := e.importRelations(ctx, sess, g.Relations)
	if err != nil {
		return fail(PhaseRelationImport, err)
	}

	res := &Result{Database: database, Nodes: nodes, Relations: rels, Elapsed: time.Since(start)}
	slog.Info("ingest.done", "db", database, "nodes", nodes, "relations", rels, "elapsed", res.Elapsed)
	return res, nil
}

func (e *Engine) waitReady(ctx context.Context, sess Session, database string) error {
	var last error
	for attempt := 1; attempt <= e.opts.Retries; attempt++ {
		if last = sess.Ping(ctx); last == nil {
			return nil
		}
		slog.Debug("ingest.ping.retry", "db", database, "attempt", attempt, "err", last)
		if attempt == e.opts.Retries {
			break
		}
		timer := time.NewTimer(e.opts.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrNotReady, e.opts.Retries, last)
}

// inTx runs fn inside a transaction, rolling back on any error.
func inTx(ctx context.Context, sess Session, fn func(Tx) error) error {
	tx, err := sess.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(context.WithoutCancel(ctx)); rerr != nil {
			slog.Warn("ingest.rollback.err", "err", rerr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (e *Engine) importNodes(ctx context.Context, sess Session, nodes []graph.Node) (int, error) {
	groups := groupBy(nodes, func(n graph.Node) string { return string(n.Kind) })
	total := 0
	err := inTx(ctx, sess, func(tx Tx) error {
		for _, grp := range groups {
			if err := ValidateIdentifier(grp.key); err != nil {
				return err
			}
			for _, batch := range batches(grp.items, e.opts.BatchSize) {
				rows := make([]NodeRow, len(batch))
				for i, n := range batch {
					rows[i] = NodeRow{ID: n.ID, Props: NodeProps(n)}
				}
				if err := tx.MergeNodes(ctx, grp.key, rows); err != nil {
					return fmt.Errorf("merge %s nodes: %w", grp.key, err)
				}
				total += len(rows)
			}
			slog.Debug("ingest.nodes", "label", grp.key, "count", len(grp.items))
		}
		return nil
	})
	return total, err
}

func (e *Engine) importRelations(ctx context.Context, sess Session, rels []graph.Relation) (int, error) {
	groups := groupBy(rels, func(r graph.Relation) string { return r.Type })
	total := 0
	err := inTx(ctx, sess, func(tx Tx) error {
		for _, grp := range groups {
			if err := ValidateIdentifier(grp.key); err != nil {
				return err
			}
			for _, batch := range batches(grp.items, e.opts.BatchSize) {
				rows := make([]RelationRow, len(batch))
				for i, r := range batch {
					rows[i] = RelationRow{From: r.From, To: r.To}
				}
				if err := tx.MergeRelations(ctx, grp.key, rows); err != nil {
					return fmt.Errorf("merge %s relations: %w", grp.key, err)
				}
				total += len(rows)
			}
			slog.Debug("ingest.relations", "type", grp.key, "count", len(grp.items))
		}
		return nil
	})
	return total, err
}

type group[T any] struct {
	key   string
	items []T
}

// groupBy groups items by key, in order of first appearance.
func groupBy[T any](items []T, key func(T) string) []group[T] {
	index := map[string]int{}
	var out []group[T]
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, group[T]{key: k})
		}
		out[i].items = append(out[i].items, it)
	}
	return out
}

func batches[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
