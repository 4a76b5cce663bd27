package pipeline

import (
	"context"
	"fmt"

	"github.com/DeusData/codebase-graph/internal/config"
	"github.com/DeusData/codebase-graph/internal/ingest"
	"github.com/DeusData/codebase-graph/internal/neo4jstore"
	"github.com/DeusData/codebase-graph/internal/store"
)

// OpenDriver returns the configured backend driver and a function that
// releases it.
func OpenDriver(ctx context.Context, cfg *config.Config) (ingest.Driver, func() error, error) {
	switch backend := cfg.EffectiveBackend(); backend {
	case config.BackendSQLite:
		r, err := store.NewRouter(cfg.GraphDB.SQLiteDir)
		if err != nil {
			return nil, nil, err
		}
		return r, func() error { return nil }, nil
	case config.BackendNeo4j:
		d, err := neo4jstore.Open(ctx, cfg.Neo4j())
		if err != nil {
			return nil, nil, err
		}
		return d, func() error { return d.Close(context.WithoutCancel(ctx)) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown graph backend %q", backend)
	}
}
