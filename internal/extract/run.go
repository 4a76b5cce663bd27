package extract

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/project"
)

// Pass is one extraction pass.
type Pass struct {
	Name string
	Run  func(*Extractor) graph.Part
}

// Passes in assembly order.
var Passes = []Pass{
	{"structure", (*Extractor).Structure},
	{"routes", (*Extractor).Routes},
	{"di", (*Extractor).DI},
	{"calls", (*Extractor).Calls},
	{"type_usage", (*Extractor).TypeUsage},
	{"imports", (*Extractor).Imports},
	{"inheritance", (*Extractor).Inheritance},
}

// Run executes every pass concurrently over p and assembles the result.
func Run(ctx context.Context, p *project.Project, opts Options) (*graph.Graph, error) {
	e := New(p, opts)
	parts := make([]graph.Part, len(Passes))

	g, gctx := errgroup.WithContext(ctx)
	for i, pass := range Passes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			parts[i] = pass.Run(e)
			slog.Info("pass.timing",
				"pass", pass.Name,
				"nodes", len(parts[i].Nodes),
				"relations", len(parts[i].Relations),
				"elapsed", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graph.Assemble(parts...), nil
}
