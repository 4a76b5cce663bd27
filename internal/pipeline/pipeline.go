// Package pipeline wires project loading, extraction and ingestion. The
// extract and ingest phases stay independently invokable; Scan runs both.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeusData/codebase-graph/internal/config"
	"github.com/DeusData/codebase-graph/internal/extract"
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/ingest"
	"github.com/DeusData/codebase-graph/internal/project"
	"github.com/DeusData/codebase-graph/internal/subtype"
)

// Pipeline runs one extraction and/or ingestion. Every log line carries the
// run id.
type Pipeline struct {
	Config *config.Config
	RunID  string
	log    *slog.Logger
}

// New creates a Pipeline with a fresh run id. A nil cfg means defaults.
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = &config.Config{}
	}
	id := uuid.NewString()
	return &Pipeline{Config: cfg, RunID: id, log: slog.With("run", id)}
}

// Summary describes an extracted graph.
type Summary struct {
	Files      int                `json:"files"`
	Nodes      int                `json:"nodes"`
	Relations  int                `json:"relations"`
	Counts     map[graph.Kind]int `json:"counts"`
	ByRelation map[string]int     `json:"by_relation"`
	Subtypes   map[string]int     `json:"subtypes"`
	Collisions int                `json:"collisions"`
}

// Summarize computes the summary of g.
func Summarize(g *graph.Graph) Summary {
	counts := g.Counts
	if counts == nil {
		counts = graph.CountByKind(g.Nodes)
	}
	return Summary{
		Files:      counts[graph.KindFile],
		Nodes:      len(g.Nodes),
		Relations:  len(g.Relations),
		Counts:     counts,
		ByRelation: graph.CountByRelation(g.Relations),
		Subtypes:   subtype.Stats(g.Nodes),
		Collisions: len(graph.Collisions(g.Nodes)),
	}
}

// Extract loads the project at projectPath and runs every extraction pass.
func (p *Pipeline) Extract(ctx context.Context, projectPath string) (*graph.Graph, error) {
	start := time.Now()
	p.log.Info("pipeline.start", "path", projectPath)

	proj, err := project.Load(ctx, projectPath, p.Config.ProjectOptions())
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	p.log.Info("pipeline.loaded", "files", len(proj.Files), "source_root", proj.SourceRoot)

	g, err := extract.Run(ctx, proj, p.Config.ExtractOptions())
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	for _, kind := range graph.AllKinds() {
		if n := g.Counts[kind]; n > 0 {
			p.log.Info("pipeline.count", "kind", kind, "nodes", n)
		}
	}
	for _, c := range graph.Collisions(g.Nodes) {
		p.log.Warn("pipeline.id.collision", "id", c.ID, "nodes", len(c.Nodes),
			"first", c.Nodes[0].FilePath+":"+c.Nodes[0].Name)
	}
	p.log.Info("pipeline.extracted", "nodes", len(g.Nodes), "relations", len(g.Relations),
		"elapsed", time.Since(start))
	return g, nil
}

// Ingest merges g into database through d. An empty database selects the
// configured one.
func (p *Pipeline) Ingest(ctx context.Context, d ingest.Driver, database string, g *graph.Graph) (*ingest.Result, error) {
	if database == "" {
		database = p.Config.EffectiveDatabase()
	}
	p.log.Info("pipeline.ingest", "db", database, "nodes", len(g.Nodes), "relations", len(g.Relations))
	res, err := ingest.New(d, p.Config.IngestOptions()).Ingest(ctx, database, g)
	if err != nil {
		p.log.Error("pipeline.ingest.err", "db", database, "err", err)
		return nil, err
	}
	return res, nil
}

// ScanResult is the outcome of Scan.
type ScanResult struct {
	RunID   string         `json:"run_id"`
	Summary Summary        `json:"summary"`
	Ingest  *ingest.Result `json:"ingest"`
}

// Scan extracts projectPath and ingests the result.
func (p *Pipeline) Scan(ctx context.Context, projectPath string, d ingest.Driver, database string) (*ScanResult, error) {
	g, err := p.Extract(ctx, projectPath)
	if err != nil {
		return nil, err
	}
	res, err := p.Ingest(ctx, d, database, g)
	if err != nil {
		return nil, err
	}
	return &ScanResult{RunID: p.RunID, Summary: Summarize(g), Ingest: res}, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DatabaseNameFromPath derives a database name from a project path: the
// cleaned path with separators replaced by dashes and other characters
// outside [A-Za-z0-9._-] dropped.
func DatabaseNameFromPath(absPath string) string {
	cleaned := filepath.ToSlash(filepath.Clean(absPath))
	name := strings.ReplaceAll(cleaned, "/", "-")
	name = unsafeName.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "-._")
	if name == "" {
		return "root"
	}
	return name
}
