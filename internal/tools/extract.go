package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/pipeline"
)

func (s *Server) handleExtractGraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	projectPath := getStringArg(args, "project_path")
	if projectPath == "" {
		return errResult("project_path is required"), nil
	}
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}

	p := pipeline.New(s.cfg)
	g, err := p.Extract(ctx, absPath)
	if err != nil {
		return errResult(fmt.Sprintf("extraction failed: %v", err)), nil
	}

	response := map[string]any{
		"run_id":  p.RunID,
		"project": absPath,
		"summary": pipeline.Summarize(g),
	}
	if out := getStringArg(args, "output"); out != "" {
		if err := writeGraphFile(out, g); err != nil {
			return errResult(err.Error()), nil
		}
		response["output"] = out
	}
	return jsonResult(response), nil
}

func (s *Server) handleScanProject(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	projectPath := getStringArg(args, "project_path")
	if projectPath == "" {
		return errResult("project_path is required"), nil
	}
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return errResult(fmt.Sprintf("invalid path: %v", err)), nil
	}

	// Lock to prevent a concurrent scan or delete of the same database
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	driver, closeDriver, err := pipeline.OpenDriver(ctx, s.cfg)
	if err != nil {
		return errResult(fmt.Sprintf("open backend: %v", err)), nil
	}
	defer closeDriver()

	res, err := pipeline.New(s.cfg).Scan(ctx, absPath, driver, getStringArg(args, "database"))
	if err != nil {
		return errResult(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(res), nil
}

func writeGraphFile(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := graph.Write(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
