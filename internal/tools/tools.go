// Package tools exposes extraction, ingestion and graph inspection as MCP
// tools over stdio.
package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codebase-graph/internal/config"
	"github.com/DeusData/codebase-graph/internal/store"
)

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp    *mcp.Server
	cfg    *config.Config
	router *store.Router

	// indexMu serializes scans and deletes.
	indexMu sync.Mutex
}

// NewServer creates a new MCP server with all tools registered. router
// serves the read-only tools and may differ from the configured ingestion
// backend.
func NewServer(cfg *config.Config, router *store.Router, version string) *Server {
	if cfg == nil {
		cfg = &config.Config{}
	}
	srv := &Server{
		cfg:    cfg,
		router: router,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "codebase-graph",
				Version: version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "extract_graph",
		Description: "Extract the knowledge graph of a TypeScript project without storing it. Returns node counts per kind, relation counts per type and file subtype stats. Optionally writes the full graph as JSON.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_path": {
					"type": "string",
					"description": "Path to the project root (the directory holding tsconfig.json)"
				},
				"output": {
					"type": "string",
					"description": "Optional file path for the JSON graph"
				}
			},
			"required": ["project_path"]
		}`),
	}, s.handleExtractGraph)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "scan_project",
		Description: "Extract a TypeScript project and ingest it into the configured graph backend. The target database is cleaned first, so a rescan replaces the previous graph.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"project_path": {
					"type": "string",
					"description": "Path to the project root"
				},
				"database": {
					"type": "string",
					"description": "Target database. Defaults to the configured database."
				}
			},
			"required": ["project_path"]
		}`),
	}, s.handleScanProject)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "graph_schema",
		Description: "Return the schema of a stored graph: node label counts, relation type counts, relation patterns (e.g. Class-HAS_METHOD->Method) and sample class, function and route names.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"database": {
					"type": "string",
					"description": "Database name"
				}
			},
			"required": ["database"]
		}`),
	}, s.handleGraphSchema)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "search_graph",
		Description: "Search a stored graph by node label, name pattern (regex), file pattern (glob) and file subtype. Returns matching nodes with their in and out degree.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"database": {
					"type": "string",
					"description": "Database name"
				},
				"label": {
					"type": "string",
					"description": "Node label filter: File, Class, Method, Function, Interface, Enum, TypeAlias, Property, Parameter, Variable, Route"
				},
				"name_pattern": {
					"type": "string",
					"description": "Regex pattern for node name (e.g. '.*Service', 'find.*')"
				},
				"file_pattern": {
					"type": "string",
					"description": "Glob pattern for file path (e.g. 'src/users/**')"
				},
				"subtype": {
					"type": "string",
					"description": "File subtype filter (e.g. 'service', 'controller')"
				},
				"limit": {
					"type": "integer",
					"description": "Max results (default 50, max 200)"
				},
				"offset": {
					"type": "integer",
					"description": "Skip this many results"
				}
			},
			"required": ["database"]
		}`),
	}, s.handleSearchGraph)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "trace_relations",
		Description: "Breadth-first traversal from a named node following relations of the given types. Use CALLS for call chains, INJECTS for DI dependencies, EXTENDS and IMPLEMENTS for type hierarchies.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"database": {
					"type": "string",
					"description": "Database name"
				},
				"name": {
					"type": "string",
					"description": "Name of the start node (e.g. 'UsersService' or 'findAll')"
				},
				"relation_types": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Relation types to follow (default CALLS)"
				},
				"direction": {
					"type": "string",
					"description": "'outbound' (what it reaches) or 'inbound' (what reaches it)",
					"enum": ["outbound", "inbound"]
				},
				"depth": {
					"type": "integer",
					"description": "Maximum BFS depth (1-5, default 3)"
				}
			},
			"required": ["database", "name"]
		}`),
	}, s.handleTraceRelations)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "list_databases",
		Description: "List the SQLite graph databases with their node and relation counts.",
		InputSchema: json.RawMessage(`{"type": "object"}`),
	}, s.handleListDatabases)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "delete_database",
		Description: "Delete a SQLite graph database. This action is irreversible.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"database": {
					"type": "string",
					"description": "Name of the database to delete"
				}
			},
			"required": ["database"]
		}`),
	}, s.handleDeleteDatabase)
}

// openStore opens the SQLite database named by the "database" argument.
func (s *Server) openStore(args map[string]any) (*store.Store, error) {
	if s.router == nil {
		return nil, fmt.Errorf("no sqlite backend configured")
	}
	name := getStringArg(args, "database")
	if name == "" {
		return nil, fmt.Errorf("database is required")
	}
	return s.router.OpenStore(name)
}

// jsonResult marshals data to JSON and returns as tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if req.Params == nil || len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// getIntArg extracts an integer argument with a default value.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	f, ok := args[key].(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return int(f)
}

// getStringsArg extracts a string array argument.
func getStringsArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
