package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleListDatabases(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.router == nil {
		return errResult("no sqlite backend configured"), nil
	}
	dbs, err := s.router.ListDatabases()
	if err != nil {
		return errResult(fmt.Sprintf("list databases: %v", err)), nil
	}

	type databaseInfo struct {
		Name      string    `json:"name"`
		Path      string    `json:"path"`
		Size      int64     `json:"size"`
		ModTime   time.Time `json:"mod_time"`
		Nodes     int       `json:"nodes"`
		Relations int       `json:"relations"`
	}

	result := make([]databaseInfo, 0, len(dbs))
	for _, db := range dbs {
		info := databaseInfo{Name: db.Name, Path: db.Path, Size: db.Size, ModTime: db.ModTime}
		if st, openErr := s.router.OpenStore(db.Name); openErr == nil {
			info.Nodes, _ = st.CountNodes(ctx)
			info.Relations, _ = st.CountRelations(ctx)
			st.Close()
		}
		result = append(result, info)
	}
	return jsonResult(result), nil
}

func (s *Server) handleDeleteDatabase(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}
	if s.router == nil {
		return errResult("no sqlite backend configured"), nil
	}

	name := getStringArg(args, "database")
	if name == "" {
		return errResult("database is required"), nil
	}

	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	if err := s.router.DeleteDatabase(name); err != nil {
		return errResult(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"deleted": name,
		"status":  "ok",
	}), nil
}
