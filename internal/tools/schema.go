package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleGraphSchema(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	st, err := s.openStore(args)
	if err != nil {
		return errResult(fmt.Sprintf("open store: %v", err)), nil
	}
	defer st.Close()

	schema, err := st.GetSchema(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("schema: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"database": getStringArg(args, "database"),
		"schema":   schema,
	}), nil
}
