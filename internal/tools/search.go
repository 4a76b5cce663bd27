package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codebase-graph/internal/store"
)

type nodeEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Label    string `json:"label"`
	FilePath string `json:"file_path,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	Subtype  string `json:"subtype,omitempty"`
}

func toEntry(n *store.Node) nodeEntry {
	e := nodeEntry{
		ID:       n.ID,
		Name:     n.Name,
		Label:    n.Label,
		FilePath: n.FilePath,
		ParentID: n.ParentID,
	}
	e.Subtype, _ = n.Properties["subtype"].(string)
	return e
}

func (s *Server) handleSearchGraph(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	params := store.SearchParams{
		Label:       getStringArg(args, "label"),
		NamePattern: getStringArg(args, "name_pattern"),
		FilePattern: getStringArg(args, "file_pattern"),
		Subtype:     getStringArg(args, "subtype"),
		Limit:       clamp(getIntArg(args, "limit", 50), 1, 200),
		Offset:      max(getIntArg(args, "offset", 0), 0),
	}

	st, err := s.openStore(args)
	if err != nil {
		return errResult(fmt.Sprintf("open store: %v", err)), nil
	}
	defer st.Close()

	output, err := st.Search(ctx, params)
	if err != nil {
		return errResult(fmt.Sprintf("search: %v", err)), nil
	}

	type resultEntry struct {
		nodeEntry
		InDegree  int `json:"in_degree"`
		OutDegree int `json:"out_degree"`
	}
	results := make([]resultEntry, 0, len(output.Results))
	for _, r := range output.Results {
		results = append(results, resultEntry{
			nodeEntry: toEntry(r.Node),
			InDegree:  r.InDegree,
			OutDegree: r.OutDegree,
		})
	}

	return jsonResult(map[string]any{
		"total":    output.Total,
		"limit":    params.Limit,
		"offset":   params.Offset,
		"has_more": params.Offset+params.Limit < output.Total,
		"results":  results,
	}), nil
}
