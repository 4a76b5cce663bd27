package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/store"
)

func (s *Server) handleTraceRelations(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	name := getStringArg(args, "name")
	if name == "" {
		return errResult("name is required"), nil
	}
	depth := clamp(getIntArg(args, "depth", 3), 1, 5)

	dir := store.Outbound
	switch d := getStringArg(args, "direction"); d {
	case "", string(store.Outbound):
	case string(store.Inbound):
		dir = store.Inbound
	default:
		return errResult(fmt.Sprintf("invalid direction: %s", d)), nil
	}

	relTypes := getStringsArg(args, "relation_types")
	if len(relTypes) == 0 {
		relTypes = []string{graph.RelCalls}
	}

	st, err := s.openStore(args)
	if err != nil {
		return errResult(fmt.Sprintf("open store: %v", err)), nil
	}
	defer st.Close()

	candidates, err := st.FindNodesByName(ctx, name)
	if err != nil {
		return errResult(fmt.Sprintf("find node: %v", err)), nil
	}
	if len(candidates) == 0 {
		return errResult(fmt.Sprintf("node not found: %s", name)), nil
	}
	root := candidates[0]

	res, err := st.BFS(ctx, root.ID, dir, relTypes, depth, 200)
	if err != nil {
		return errResult(fmt.Sprintf("bfs: %v", err)), nil
	}

	type hopEntry struct {
		nodeEntry
		Hop int `json:"hop"`
	}
	hops := make([]hopEntry, 0, len(res.Visited))
	for _, h := range res.Visited {
		hops = append(hops, hopEntry{nodeEntry: toEntry(h.Node), Hop: h.Hop})
	}
	edges := make([]graph.Relation, 0, len(res.Relations))
	for _, r := range res.Relations {
		edges = append(edges, graph.Relation{From: r.From, To: r.To, Type: r.Type})
	}

	response := map[string]any{
		"root":      toEntry(root),
		"direction": dir,
		"depth":     depth,
		"visited":   hops,
		"relations": edges,
	}
	if len(candidates) > 1 {
		others := make([]nodeEntry, 0, len(candidates)-1)
		for _, c := range candidates[1:] {
			others = append(others, toEntry(c))
		}
		response["ambiguous"] = others
	}
	return jsonResult(response), nil
}
