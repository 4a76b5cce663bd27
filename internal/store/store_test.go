package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/ingest"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func row(id, name string, extra map[string]any) ingest.NodeRow {
	props := map[string]any{"name": name, "filePath": "src/a.ts"}
	for k, v := range extra {
		props[k] = v
	}
	return ingest.NodeRow{ID: id, Props: props}
}

func TestMergeNodesOverlaysProperties(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	if err := s.MergeNodes(ctx, "Class", []ingest.NodeRow{row("cls-1", "A", map[string]any{"isExported": true, "old": "x"})}); err != nil {
		t.Fatalf("MergeNodes: %v", err)
	}
	if err := s.MergeNodes(ctx, "Class", []ingest.NodeRow{row("cls-1", "A2", map[string]any{"isExported": false})}); err != nil {
		t.Fatalf("MergeNodes: %v", err)
	}

	n, err := s.FindNode(ctx, "cls-1")
	if err != nil || n == nil {
		t.Fatalf("FindNode: %v %v", n, err)
	}
	if n.Label != "Class" || n.Name != "A2" || n.FilePath != "src/a.ts" {
		t.Errorf("node = %+v", n)
	}
	if n.Properties["isExported"] != false || n.Properties["old"] != "x" {
		t.Errorf("properties = %v", n.Properties)
	}
	if count, _ := s.CountNodes(ctx); count != 1 {
		t.Errorf("CountNodes = %d, want 1", count)
	}
}

func TestFindNodeMissing(t *testing.T) {
	s := openTest(t)
	n, err := s.FindNode(context.Background(), "nope")
	if err != nil || n != nil {
		t.Errorf("FindNode(missing) = %v, %v", n, err)
	}
}

func TestMergeNodesLargeBatch(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	var rows []ingest.NodeRow
	for i := range 400 {
		rows = append(rows, ingest.NodeRow{ID: fmt.Sprintf("fun-%d", i), Props: map[string]any{"name": "f"}})
	}
	if err := s.MergeNodes(ctx, "Function", rows); err != nil {
		t.Fatal(err)
	}
	if count, _ := s.CountNodes(ctx); count != 400 {
		t.Errorf("CountNodes = %d, want 400", count)
	}
	found, err := s.FindNodesByLabel(ctx, "Function")
	if err != nil || len(found) != 400 {
		t.Errorf("FindNodesByLabel = %d, %v", len(found), err)
	}
}

func TestMergeRelationsDanglingAndDuplicate(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if err := s.MergeNodes(ctx, "Class", []ingest.NodeRow{row("cls-1", "A", nil), row("cls-2", "B", nil)}); err != nil {
		t.Fatal(err)
	}
	err := s.MergeRelations(ctx, "INJECTS", []ingest.RelationRow{
		{From: "cls-1", To: "cls-2"},
		{From: "cls-1", To: "cls-2"},
		{From: "cls-1", To: "decorator:Injectable"},
	})
	if err != nil {
		t.Fatalf("MergeRelations: %v", err)
	}
	if count, _ := s.CountRelations(ctx); count != 1 {
		t.Errorf("CountRelations = %d, want 1", count)
	}
	rels, err := s.FindRelationsFrom(ctx, "cls-1", "")
	if err != nil || len(rels) != 1 || rels[0] != (Relation{From: "cls-1", To: "cls-2", Type: "INJECTS"}) {
		t.Errorf("FindRelationsFrom = %v, %v", rels, err)
	}
	in, _ := s.FindRelationsTo(ctx, "cls-2", "INJECTS")
	if len(in) != 1 {
		t.Errorf("FindRelationsTo = %v", in)
	}
}

func TestTransactionRollsBackOnCheckFailure(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	err := s.WithTransaction(ctx, func(tx *Store) error {
		if err := tx.MergeNodes(ctx, "Class", []ingest.NodeRow{row("cls-1", "A", nil), row("cls-2", "B", nil)}); err != nil {
			return err
		}
		return tx.MergeRelations(ctx, "", []ingest.RelationRow{{From: "cls-1", To: "cls-2"}})
	})
	if err == nil {
		t.Fatal("expected CHECK constraint failure")
	}
	n, _ := s.CountNodes(ctx)
	r, _ := s.CountRelations(ctx)
	if n != 0 || r != 0 {
		t.Errorf("after rollback: %d nodes, %d relations", n, r)
	}
}

func TestCleanCascades(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	_ = s.MergeNodes(ctx, "Class", []ingest.NodeRow{row("cls-1", "A", nil), row("cls-2", "B", nil)})
	_ = s.MergeRelations(ctx, "USES", []ingest.RelationRow{{From: "cls-1", To: "cls-2"}})
	if err := s.Clean(ctx); err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountNodes(ctx)
	r, _ := s.CountRelations(ctx)
	if n != 0 || r != 0 {
		t.Errorf("after clean: %d nodes, %d relations", n, r)
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	if err := s.MergeNodes(ctx, "File", []ingest.NodeRow{row("fil-1", "a.service.ts", map[string]any{"subtype": "service"})}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeNodes(ctx, "Class", []ingest.NodeRow{row("cls-1", "UsersService", nil), row("cls-2", "UserRepository", nil)}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeNodes(ctx, "Method", []ingest.NodeRow{row("met-1", "find", nil), row("met-2", "query", nil)}); err != nil {
		t.Fatal(err)
	}
	for relType, rows := range map[string][]ingest.RelationRow{
		"DECLARES":   {{From: "fil-1", To: "cls-1"}, {From: "fil-1", To: "cls-2"}},
		"INJECTS":    {{From: "cls-1", To: "cls-2"}},
		"HAS_METHOD": {{From: "cls-1", To: "met-1"}, {From: "cls-2", To: "met-2"}},
		"CALLS":      {{From: "met-1", To: "met-2"}},
	} {
		if err := s.MergeRelations(ctx, relType, rows); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGetSchema(t *testing.T) {
	s := openTest(t)
	seed(t, s)
	info, err := s.GetSchema(context.Background())
	if err != nil {
		t.Fatalf("GetSchema: %v", err)
	}
	labels := map[string]int{}
	for _, lc := range info.NodeLabels {
		labels[lc.Label] = lc.Count
	}
	if labels["Class"] != 2 || labels["Method"] != 2 || labels["File"] != 1 {
		t.Errorf("labels = %v", labels)
	}
	if len(info.RelationshipTypes) != 4 {
		t.Errorf("relationship types = %v", info.RelationshipTypes)
	}
	found := false
	for _, p := range info.RelationshipPatterns {
		if p == "(:Method)-[:CALLS]->(:Method)  [1x]" {
			found = true
		}
	}
	if !found {
		t.Errorf("patterns = %v", info.RelationshipPatterns)
	}
	if len(info.SampleClassNames) != 2 || info.SampleClassNames[0] != "UserRepository" {
		t.Errorf("sample classes = %v", info.SampleClassNames)
	}
}

func TestSearch(t *testing.T) {
	s := openTest(t)
	seed(t, s)
	ctx := context.Background()

	out, err := s.Search(ctx, SearchParams{Label: "Class", NamePattern: "^User"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Total != 2 {
		t.Fatalf("Total = %d", out.Total)
	}
	first := out.Results[0]
	if first.Node.Name != "UserRepository" || first.InDegree != 2 || first.OutDegree != 1 {
		t.Errorf("first = %+v %+v", first, first.Node)
	}

	out, _ = s.Search(ctx, SearchParams{Subtype: "service"})
	if out.Total != 1 || out.Results[0].Node.ID != "fil-1" {
		t.Errorf("subtype search = %+v", out)
	}

	out, _ = s.Search(ctx, SearchParams{FilePattern: "src/*.ts", Limit: 2, Offset: 4})
	if out.Total != 5 || len(out.Results) != 1 {
		t.Errorf("paged search total=%d results=%d", out.Total, len(out.Results))
	}

	if _, err := s.Search(ctx, SearchParams{NamePattern: "("}); err == nil {
		t.Error("expected invalid pattern error")
	}
}

func TestBFS(t *testing.T) {
	s := openTest(t)
	seed(t, s)
	ctx := context.Background()

	res, err := s.BFS(ctx, "cls-1", Outbound, []string{"HAS_METHOD", "CALLS"}, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	hops := map[string]int{}
	for _, h := range res.Visited {
		hops[h.Node.ID] = h.Hop
	}
	if hops["met-1"] != 1 || hops["met-2"] != 2 || len(hops) != 2 {
		t.Errorf("hops = %v", hops)
	}

	res, _ = s.BFS(ctx, "met-2", Inbound, nil, 1, 0)
	if len(res.Visited) != 2 {
		t.Errorf("inbound hops = %d, want 2", len(res.Visited))
	}

	res, _ = s.BFS(ctx, "missing", Outbound, nil, 1, 0)
	if res.Root != nil || len(res.Visited) != 0 {
		t.Errorf("missing root = %+v", res)
	}
}

func TestRouter(t *testing.T) {
	r, err := NewRouter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := r.EnsureDatabase(ctx, "app"); err != nil {
		t.Fatalf("EnsureDatabase: %v", err)
	}
	if err := r.EnsureDatabase(ctx, "app"); !errors.Is(err, ingest.ErrAlreadyExists) {
		t.Errorf("second EnsureDatabase = %v, want ErrAlreadyExists", err)
	}
	if err := r.EnsureDatabase(ctx, "../escape"); !errors.Is(err, ingest.ErrInvalidName) {
		t.Errorf("EnsureDatabase(../escape) = %v", err)
	}

	dbs, err := r.ListDatabases()
	if err != nil || len(dbs) != 1 || dbs[0].Name != "app" {
		t.Fatalf("ListDatabases = %v, %v", dbs, err)
	}

	if _, err := r.OpenStore("other"); !errors.Is(err, ErrDatabaseNotFound) {
		t.Errorf("OpenStore(other) = %v", err)
	}
	if err := r.DeleteDatabase("app"); err != nil {
		t.Fatalf("DeleteDatabase: %v", err)
	}
	if r.HasDatabase("app") {
		t.Error("database still present after delete")
	}
	if err := r.DeleteDatabase("app"); !errors.Is(err, ErrDatabaseNotFound) {
		t.Errorf("second DeleteDatabase = %v", err)
	}
}

func sampleGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "fil-1", Kind: graph.KindFile, Name: "a.ts", FilePath: "src/a.ts", Meta: map[string]any{"contentHash": "00ff"}},
			{ID: "cls-1", Kind: graph.KindClass, Name: "A", FilePath: "src/a.ts", ParentID: "fil-1",
				Meta: map[string]any{"decorators": []string{"Injectable"}}},
			{ID: "met-1", Kind: graph.KindMethod, Name: "run", FilePath: "src/a.ts", ParentID: "cls-1",
				Meta: map[string]any{"parameters": []map[string]any{{"name": "x", "type": "number"}}}},
		},
		Relations: []graph.Relation{
			{From: "fil-1", To: "cls-1", Type: graph.RelDeclares},
			{From: "cls-1", To: "met-1", Type: graph.RelHasMethod},
			{From: "cls-1", To: "decorator:Injectable", Type: graph.RelDecoratedBy},
		},
	}
}

func TestEngineIngestIsIdempotent(t *testing.T) {
	r, err := NewRouter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	opts := ingest.DefaultOptions()
	opts.Retries = 1
	eng := ingest.New(r, opts)

	for i := range 2 {
		res, err := eng.Ingest(ctx, "app", sampleGraph())
		if err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
		if res.Nodes != 3 {
			t.Errorf("ingest %d: result = %+v", i, res)
		}
	}

	s, err := r.OpenStore("app")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	n, _ := s.CountNodes(ctx)
	rels, _ := s.CountRelations(ctx)
	if n != 3 || rels != 2 {
		t.Errorf("store has %d nodes, %d relations; want 3 and 2", n, rels)
	}

	m, _ := s.FindNode(ctx, "met-1")
	if m == nil || m.ParentID != "cls-1" || m.Properties["parameters"] != `[{"name":"x","type":"number"}]` {
		t.Errorf("method node = %+v", m)
	}
	c, _ := s.FindNode(ctx, "cls-1")
	if decs, ok := c.Properties["decorators"].([]any); !ok || len(decs) != 1 || decs[0] != "Injectable" {
		t.Errorf("class decorators = %#v", c.Properties["decorators"])
	}
}

func TestEngineInvalidLabelLeavesNoNodes(t *testing.T) {
	r, err := NewRouter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	g := sampleGraph()
	g.Nodes = append(g.Nodes, graph.Node{ID: "x-1", Kind: graph.Kind("Bad Label"), Name: "x"})

	_, err = ingest.New(r, ingest.DefaultOptions()).Ingest(ctx, "app", g)
	var pe *ingest.PhaseError
	if !errors.As(err, &pe) || pe.Phase != ingest.PhaseNodeImport {
		t.Fatalf("err = %v, want node-import PhaseError", err)
	}

	s, err := r.OpenStore("app")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if n, _ := s.CountNodes(ctx); n != 0 {
		t.Errorf("nodes after rolled-back import = %d", n)
	}
}
