package graph

import (
	"bytes"
	"testing"
)

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	rels := []Relation{
		{From: "a", To: "b", Type: RelCalls},
		{From: "a", To: "b", Type: RelUses},
		{From: "a", To: "b", Type: RelCalls},
		{From: "b", To: "a", Type: RelCalls},
		{From: "a", To: "b", Type: RelCalls},
	}

	got := Dedup(rels)
	if len(got) != 3 {
		t.Fatalf("expected 3 relations, got %d: %v", len(got), got)
	}
	want := []Relation{
		{From: "a", To: "b", Type: RelCalls},
		{From: "a", To: "b", Type: RelUses},
		{From: "b", To: "a", Type: RelCalls},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("relation %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDedupDistinctTypes(t *testing.T) {
	rels := []Relation{
		{From: "x", To: "y", Type: "T"},
		{From: "x", To: "y", Type: "T2"},
	}
	if got := Dedup(rels); len(got) != 2 {
		t.Errorf("expected 2 distinct relations, got %d", len(got))
	}
}

func TestAssemble(t *testing.T) {
	structure := Part{
		Nodes: []Node{
			{ID: "fil-1", Kind: KindFile, Name: "a.ts"},
			{ID: "cls-1", Kind: KindClass, Name: "A"},
		},
		Relations: []Relation{{From: "fil-1", To: "cls-1", Type: RelDeclares}},
	}
	routes := Part{
		Nodes:     []Node{{ID: "rte-1", Kind: KindRoute, Name: "GET /a"}},
		Relations: []Relation{{From: "met-1", To: "rte-1", Type: RelHandlesRoute}},
	}
	inheritance := Part{
		Relations: []Relation{
			{From: "fil-1", To: "cls-1", Type: RelDeclares},
			{From: "cls-1", To: "decorator:Controller", Type: RelDecoratedBy},
		},
	}

	g := Assemble(structure, routes, inheritance)
	if len(g.Nodes) != 3 {
		t.Errorf("nodes: got %d, want 3", len(g.Nodes))
	}
	if len(g.Relations) != 3 {
		t.Errorf("relations: got %d, want 3", len(g.Relations))
	}
	if g.Counts[KindFile] != 1 || g.Counts[KindClass] != 1 || g.Counts[KindRoute] != 1 {
		t.Errorf("unexpected counts: %v", g.Counts)
	}
	if g.Nodes[2].ID != "rte-1" {
		t.Errorf("node order not preserved: %v", g.Nodes)
	}
}

func TestPartLinkDropsEmptyEndpoints(t *testing.T) {
	var p Part
	p.Link("", "b", RelCalls)
	p.Link("a", "", RelCalls)
	p.Link("a", "a", RelCalls)
	if len(p.Relations) != 1 {
		t.Fatalf("expected only the self call to survive, got %v", p.Relations)
	}
}

func TestCollisions(t *testing.T) {
	nodes := []Node{
		{ID: "cls-aaaa", Kind: KindClass, Name: "A", FilePath: "src/a.ts"},
		{ID: "cls-aaaa", Kind: KindClass, Name: "B", FilePath: "src/b.ts"},
		{ID: "fil-1", Kind: KindFile, Name: "a.ts"},
		{ID: "fil-2", Kind: KindFile, Name: "b.ts"},
		{ID: "var-x", Kind: KindVariable, Name: "x", FilePath: "src/a.ts"},
		{ID: "var-x", Kind: KindVariable, Name: "x", FilePath: "src/a.ts"},
	}
	got := Collisions(nodes)
	if len(got) != 1 {
		t.Fatalf("expected 1 collision, got %d: %v", len(got), got)
	}
	if got[0].ID != "cls-aaaa" || len(got[0].Nodes) != 2 {
		t.Errorf("unexpected collision: %+v", got[0])
	}
}

func TestWriteRead(t *testing.T) {
	g := Assemble(Part{
		Nodes: []Node{
			{ID: "fil-schema-1", Kind: KindFile, Name: "user.schema.ts", FilePath: "src/user.schema.ts", Subtype: "schema",
				Meta: map[string]any{"subtype": "schema"}},
			{ID: "met-1", Kind: KindMethod, Name: "find", ParentID: "cls-1",
				Meta: map[string]any{"parameters": []map[string]any{{"name": "id", "type": "string"}}}},
		},
		Relations: []Relation{{From: "cls-1", To: "met-1", Type: RelHasMethod}},
	})

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"filePath": "src/user.schema.ts"`)) {
		t.Errorf("expected camelCase filePath in output:\n%s", buf.String())
	}
	if bytes.Contains(buf.Bytes(), []byte(`"parentId": ""`)) {
		t.Errorf("empty parentId should be omitted:\n%s", buf.String())
	}

	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(back.Nodes) != 2 || len(back.Relations) != 1 {
		t.Fatalf("round trip lost data: %d nodes, %d relations", len(back.Nodes), len(back.Relations))
	}
	if back.Counts[KindMethod] != 1 {
		t.Errorf("counts not recomputed: %v", back.Counts)
	}
	params, ok := back.Nodes[1].Meta["parameters"].([]any)
	if !ok || len(params) != 1 {
		t.Errorf("nested meta not decoded: %#v", back.Nodes[1].Meta["parameters"])
	}
}
