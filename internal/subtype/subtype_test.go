package subtype

import (
	"reflect"
	"testing"

	"github.com/DeusData/codebase-graph/internal/graph"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"user.schema.ts", "schema"},
		{"index.ts", ""},
		{"auth.service.spec.ts", "service.spec"},
		{"app.module.tsx", "module"},
		{"types.d.ts", ""},
		{"jwt.type.d.ts", "type"},
		{"worker.config.mjs", "config"},
		{"main", ""},
		{"refresh-token.repository.ts", "repository"},
		{"legacy.cts", ""},
	}
	for _, tt := range tests {
		if got := Detect(tt.name); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAll(t *testing.T) {
	got := All([]string{"a.service.ts", "b.schema.ts", "index.ts", "c.service.ts", "d.dto.ts"})
	want := []string{"dto", "schema", "service"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("All = %v, want %v", got, want)
	}
}

func fileNodes() []graph.Node {
	return []graph.Node{
		{ID: "fil-service-1", Kind: graph.KindFile, Name: "a.service.ts", Subtype: "service"},
		{ID: "fil-service-2", Kind: graph.KindFile, Name: "b.service.ts", Subtype: "service"},
		{ID: "fil-schema-3", Kind: graph.KindFile, Name: "c.schema.ts", Subtype: "schema"},
		{ID: "fil-4", Kind: graph.KindFile, Name: "index.ts"},
		{ID: "cls-5", Kind: graph.KindClass, Name: "Service", Subtype: "service"},
	}
}

func TestFilter(t *testing.T) {
	got := Filter(fileNodes(), "service")
	if len(got) != 2 {
		t.Fatalf("Filter(service) returned %d nodes", len(got))
	}
	for _, n := range got {
		if n.Kind != graph.KindFile {
			t.Errorf("non-file node in result: %+v", n)
		}
	}
}

func TestGroupAndStats(t *testing.T) {
	groups := Group(fileNodes())
	if len(groups) != 2 || len(groups["service"]) != 2 || len(groups["schema"]) != 1 {
		t.Errorf("unexpected groups: %v", groups)
	}

	stats := Stats(fileNodes())
	want := map[string]int{"service": 2, "schema": 1}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Stats = %v, want %v", stats, want)
	}
}
