package ingest

import (
	"reflect"
	"testing"

	"github.com/DeusData/codebase-graph/internal/graph"
)

func TestFlatten(t *testing.T) {
	got := Flatten(map[string]any{
		"isAsync":    true,
		"count":      3,
		"missing":    nil,
		"decorators": []string{"Get", "Auth"},
		"parameters": []map[string]any{{"name": "x", "type": "number"}},
		"mixed":      []any{"a", []int{1}},
		"obj":        map[string]any{"k": "v"},
	})
	want := map[string]any{
		"isAsync":    true,
		"count":      3,
		"decorators": []string{"Get", "Auth"},
		"parameters": `[{"name":"x","type":"number"}]`,
		"mixed":      `["a",[1]]`,
		"obj":        `{"k":"v"}`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten:\n got %#v\nwant %#v", got, want)
	}
}

func TestNodeProps(t *testing.T) {
	props := NodeProps(graph.Node{
		ID:       "cls-1",
		Kind:     graph.KindClass,
		Name:     "A",
		FilePath: "src/a.ts",
		Meta:     map[string]any{"isExported": true, "parentId": "stale"},
	})
	want := map[string]any{"name": "A", "filePath": "src/a.ts", "isExported": true}
	if !reflect.DeepEqual(props, want) {
		t.Errorf("NodeProps = %v, want %v", props, want)
	}
}
