package ident

import (
	"strings"
	"testing"

	"github.com/DeusData/codebase-graph/internal/graph"
)

func TestKnownIDs(t *testing.T) {
	g := Default
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"file", g.File("src/app.ts", ""), "fil-841254fe"},
		{"file with subtype", g.File("src/user.schema.ts", "schema"), "fil-schema-1e08539a"},
		{"class", g.Class("src/a.ts", "Foo"), "cls-742c9d7c"},
		{"method", g.Method("src/a.ts", "Foo", "bar"), "met-444cc6f2"},
		{"route", g.Route("src/c.ts", "GET", "/users"), "rte-2284f12f"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestIDsAreDeterministic(t *testing.T) {
	a := New(8)
	b := New(8)
	for _, kind := range graph.AllKinds() {
		x := a.ID(kind, "src/x/y.service.ts", "Y.run")
		y := b.ID(kind, "src/x/y.service.ts", "Y.run")
		if x != y {
			t.Errorf("%s: ids differ across generators: %s vs %s", kind, x, y)
		}
		if !strings.HasPrefix(x, Prefix(kind)+"-") {
			t.Errorf("%s: id %s lacks prefix %s", kind, x, Prefix(kind))
		}
	}
}

func TestPrefixes(t *testing.T) {
	want := map[graph.Kind]string{
		graph.KindFile: "fil", graph.KindClass: "cls", graph.KindMethod: "met",
		graph.KindFunction: "fun", graph.KindInterface: "int", graph.KindEnum: "enm",
		graph.KindEnumMember: "emb", graph.KindTypeAlias: "typ", graph.KindProperty: "prp",
		graph.KindParameter: "par", graph.KindVariable: "var", graph.KindRoute: "rte",
		graph.KindModel: "mdl",
	}
	for kind, p := range want {
		if got := Prefix(kind); got != p {
			t.Errorf("Prefix(%s) = %q, want %q", kind, got, p)
		}
	}
	if got := Prefix("Widget"); got != "unk" {
		t.Errorf("Prefix(unknown) = %q, want unk", got)
	}
}

func TestDistinctInputsDistinctIDs(t *testing.T) {
	g := Default
	ids := map[string]string{
		"class A":        g.Class("src/a.ts", "A"),
		"class A in b":   g.Class("src/b.ts", "A"),
		"interface A":    g.Interface("src/a.ts", "A"),
		"method A.run":   g.Method("src/a.ts", "A", "run"),
		"property A.run": g.Property("src/a.ts", "A", "run"),
	}
	seen := make(map[string]string)
	for label, id := range ids {
		if other, ok := seen[id]; ok {
			t.Errorf("%s and %s share id %s", label, other, id)
		}
		seen[id] = label
	}
}

func TestHashLength(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 8}, {4, 8}, {8, 8}, {12, 12}, {64, 64}, {100, 64},
	}
	for _, tt := range tests {
		g := New(tt.in)
		if g.HashLen() != tt.want {
			t.Errorf("New(%d).HashLen() = %d, want %d", tt.in, g.HashLen(), tt.want)
		}
		id := g.Class("src/a.ts", "Foo")
		if len(id) != len("cls-")+tt.want {
			t.Errorf("New(%d): id %q has wrong length", tt.in, id)
		}
	}

	long := New(16).Class("src/a.ts", "Foo")
	if long != "cls-742c9d7c24bd5117" {
		t.Errorf("16-digit id = %q", long)
	}
}

func TestFileSubtypeNormalization(t *testing.T) {
	id := Default.File("src/auth.service.spec.ts", "Service.Spec")
	if !strings.HasPrefix(id, "fil-service-spec-") {
		t.Errorf("unexpected file id %q", id)
	}
	if NormalizeSubtype("Dto.Input") != "dto-input" {
		t.Errorf("NormalizeSubtype = %q", NormalizeSubtype("Dto.Input"))
	}
}

func TestParameterQualifiedByParent(t *testing.T) {
	g := Default
	m1 := g.Method("src/a.ts", "A", "one")
	m2 := g.Method("src/a.ts", "A", "two")
	if g.Parameter("src/a.ts", m1, "id") == g.Parameter("src/a.ts", m2, "id") {
		t.Error("parameters of different methods must not share an id")
	}
}

func TestDecl(t *testing.T) {
	g := Default
	if g.Decl(graph.KindClass, "src/a.ts", "Foo") != g.Class("src/a.ts", "Foo") {
		t.Error("Decl(Class) should match Class")
	}
	if g.Decl(graph.KindMethod, "src/a.ts", "Foo") != "" {
		t.Error("Decl(Method) should be empty")
	}
}
