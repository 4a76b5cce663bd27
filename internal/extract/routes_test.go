package extract

import (
	"testing"

	"github.com/DeusData/codebase-graph/internal/graph"
)

func TestRoutePath(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"users", ":id", "/users/:id"},
		{"users", "", "/users"},
		{"/users/", "/:id/", "/users/:id"},
		{"", "", "/"},
		{"", "health", "/health"},
		{"api//v1", "items", "/api/v1/items"},
	}
	for _, tt := range tests {
		if got := RoutePath(tt.base, tt.path); got != tt.want {
			t.Errorf("RoutePath(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestRoutes(t *testing.T) {
	e := newExtractor(t, map[string]string{
		"src/users.controller.ts": `
@Controller('users')
export class UsersController {
  @Get(':id')
  findOne(id: string) {}

  @Post()
  create() {}

  @Patch({ path: 'bulk' })
  bulk() {}

  helper() {}
}

export class NotAController {
  @Get('x')
  x() {}
}
`,
	})
	part := e.Routes()
	rel := "src/users.controller.ts"

	want := []struct {
		method, verb, path string
	}{
		{"findOne", "GET", "/users/:id"},
		{"create", "POST", "/users"},
		{"bulk", "PATCH", "/users/bulk"},
	}
	if len(part.Nodes) != len(want) {
		t.Fatalf("expected %d routes, got %+v", len(want), part.Nodes)
	}
	for _, w := range want {
		methodID := ids.Method(rel, "UsersController", w.method)
		routeID := ids.Route(rel, w.verb, w.path)
		n := findNode(part, routeID)
		if n == nil {
			t.Errorf("missing route %s %s", w.verb, w.path)
			continue
		}
		if n.Kind != graph.KindRoute || n.Name != w.verb+" "+w.path || n.ParentID != methodID {
			t.Errorf("route node = %+v", n)
		}
		if n.Meta["controller"] != "UsersController" || n.Meta["httpMethod"] != w.verb {
			t.Errorf("route meta = %v", n.Meta)
		}
		if !hasRel(part, methodID, routeID, graph.RelHandlesRoute) {
			t.Errorf("missing HANDLES_ROUTE for %s", w.method)
		}
	}
}
