package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codebase-graph/internal/lang"
)

func mustParse(t *testing.T, l lang.Language, src string) (*tree_sitter.Tree, []byte) {
	t.Helper()
	source := []byte(src)
	tree, err := Parse(l, source)
	if err != nil {
		t.Fatalf("Parse %s: %v", l, err)
	}
	t.Cleanup(tree.Close)
	return tree, source
}

func countKinds(root *tree_sitter.Node) map[string]int {
	counts := map[string]int{}
	Walk(root, func(n *tree_sitter.Node) bool {
		counts[n.Kind()]++
		return true
	})
	return counts
}

func TestParseTypeScript(t *testing.T) {
	tree, _ := mustParse(t, lang.TypeScript, `
export class UserService {
  constructor(private readonly repo: UserRepository) {}
  find(id: string): User { return this.repo.get(id); }
}

export function helper(): void {}

interface User { id: string }
enum Role { Admin, Guest }
type Id = string;
`)
	counts := countKinds(tree.RootNode())
	for kind, want := range map[string]int{
		"class_declaration":      1,
		"function_declaration":   1,
		"interface_declaration":  1,
		"enum_declaration":       1,
		"type_alias_declaration": 1,
		"method_definition":      2,
	} {
		if counts[kind] != want {
			t.Errorf("expected %d %s, got %d", want, kind, counts[kind])
		}
	}
}

func TestParseTSX(t *testing.T) {
	tree, _ := mustParse(t, lang.TSX, `
export function App(): JSX.Element {
  return <div className="app">hello</div>;
}
`)
	counts := countKinds(tree.RootNode())
	if counts["function_declaration"] != 1 {
		t.Errorf("expected 1 function_declaration, got %d", counts["function_declaration"])
	}
	if counts["jsx_element"] != 1 {
		t.Errorf("expected 1 jsx_element, got %d", counts["jsx_element"])
	}
}

func TestParseUnsupported(t *testing.T) {
	if _, err := Parse(lang.Language("cobol"), []byte("x")); err == nil {
		t.Error("expected error for unsupported language")
	}
	if _, err := GetLanguage(lang.Language("cobol")); err == nil {
		t.Error("expected GetLanguage error for unsupported language")
	}
}

func TestWalkSkipChildren(t *testing.T) {
	tree, _ := mustParse(t, lang.TypeScript, `class A { m() { function inner() {} } }`)
	var fns int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			fns++
		}
		return n.Kind() != "class_declaration"
	})
	if fns != 0 {
		t.Errorf("walk descended into skipped class body, found %d functions", fns)
	}
}

func TestParseDecorator(t *testing.T) {
	tree, source := mustParse(t, lang.TypeScript, `
@Controller('users')
export class UsersController {
  @Get(':id')
  find() {}

  @http.Post()
  create() {}

  @Injectable
  other() {}
}
`)
	var got []Decorator
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "decorator" {
			d, ok := ParseDecorator(n, source)
			if !ok {
				t.Errorf("ParseDecorator failed for %q", NodeText(n, source))
			}
			got = append(got, d)
		}
		return true
	})
	if len(got) != 4 {
		t.Fatalf("expected 4 decorators, got %d", len(got))
	}

	wantNames := []string{"Controller", "Get", "Post", "Injectable"}
	for i, name := range wantNames {
		if got[i].Name != name {
			t.Errorf("decorator %d: name = %q, want %q", i, got[i].Name, name)
		}
	}
	if v, ok := StringValue(got[0].Args[0], source); !ok || v != "users" {
		t.Errorf("Controller arg = %q (%v), want users", v, ok)
	}
	if v, _ := StringValue(got[1].Args[0], source); v != ":id" {
		t.Errorf("Get arg = %q, want :id", v)
	}
	if got[2].Args == nil || len(got[2].Args) != 0 {
		t.Errorf("Post() should have an empty, non-nil arg list: %v", got[2].Args)
	}
	if got[3].Args != nil {
		t.Errorf("bare decorator should have nil args")
	}
	if got[0].Line != 2 {
		t.Errorf("Controller line = %d, want 2", got[0].Line)
	}
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`'a'`:   "a",
		`"b"`:   "b",
		"`c`":   "c",
		`'d"`:   `'d"`,
		`x`:     "x",
		`''`:    "",
		`'./m'`: "./m",
	}
	for in, want := range tests {
		if got := Unquote(in); got != want {
			t.Errorf("Unquote(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestStringValueTemplate(t *testing.T) {
	tree, source := mustParse(t, lang.TypeScript, "const a = `plain`; const b = `x${y}`;")
	var values []string
	var oks []bool
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "template_string" {
			v, ok := StringValue(n, source)
			values = append(values, v)
			oks = append(oks, ok)
			return false
		}
		return true
	})
	if len(values) != 2 {
		t.Fatalf("expected 2 template strings, got %d", len(values))
	}
	if !oks[0] || values[0] != "plain" {
		t.Errorf("plain template = %q (%v)", values[0], oks[0])
	}
	if oks[1] {
		t.Errorf("template with substitution should not yield a value")
	}
}
