package parser

import (
	"fmt"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/DeusData/codebase-graph/internal/lang"
)

var (
	languagesOnce sync.Once
	languages     map[lang.Language]*tree_sitter.Language
	parserPools   map[lang.Language]*sync.Pool
)

func initLanguages() {
	languagesOnce.Do(func() {
		languages = map[lang.Language]*tree_sitter.Language{
			lang.TypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			lang.TSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		}

		parserPools = make(map[lang.Language]*sync.Pool, len(languages))
		for l, tsLang := range languages {
			parserPools[l] = &sync.Pool{
				New: func() any {
					p := tree_sitter.NewParser()
					if err := p.SetLanguage(tsLang); err != nil {
						panic(fmt.Sprintf("set language: %v", err))
					}
					return p
				},
			}
		}
	})
}

// GetLanguage returns the tree-sitter Language for a lang.Language.
func GetLanguage(l lang.Language) (*tree_sitter.Language, error) {
	initLanguages()
	tsLang, ok := languages[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}
	return tsLang, nil
}

// Parse parses source code into a tree-sitter AST Tree.
// The caller must call tree.Close() when done.
// Parsers are pooled per language via sync.Pool.
func Parse(l lang.Language, source []byte) (*tree_sitter.Tree, error) {
	initLanguages()

	pool, ok := parserPools[l]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", l)
	}

	p, _ := pool.Get().(*tree_sitter.Parser)
	if p == nil {
		return nil, fmt.Errorf("failed to get parser for language %s", l)
	}
	tree := p.Parse(source, nil)
	pool.Put(p)

	if tree == nil {
		return nil, fmt.Errorf("parse failed for language %s", l)
	}

	return tree, nil
}

// WalkFunc is called for each node during AST traversal.
// Return false to skip children.
type WalkFunc func(node *tree_sitter.Node) bool

// Walk traverses the AST in depth-first order.
func Walk(node *tree_sitter.Node, fn WalkFunc) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			Walk(child, fn)
		}
	}
}

// NodeText returns the text content of a node.
func NodeText(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// FieldText returns the text of the named field child, or "" if absent.
func FieldText(node *tree_sitter.Node, field string, source []byte) string {
	if node == nil {
		return ""
	}
	return NodeText(node.ChildByFieldName(field), source)
}

// Children returns all direct children of node, named and anonymous.
func Children(node *tree_sitter.Node) []*tree_sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, node.ChildCount())
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := node.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first direct child with the given kind.
func ChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for _, c := range Children(node) {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// HasChildKind reports whether node has a direct child (usually an
// anonymous keyword token) of the given kind.
func HasChildKind(node *tree_sitter.Node, kind string) bool {
	return ChildOfKind(node, kind) != nil
}

// Line returns the 1-based start line of node.
func Line(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// Unquote strips one level of matching ', " or ` quotes.
func Unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// StringValue returns the literal value of a string or substitution-free
// template string node. ok is false for any other node.
func StringValue(node *tree_sitter.Node, source []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	switch node.Kind() {
	case "string":
		return Unquote(NodeText(node, source)), true
	case "template_string":
		if ChildOfKind(node, "template_substitution") != nil {
			return "", false
		}
		return Unquote(NodeText(node, source)), true
	}
	return "", false
}

// Decorator describes a parsed @Name(args) decorator.
type Decorator struct {
	// Name is the last segment of the decorator expression (Get for @http.Get()).
	Name string
	// Args holds the argument expression nodes; nil for bare @Name.
	Args []*tree_sitter.Node
	Line int
}

// ParseDecorator interprets a decorator node. ok is false when the
// expression is not an identifier, member access or call of one.
func ParseDecorator(node *tree_sitter.Node, source []byte) (Decorator, bool) {
	if node == nil || node.Kind() != "decorator" {
		return Decorator{}, false
	}
	var expr *tree_sitter.Node
	for _, c := range Children(node) {
		if c.IsNamed() {
			expr = c
			break
		}
	}
	if expr == nil {
		return Decorator{}, false
	}
	d := Decorator{Line: Line(node)}
	if expr.Kind() == "call_expression" {
		if args := expr.ChildByFieldName("arguments"); args != nil {
			d.Args = []*tree_sitter.Node{}
			for i := uint(0); i < args.NamedChildCount(); i++ {
				if a := args.NamedChild(i); a != nil && a.Kind() != "comment" {
					d.Args = append(d.Args, a)
				}
			}
		}
		expr = expr.ChildByFieldName("function")
	}
	d.Name = lastSegment(expr, source)
	return d, d.Name != ""
}

func lastSegment(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier", "type_identifier", "property_identifier":
		return NodeText(node, source)
	case "member_expression":
		return FieldText(node, "property", source)
	}
	text := NodeText(node, source)
	if i := strings.LastIndexByte(text, '.'); i >= 0 {
		return text[i+1:]
	}
	return text
}
