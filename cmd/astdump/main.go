// Command astdump prints the tree-sitter syntax tree of a TypeScript file.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codebase-graph/internal/lang"
	"github.com/DeusData/codebase-graph/internal/parser"
)

func printAST(w io.Writer, node *tree_sitter.Node, field string, source []byte, indent int) {
	if node == nil {
		return
	}
	text := parser.NodeText(node, source)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i] + "..."
	}
	if len(text) > 60 {
		text = text[:60] + "..."
	}
	label := node.Kind()
	if field != "" {
		label = field + ": " + label
	}
	fmt.Fprintf(w, "%s%s [%d] %q\n", strings.Repeat("  ", indent), label, parser.Line(node), text)
	for i := uint(0); i < node.ChildCount(); i++ {
		printAST(w, node.Child(i), node.FieldNameForChild(uint32(i)), source, indent+1)
	}
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: astdump <file.ts>")
		os.Exit(2)
	}
	path := os.Args[1]
	l, ok := lang.LanguageForExtension(filepath.Ext(path))
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported extension: %s\n", filepath.Ext(path))
		os.Exit(2)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tree, err := parser.Parse(l, source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse:", err)
		os.Exit(1)
	}
	defer tree.Close()
	printAST(os.Stdout, tree.RootNode(), "", source, 0)
}
