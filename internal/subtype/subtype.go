package subtype

import (
	"regexp"
	"sort"
	"strings"

	"github.com/DeusData/codebase-graph/internal/graph"
)

var codeExt = regexp.MustCompile(`\.(ts|tsx|js|jsx|mts|cts|mjs|cjs)$`)

// Detect returns the subtype encoded in a file name: everything after the
// first dot once the code extension (and a declaration ".d") is removed.
// "user.schema.ts" yields "schema", "auth.service.spec.ts" yields
// "service.spec", and "index.ts" yields "".
func Detect(fileName string) string {
	name := codeExt.ReplaceAllString(fileName, "")
	name = strings.TrimSuffix(name, ".d")

	_, rest, ok := strings.Cut(name, ".")
	if !ok {
		return ""
	}
	return rest
}

// All returns the sorted unique subtypes of the given file names.
func All(fileNames []string) []string {
	set := make(map[string]struct{})
	for _, name := range fileNames {
		if s := Detect(name); s != "" {
			set[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Filter returns the File nodes carrying the given subtype.
func Filter(nodes []graph.Node, subtype string) []graph.Node {
	var out []graph.Node
	for _, n := range nodes {
		if n.Kind == graph.KindFile && n.Subtype == subtype {
			out = append(out, n)
		}
	}
	return out
}

// Group buckets File nodes by subtype. Files without one are left out.
func Group(nodes []graph.Node) map[string][]graph.Node {
	out := make(map[string][]graph.Node)
	for _, n := range nodes {
		if n.Kind == graph.KindFile && n.Subtype != "" {
			out[n.Subtype] = append(out[n.Subtype], n)
		}
	}
	return out
}

// Stats counts File nodes per subtype.
func Stats(nodes []graph.Node) map[string]int {
	out := make(map[string]int)
	for _, n := range nodes {
		if n.Kind == graph.KindFile && n.Subtype != "" {
			out[n.Subtype]++
		}
	}
	return out
}
