package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind is the label of a structural code entity.
type Kind string

const (
	KindFile       Kind = "File"
	KindClass      Kind = "Class"
	KindMethod     Kind = "Method"
	KindFunction   Kind = "Function"
	KindInterface  Kind = "Interface"
	KindEnum       Kind = "Enum"
	KindEnumMember Kind = "EnumMember"
	KindTypeAlias  Kind = "TypeAlias"
	KindProperty   Kind = "Property"
	KindParameter  Kind = "Parameter"
	KindVariable   Kind = "Variable"
	KindRoute      Kind = "Route"
	KindModel      Kind = "Model"
)

// AllKinds returns every node kind in display order.
func AllKinds() []Kind {
	return []Kind{
		KindFile, KindClass, KindMethod, KindFunction, KindInterface, KindEnum,
		KindEnumMember, KindTypeAlias, KindProperty, KindParameter, KindVariable,
		KindRoute, KindModel,
	}
}

// Relation types emitted by the extractors.
const (
	RelDeclares     = "DECLARES"
	RelHasMethod    = "HAS_METHOD"
	RelHasProperty  = "HAS_PROPERTY"
	RelHasParameter = "HAS_PARAMETER"
	RelHasMember    = "HAS_MEMBER"

	RelInjects = "INJECTS"
	RelCalls   = "CALLS"
	RelUses    = "USES"

	RelUsesType       = "USES_TYPE"
	RelUsesClass      = "USES_CLASS"
	RelUsesInterface  = "USES_INTERFACE"
	RelUsesEnum       = "USES_ENUM"
	RelUsesModel      = "USES_MODEL"
	RelCreatesInst    = "CREATES_INSTANCE"
	RelCreatesModel   = "CREATES_MODEL"
	RelImports        = "IMPORTS"
	RelImportsClass   = "IMPORTS_CLASS"
	RelImportsIface   = "IMPORTS_INTERFACE"
	RelImportsEnum    = "IMPORTS_ENUM"
	RelImportsFunc    = "IMPORTS_FUNCTION"
	RelImportsType    = "IMPORTS_TYPE"
	RelImportsVar     = "IMPORTS_VARIABLE"
	RelImportsDefault = "IMPORTS_DEFAULT"
	RelImportsNS      = "IMPORTS_NAMESPACE"
	RelDependsOn      = "DEPENDS_ON"
	RelHasDependency  = "HAS_DEPENDENCY"

	RelExtends      = "EXTENDS"
	RelImplements   = "IMPLEMENTS"
	RelDecoratedBy  = "DECORATED_BY"
	RelHandlesRoute = "HANDLES_ROUTE"
)

// Node is a structural code entity.
type Node struct {
	ID       string         `json:"id"`
	Kind     Kind           `json:"kind"`
	Name     string         `json:"name"`
	FilePath string         `json:"filePath,omitempty"`
	ParentID string         `json:"parentId,omitempty"`
	Subtype  string         `json:"subtype,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Relation is a directed, typed edge between two node ids. Either endpoint
// may reference a node outside the current extraction.
type Relation struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Key returns the identity of the relation used for deduplication.
func (r Relation) Key() string {
	return r.From + "|" + r.To + "|" + r.Type
}

// Part is the output of a single extraction pass.
type Part struct {
	Nodes     []Node
	Relations []Relation
}

// AddNode appends a node to the part.
func (p *Part) AddNode(n Node) {
	p.Nodes = append(p.Nodes, n)
}

// Link appends a relation to the part. Relations with an empty endpoint are dropped.
func (p *Part) Link(from, to, relType string) {
	if from == "" || to == "" {
		return
	}
	p.Relations = append(p.Relations, Relation{From: from, To: to, Type: relType})
}

// Graph is the assembled extraction result.
type Graph struct {
	Nodes     []Node       `json:"nodes"`
	Relations []Relation   `json:"relations"`
	Counts    map[Kind]int `json:"counts"`
}

// Write serializes the graph as indented JSON.
func Write(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// Read decodes a graph written by Write. Counts are recomputed from the nodes.
func Read(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g.Counts = CountByKind(g.Nodes)
	return &g, nil
}
