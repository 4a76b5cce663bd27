// Package ident computes the deterministic node identifiers shared by every
// extraction pass.
//
// An id has the form <prefix>-<hash>, where hash is the leading hex digits of
// sha256("<filePath>:<qualifier>"). File ids hash the path alone and carry the
// file subtype between prefix and hash when one is detected:
//
//	fil-schema-1e08539a   src/user.schema.ts
//	cls-742c9d7c          src/a.ts:Foo
//	met-444cc6f2          src/a.ts:Foo.bar
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/DeusData/codebase-graph/internal/graph"
)

const (
	// DefaultHashLen is the number of hex digits kept from the sha256 digest.
	DefaultHashLen = 8
	// MaxHashLen is the full hex length of a sha256 digest.
	MaxHashLen = 64
)

var prefixes = map[graph.Kind]string{
	graph.KindFile:       "fil",
	graph.KindClass:      "cls",
	graph.KindMethod:     "met",
	graph.KindFunction:   "fun",
	graph.KindInterface:  "int",
	graph.KindEnum:       "enm",
	graph.KindEnumMember: "emb",
	graph.KindTypeAlias:  "typ",
	graph.KindProperty:   "prp",
	graph.KindParameter:  "par",
	graph.KindVariable:   "var",
	graph.KindRoute:      "rte",
	graph.KindModel:      "mdl",
}

// Prefix returns the three-letter id prefix for a node kind, or "unk".
func Prefix(kind graph.Kind) string {
	if p, ok := prefixes[kind]; ok {
		return p
	}
	return "unk"
}

// Generator produces ids with a fixed hash length. The zero value is not
// usable; call New.
type Generator struct {
	hashLen int
}

// Default generates ids with DefaultHashLen hex digits.
var Default = New(DefaultHashLen)

// New returns a Generator keeping hashLen hex digits. Values outside
// [DefaultHashLen, MaxHashLen] are clamped.
func New(hashLen int) *Generator {
	if hashLen < DefaultHashLen {
		hashLen = DefaultHashLen
	}
	if hashLen > MaxHashLen {
		hashLen = MaxHashLen
	}
	return &Generator{hashLen: hashLen}
}

// HashLen returns the number of hex digits kept.
func (g *Generator) HashLen() int {
	return g.hashLen
}

func (g *Generator) hash(filePath, qualifier string) string {
	input := filePath
	if qualifier != "" {
		input = filePath + ":" + qualifier
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:g.hashLen]
}

// ID returns the id of an entity of the given kind declared in filePath and
// qualified by qualifier within that file.
func (g *Generator) ID(kind graph.Kind, filePath, qualifier string) string {
	return Prefix(kind) + "-" + g.hash(filePath, qualifier)
}

// NormalizeSubtype lowercases a subtype and replaces dots with dashes.
func NormalizeSubtype(subtype string) string {
	return strings.ReplaceAll(strings.ToLower(subtype), ".", "-")
}

// File returns the id of a file node. subtype may be empty.
func (g *Generator) File(filePath, subtype string) string {
	h := g.hash(filePath, "")
	if subtype == "" {
		return Prefix(graph.KindFile) + "-" + h
	}
	return Prefix(graph.KindFile) + "-" + NormalizeSubtype(subtype) + "-" + h
}

func (g *Generator) Class(filePath, name string) string {
	return g.ID(graph.KindClass, filePath, name)
}

func (g *Generator) Method(filePath, class, method string) string {
	return g.ID(graph.KindMethod, filePath, class+"."+method)
}

func (g *Generator) Function(filePath, name string) string {
	return g.ID(graph.KindFunction, filePath, name)
}

func (g *Generator) Interface(filePath, name string) string {
	return g.ID(graph.KindInterface, filePath, name)
}

func (g *Generator) Enum(filePath, name string) string {
	return g.ID(graph.KindEnum, filePath, name)
}

func (g *Generator) EnumMember(filePath, enum, member string) string {
	return g.ID(graph.KindEnumMember, filePath, enum+"."+member)
}

func (g *Generator) TypeAlias(filePath, name string) string {
	return g.ID(graph.KindTypeAlias, filePath, name)
}

func (g *Generator) Property(filePath, class, prop string) string {
	return g.ID(graph.KindProperty, filePath, class+"."+prop)
}

// Parameter ids are qualified by the id of the owning method.
func (g *Generator) Parameter(filePath, parentID, name string) string {
	return g.ID(graph.KindParameter, filePath, parentID+":"+name)
}

func (g *Generator) Variable(filePath, name string) string {
	return g.ID(graph.KindVariable, filePath, name)
}

func (g *Generator) Route(filePath, verb, path string) string {
	return g.ID(graph.KindRoute, filePath, verb+":"+path)
}

func (g *Generator) Model(filePath, name string) string {
	return g.ID(graph.KindModel, filePath, name)
}

// Decl returns the id of a top-level declaration of the given kind.
// Member kinds (Method, Property, EnumMember, Parameter) are not
// top-level and yield "".
func (g *Generator) Decl(kind graph.Kind, filePath, name string) string {
	switch kind {
	case graph.KindClass, graph.KindFunction, graph.KindInterface, graph.KindEnum,
		graph.KindTypeAlias, graph.KindVariable, graph.KindModel:
		return g.ID(kind, filePath, name)
	}
	return ""
}
