package project

import (
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/lang"
)

// File is the summary of one parsed source file. All fields are plain data;
// the syntax tree is released once the summary is built.
type File struct {
	Path        string // absolute
	RelPath     string // "src/..." forward slashes
	Name        string // base name
	Language    lang.Language
	Subtype     string
	ContentHash string

	Classes     []*Class
	Functions   []*Function
	Interfaces  []*Interface
	Enums       []*Enum
	TypeAliases []*TypeAlias
	Variables   []*Variable
	Imports     []*Import
	ReExports   []*ReExport

	// Refs counts identifier occurrences outside import clauses.
	Refs map[string]int

	decls   map[string]Decl
	exports map[string]string // exported name -> local name ("default" included)
}

// Decl identifies a top-level declaration by kind, name and declaring file.
type Decl struct {
	Kind graph.Kind
	Name string
	File string
}

// Decorator is an @Name(...) annotation. Args keeps the string literal
// arguments in order; Fields keeps string-valued properties of object
// literal arguments.
type Decorator struct {
	Name   string
	Args   []string
	Fields map[string]string
}

// Names returns decorator names in declaration order.
func Names(decs []Decorator) []string {
	out := make([]string, 0, len(decs))
	for _, d := range decs {
		out = append(out, d.Name)
	}
	return out
}

// TypeRef is a type annotation. Names holds the named types it mentions in
// source order; Names[0] is the head (Repo for Repo<User>, User for User[]).
type TypeRef struct {
	Text  string
	Names []string
}

// Head returns the outermost named type, or "".
func (t TypeRef) Head() string {
	if len(t.Names) == 0 {
		return ""
	}
	return t.Names[0]
}

type Param struct {
	Name          string
	Type          TypeRef
	Optional      bool
	Accessibility string // public/private/protected on parameter properties
	Readonly      bool
	Decorators    []Decorator
	Source        string
}

// IsProperty reports whether the parameter also declares a class member.
func (p Param) IsProperty() bool {
	return p.Accessibility != "" || p.Readonly
}

// Callable is the part shared by methods, functions and constructors.
type Callable struct {
	Name       string
	Params     []Param
	ReturnType string
	Async      bool
	Source     string
	Body       Body
}

type Method struct {
	Callable
	Static     bool
	Abstract   bool
	Visibility string
	Decorators []Decorator
}

type Property struct {
	Name       string
	Type       TypeRef
	Static     bool
	Readonly   bool
	Visibility string
	Decorators []Decorator
	Source     string
}

type Class struct {
	Name       string
	File       string
	Exported   bool
	Abstract   bool
	Decorators []Decorator
	Extends    string
	Implements []string

	// Constructor is the first constructor implementation, nil if none.
	Constructor *Callable
	Methods     []*Method
	Properties  []*Property
}

type Function struct {
	Callable
	File     string
	Exported bool
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Interface struct {
	Name       string
	File       string
	Exported   bool
	Extends    []string
	Properties []Field
}

type EnumMember struct {
	Name   string
	Value  any // string, int64, float64 or nil
	Source string
}

type Enum struct {
	Name     string
	File     string
	Exported bool
	Members  []EnumMember
}

type TypeAlias struct {
	Name       string
	File       string
	Exported   bool
	Definition string
	Source     string
}

type Variable struct {
	Name            string
	File            string
	Exported        bool
	Type            TypeRef
	DeclarationType string // const, let or var
	Source          string
}

// ImportName is one specifier of a named import or re-export list.
type ImportName struct {
	Name     string // name in the exporting module
	Local    string // binding in this module (or exported alias for re-exports)
	TypeOnly bool
}

type Import struct {
	Specifier string
	Target    string // RelPath of the resolved project file, "" if external
	TypeOnly  bool
	Default   string
	Namespace string
	Named     []ImportName
}

// ReExport is an export ... from '...' statement.
type ReExport struct {
	Specifier string
	Target    string
	Star      bool   // export * from
	Namespace string // export * as ns from
	Names     []ImportName
}

// CallShape classifies a call expression by its callee.
type CallShape int

const (
	CallBare       CallShape = iota // f()
	CallThis                        // this.m()
	CallMember                      // x.m()
	CallThisMember                  // this.x.m()
)

type Call struct {
	Shape    CallShape
	Receiver string
	Method   string
}

// Access is a property access. This marks this.Object accesses; Property is
// empty for a bare this.x.
type Access struct {
	This     bool
	Object   string
	Property string
}

// Body summarizes a callable body.
type Body struct {
	Calls       []Call
	TypeRefs    []string
	Identifiers []string
	Accesses    []Access
	News        []string
	// Locals are typed (or new-initialized) local variables.
	Locals map[string]TypeRef
	// Bound holds every name bound inside the body, typed or not.
	Bound map[string]bool
}
