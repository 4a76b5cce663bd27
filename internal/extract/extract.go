// Package extract turns a loaded project into graph parts. Each pass reads
// the immutable project view and writes only its own graph.Part, so passes
// may run concurrently.
package extract

import (
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/ident"
	"github.com/DeusData/codebase-graph/internal/project"
)

// Options configures an Extractor. Zero values select the defaults.
type Options struct {
	IDs        *ident.Generator
	Heuristics *Heuristics
}

// Extractor holds what every pass needs: the project, the id generator and
// the naming heuristics.
type Extractor struct {
	Project    *project.Project
	IDs        *ident.Generator
	Heuristics Heuristics
}

// New returns an Extractor for p.
func New(p *project.Project, opts Options) *Extractor {
	e := &Extractor{Project: p, IDs: opts.IDs, Heuristics: DefaultHeuristics()}
	if e.IDs == nil {
		e.IDs = ident.Default
	}
	if opts.Heuristics != nil {
		e.Heuristics = *opts.Heuristics
	}
	return e
}

func (e *Extractor) fileID(f *project.File) string {
	return e.IDs.File(f.RelPath, f.Subtype)
}

func (e *Extractor) declID(d project.Decl) string {
	return e.IDs.Decl(d.Kind, d.File, d.Name)
}

func (e *Extractor) classID(c *project.Class) string {
	return e.IDs.Class(c.File, c.Name)
}

func (e *Extractor) methodID(c *project.Class, m *project.Method) string {
	return e.IDs.Method(c.File, c.Name, m.Name)
}

// callableFunc receives each method (cls non-nil) or function (cls nil)
// together with its node id.
type callableFunc func(f *project.File, cls *project.Class, cb *project.Callable, id string)

func (e *Extractor) eachCallable(fn callableFunc) {
	for _, f := range e.Project.Files {
		for _, c := range f.Classes {
			for _, m := range c.Methods {
				fn(f, c, &m.Callable, e.methodID(c, m))
			}
		}
		for _, fun := range f.Functions {
			fn(f, nil, &fun.Callable, e.IDs.Function(f.RelPath, fun.Name))
		}
	}
}

// scope answers "what is the declared type of this name" inside one callable.
type scope struct {
	p      *project.Project
	file   *project.File
	params map[string]project.TypeRef
	body   *project.Body
}

func newScope(p *project.Project, f *project.File, cb *project.Callable) *scope {
	s := &scope{p: p, file: f, params: make(map[string]project.TypeRef, len(cb.Params)), body: &cb.Body}
	for _, prm := range cb.Params {
		s.params[prm.Name] = prm.Type
	}
	return s
}

// shadowed reports whether name is bound by a parameter or local.
func (s *scope) shadowed(name string) bool {
	if _, ok := s.params[name]; ok {
		return true
	}
	return s.body.Bound[name]
}

// typeOf returns the declared type of a parameter, typed local or top-level
// variable, with the file its type names resolve in.
func (s *scope) typeOf(name string) (project.TypeRef, *project.File, bool) {
	if t, ok := s.params[name]; ok {
		return t, s.file, t.Head() != ""
	}
	if t, ok := s.body.Locals[name]; ok {
		return t, s.file, true
	}
	if s.body.Bound[name] {
		return project.TypeRef{}, nil, false
	}
	d, ok := s.p.Resolve(s.file, name)
	if !ok {
		return project.TypeRef{}, nil, false
	}
	v := s.p.Variable(d)
	if v == nil || v.Type.Head() == "" {
		return project.TypeRef{}, nil, false
	}
	return v.Type, s.p.File(d.File), true
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// isTypeDecl reports whether d can be the target of a type reference.
func isTypeDecl(d project.Decl) bool {
	switch d.Kind {
	case graph.KindClass, graph.KindInterface, graph.KindEnum, graph.KindTypeAlias:
		return true
	}
	return false
}
