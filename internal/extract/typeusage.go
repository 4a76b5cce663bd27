package extract

import (
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/project"
)

// TypeUsage emits USES_* and CREATES_* relations from methods and functions
// to the types their bodies reference.
func (e *Extractor) TypeUsage() graph.Part {
	var part graph.Part
	e.eachCallable(func(f *project.File, cls *project.Class, cb *project.Callable, from string) {
		e.typeUsage(&part, newScope(e.Project, f, cb), cls, cb, from)
	})
	return part
}

func (e *Extractor) typeUsage(part *graph.Part, s *scope, cls *project.Class, cb *project.Callable, from string) {
	p, h := e.Project, e.Heuristics
	f := s.file

	for _, name := range cb.Body.TypeRefs {
		d, ok := p.ResolveName(f, name)
		if !ok {
			continue
		}
		switch d.Kind {
		case graph.KindClass:
			if h.modelLike(d.Name) {
				part.Link(from, e.declID(d), graph.RelUsesModel)
			} else {
				part.Link(from, e.declID(d), graph.RelUsesClass)
			}
		case graph.KindInterface:
			part.Link(from, e.declID(d), graph.RelUsesInterface)
		case graph.KindEnum:
			part.Link(from, e.declID(d), graph.RelUsesEnum)
		case graph.KindTypeAlias:
			part.Link(from, e.declID(d), graph.RelUsesType)
		}
	}

	for _, name := range cb.Body.Identifiers {
		if s.shadowed(name) {
			continue
		}
		d, ok := p.Resolve(f, name)
		if !ok {
			continue
		}
		switch d.Kind {
		case graph.KindClass:
			if h.modelLike(d.Name) {
				part.Link(from, e.declID(d), graph.RelUsesModel)
			}
		case graph.KindInterface:
			part.Link(from, e.declID(d), graph.RelUsesInterface)
		case graph.KindEnum:
			part.Link(from, e.declID(d), graph.RelUsesEnum)
		case graph.KindTypeAlias:
			part.Link(from, e.declID(d), graph.RelUsesType)
		}
	}

	for _, acc := range cb.Body.Accesses {
		if !acc.This {
			if typ, ctx, ok := s.typeOf(acc.Object); ok {
				e.linkModels(part, ctx, from, typ, true)
			}
			continue
		}
		if cls == nil || !(h.IsModel(acc.Object) || h.IsRepository(acc.Object)) {
			continue
		}
		if typ, declaring, ok := p.ClassMember(cls, acc.Object); ok {
			e.linkModels(part, p.File(declaring.File), from, typ, false)
		}
	}

	for _, name := range cb.Body.News {
		d, ok := p.ResolveName(f, name)
		if !ok || d.Kind != graph.KindClass {
			continue
		}
		if h.modelLike(d.Name) {
			part.Link(from, e.declID(d), graph.RelCreatesModel)
		} else {
			part.Link(from, e.declID(d), graph.RelCreatesInst)
		}
	}
}

// linkModels emits USES_MODEL to each named type in typ that resolves to a
// class, interface or type alias. With requireModelName only model or
// entity names qualify; otherwise the head must be model-like and generic
// arguments always qualify (Repository<User> yields User).
func (e *Extractor) linkModels(part *graph.Part, ctx *project.File, from string, typ project.TypeRef, requireModelName bool) {
	for i, name := range typ.Names {
		d, ok := e.Project.ResolveName(ctx, name)
		if !ok || d.Kind == graph.KindEnum || !isTypeDecl(d) {
			continue
		}
		modelName := e.Heuristics.modelLike(d.Name)
		if requireModelName || i == 0 {
			if !modelName {
				continue
			}
		}
		part.Link(from, e.declID(d), graph.RelUsesModel)
	}
}
