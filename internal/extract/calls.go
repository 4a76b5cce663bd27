package extract

import (
	"log/slog"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/project"
)

// Calls emits CALLS between methods and functions, plus USES from a class
// to the classes whose instances its methods call into.
func (e *Extractor) Calls() graph.Part {
	var part graph.Part
	e.eachCallable(func(f *project.File, cls *project.Class, cb *project.Callable, from string) {
		s := newScope(e.Project, f, cb)
		for _, call := range cb.Body.Calls {
			e.call(&part, s, cls, from, call)
		}
	})
	return part
}

func (e *Extractor) call(part *graph.Part, s *scope, cls *project.Class, from string, call project.Call) {
	p := e.Project
	switch call.Shape {
	case project.CallThis:
		if cls == nil {
			return
		}
		if owner, m := p.FindMethod(cls, call.Method); m != nil {
			part.Link(from, e.methodID(owner, m), graph.RelCalls)
		}

	case project.CallThisMember:
		if cls == nil {
			return
		}
		typ, declaring, ok := p.ClassMember(cls, call.Receiver)
		if !ok {
			return
		}
		e.callOnType(part, p.File(declaring.File), typ, cls, from, call.Method)

	case project.CallMember:
		if typ, ctx, ok := s.typeOf(call.Receiver); ok {
			e.callOnType(part, ctx, typ, cls, from, call.Method)
			return
		}
		if s.shadowed(call.Receiver) {
			return
		}
		// Static call on a class, or a function reached through a namespace import.
		if target := p.ResolveClass(s.file, call.Receiver); target != nil {
			if owner, m := p.FindMethod(target, call.Method); m != nil {
				part.Link(from, e.methodID(owner, m), graph.RelCalls)
			}
			return
		}
		if d, ok := p.ResolveMember(s.file, call.Receiver, call.Method); ok && d.Kind == graph.KindFunction {
			part.Link(from, e.declID(d), graph.RelCalls)
		}

	case project.CallBare:
		if s.shadowed(call.Method) {
			return
		}
		d, ok := p.Resolve(s.file, call.Method)
		if !ok {
			slog.Debug("calls.unresolved", "file", s.file.RelPath, "name", call.Method)
			return
		}
		if d.Kind == graph.KindFunction {
			part.Link(from, e.declID(d), graph.RelCalls)
		}
	}
}

// callOnType handles recv.method() where recv has declared type typ.
func (e *Extractor) callOnType(part *graph.Part, ctx *project.File, typ project.TypeRef, cls *project.Class, from, method string) {
	target := e.Project.ResolveClass(ctx, typ.Head())
	if target == nil {
		return
	}
	if cls != nil {
		part.Link(e.classID(cls), e.classID(target), graph.RelUses)
	}
	if owner, m := e.Project.FindMethod(target, method); m != nil {
		part.Link(from, e.methodID(owner, m), graph.RelCalls)
	}
}
