package extract

import (
	"github.com/DeusData/codebase-graph/internal/graph"
)

// DecoratorTarget is the relation target used for a decorator name.
func DecoratorTarget(name string) string {
	return "decorator:" + name
}

// Inheritance emits EXTENDS, IMPLEMENTS and DECORATED_BY.
func (e *Extractor) Inheritance() graph.Part {
	var part graph.Part
	p := e.Project
	for _, f := range p.Files {
		for _, c := range f.Classes {
			classID := e.classID(c)
			if super := p.Superclass(c); super != nil {
				part.Link(classID, e.classID(super), graph.RelExtends)
			}
			for _, name := range c.Implements {
				d, ok := p.ResolveName(f, name)
				if ok && (d.Kind == graph.KindInterface || d.Kind == graph.KindClass) {
					part.Link(classID, e.declID(d), graph.RelImplements)
				}
			}
			for _, dec := range c.Decorators {
				part.Link(classID, DecoratorTarget(dec.Name), graph.RelDecoratedBy)
			}
			for _, m := range c.Methods {
				methodID := e.methodID(c, m)
				for _, dec := range m.Decorators {
					part.Link(methodID, DecoratorTarget(dec.Name), graph.RelDecoratedBy)
				}
			}
		}
		for _, it := range f.Interfaces {
			id := e.IDs.Interface(f.RelPath, it.Name)
			for _, name := range it.Extends {
				if d, ok := p.ResolveName(f, name); ok && d.Kind == graph.KindInterface {
					part.Link(id, e.declID(d), graph.RelExtends)
				}
			}
		}
	}
	return part
}
