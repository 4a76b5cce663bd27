package project

import (
	"strings"

	"github.com/DeusData/codebase-graph/internal/graph"
)

// maxResolveDepth bounds re-export chains and extends walks.
const maxResolveDepth = 8

// Resolve returns the declaration visible under name in file: a local
// top-level declaration first, then a named or default import.
func (p *Project) Resolve(file *File, name string) (Decl, bool) {
	return p.resolveIn(file, name, 0)
}

func (p *Project) resolveIn(file *File, name string, depth int) (Decl, bool) {
	if file == nil || name == "" || depth > maxResolveDepth {
		return Decl{}, false
	}
	if d, ok := file.decls[name]; ok {
		return d, true
	}
	for _, imp := range file.Imports {
		if imp.Target == "" {
			continue
		}
		if imp.Default == name {
			return p.resolveExport(imp.Target, "default", depth+1)
		}
		for _, n := range imp.Named {
			if n.Local == name {
				return p.resolveExport(imp.Target, n.Name, depth+1)
			}
		}
	}
	return Decl{}, false
}

// resolveExport finds what module relPath exports under name.
func (p *Project) resolveExport(relPath, name string, depth int) (Decl, bool) {
	file := p.byPath[relPath]
	if file == nil || depth > maxResolveDepth {
		return Decl{}, false
	}
	if local, ok := file.exports[name]; ok {
		return p.resolveIn(file, local, depth)
	}
	if d, ok := file.decls[name]; ok {
		return d, true
	}
	for _, re := range file.ReExports {
		if re.Target == "" {
			continue
		}
		switch {
		case re.Star:
			if d, ok := p.resolveExport(re.Target, name, depth+1); ok {
				return d, true
			}
		case re.Namespace == "":
			for _, n := range re.Names {
				if n.Local == name {
					return p.resolveExport(re.Target, n.Name, depth+1)
				}
			}
		}
	}
	return Decl{}, false
}

// ResolveMember resolves ns.name where ns is a namespace import of file.
func (p *Project) ResolveMember(file *File, namespace, name string) (Decl, bool) {
	if ns := p.NamespaceTarget(file, namespace); ns != "" {
		return p.resolveExport(ns, name, 1)
	}
	return Decl{}, false
}

// NamespaceTarget returns the module bound by `import * as namespace`.
func (p *Project) NamespaceTarget(file *File, namespace string) string {
	for _, imp := range file.Imports {
		if imp.Namespace == namespace && imp.Target != "" {
			return imp.Target
		}
	}
	return ""
}

// ResolveName resolves a possibly qualified name ("User" or "models.User").
func (p *Project) ResolveName(file *File, name string) (Decl, bool) {
	if ns, member, ok := strings.Cut(name, "."); ok {
		return p.ResolveMember(file, ns, member)
	}
	return p.Resolve(file, name)
}

// Class returns the class declared by d, or nil.
func (p *Project) Class(d Decl) *Class {
	if d.Kind != graph.KindClass {
		return nil
	}
	file := p.byPath[d.File]
	if file == nil {
		return nil
	}
	for _, c := range file.Classes {
		if c.Name == d.Name {
			return c
		}
	}
	return nil
}

// ResolveClass resolves name in file and returns it when it is a class.
func (p *Project) ResolveClass(file *File, name string) *Class {
	d, ok := p.ResolveName(file, name)
	if !ok {
		return nil
	}
	return p.Class(d)
}

// Superclass returns the resolved class c extends, or nil.
func (p *Project) Superclass(c *Class) *Class {
	if c == nil || c.Extends == "" {
		return nil
	}
	return p.ResolveClass(p.byPath[c.File], c.Extends)
}

// FindMethod looks name up on c and its superclasses. It returns the
// declaring class along with the method.
func (p *Project) FindMethod(c *Class, name string) (*Class, *Method) {
	for depth := 0; c != nil && depth <= maxResolveDepth; depth++ {
		for _, m := range c.Methods {
			if m.Name == name {
				return c, m
			}
		}
		c = p.Superclass(c)
	}
	return nil, nil
}

// ClassMember returns the declared type of a property or constructor
// parameter property of c or its superclasses, together with the class
// that declares it.
func (p *Project) ClassMember(c *Class, name string) (TypeRef, *Class, bool) {
	for depth := 0; c != nil && depth <= maxResolveDepth; depth++ {
		for _, prop := range c.Properties {
			if prop.Name == name {
				return prop.Type, c, true
			}
		}
		if c.Constructor != nil {
			for _, prm := range c.Constructor.Params {
				if prm.Name == name && prm.IsProperty() {
					return prm.Type, c, true
				}
			}
		}
		c = p.Superclass(c)
	}
	return TypeRef{}, nil, false
}

// Variable returns the top-level variable declared by d, or nil.
func (p *Project) Variable(d Decl) *Variable {
	if d.Kind != graph.KindVariable {
		return nil
	}
	if file := p.byPath[d.File]; file != nil {
		for _, v := range file.Variables {
			if v.Name == d.Name {
				return v
			}
		}
	}
	return nil
}
