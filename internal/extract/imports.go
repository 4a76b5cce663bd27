package extract

import (
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/project"
)

var importRelByKind = map[graph.Kind]string{
	graph.KindClass:     graph.RelImportsClass,
	graph.KindInterface: graph.RelImportsIface,
	graph.KindEnum:      graph.RelImportsEnum,
	graph.KindFunction:  graph.RelImportsFunc,
	graph.KindTypeAlias: graph.RelImportsType,
	graph.KindVariable:  graph.RelImportsVar,
}

// Imports emits file-to-file IMPORTS, typed IMPORTS_* for bindings that are
// actually referenced, and cross-file class dependencies.
func (e *Extractor) Imports() graph.Part {
	var part graph.Part
	for _, f := range e.Project.Files {
		fileID := e.fileID(f)
		for _, imp := range f.Imports {
			target := e.Project.File(imp.Target)
			if target == nil {
				continue
			}
			targetID := e.fileID(target)
			part.Link(fileID, targetID, graph.RelImports)

			for _, n := range imp.Named {
				if f.Refs[n.Local] > 0 {
					e.linkImported(&part, f, fileID, n.Local)
				}
			}
			if imp.Default != "" && f.Refs[imp.Default] > 0 {
				part.Link(fileID, targetID, graph.RelImportsDefault)
				e.linkImported(&part, f, fileID, imp.Default)
			}
			if imp.Namespace != "" && f.Refs[imp.Namespace] > 0 {
				part.Link(fileID, targetID, graph.RelImportsNS)
			}
		}
		for _, c := range f.Classes {
			e.classDependencies(&part, f, c)
		}
	}
	return part
}

func (e *Extractor) linkImported(part *graph.Part, f *project.File, fileID, local string) {
	d, ok := e.Project.Resolve(f, local)
	if !ok || d.File == f.RelPath {
		return
	}
	if rel, ok := importRelByKind[d.Kind]; ok {
		part.Link(fileID, e.declID(d), rel)
	}
}

// classDependencies links c to classes declared in other files that it
// receives through its constructor (DEPENDS_ON) or holds as properties
// (HAS_DEPENDENCY).
func (e *Extractor) classDependencies(part *graph.Part, f *project.File, c *project.Class) {
	from := e.classID(c)
	if c.Constructor != nil {
		for _, prm := range c.Constructor.Params {
			if dep := e.Project.ResolveClass(f, prm.Type.Head()); dep != nil && dep.File != c.File {
				part.Link(from, e.classID(dep), graph.RelDependsOn)
			}
		}
	}
	for _, prop := range c.Properties {
		if dep := e.Project.ResolveClass(f, prop.Type.Head()); dep != nil && dep.File != c.File {
			part.Link(from, e.classID(dep), graph.RelHasDependency)
		}
	}
}
