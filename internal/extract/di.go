package extract

import "github.com/DeusData/codebase-graph/internal/graph"

// DI emits INJECTS from each class to the classes its first constructor
// takes as parameters.
func (e *Extractor) DI() graph.Part {
	var part graph.Part
	for _, f := range e.Project.Files {
		for _, c := range f.Classes {
			if c.Constructor == nil {
				continue
			}
			from := e.classID(c)
			for _, prm := range c.Constructor.Params {
				if dep := e.Project.ResolveClass(f, prm.Type.Head()); dep != nil {
					part.Link(from, e.classID(dep), graph.RelInjects)
				}
			}
		}
	}
	return part
}
