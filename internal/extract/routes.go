package extract

import (
	"regexp"
	"strings"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/project"
)

// ControllerDecorator marks a class whose methods may handle routes.
const ControllerDecorator = "Controller"

// HTTPVerbs maps method decorators to HTTP verbs.
var HTTPVerbs = map[string]string{
	"Get":    "GET",
	"Post":   "POST",
	"Put":    "PUT",
	"Delete": "DELETE",
	"Patch":  "PATCH",
}

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// RoutePath joins a controller base path and a method path into the
// normalized full path: one leading slash, no duplicate or trailing slashes.
func RoutePath(base, path string) string {
	full := repeatedSlashes.ReplaceAllString("/"+base+"/"+path, "/")
	if len(full) > 1 {
		full = strings.TrimSuffix(full, "/")
	}
	return full
}

// decoratorPath returns the first string argument or the "path" field of an
// object argument.
func decoratorPath(d project.Decorator) string {
	if len(d.Args) > 0 {
		return d.Args[0]
	}
	return d.Fields["path"]
}

// Routes emits a Route node and HANDLES_ROUTE for every verb-decorated
// method of a controller class.
func (e *Extractor) Routes() graph.Part {
	var part graph.Part
	for _, f := range e.Project.Files {
		for _, c := range f.Classes {
			base, ok := controllerBase(c)
			if !ok {
				continue
			}
			for _, m := range c.Methods {
				methodID := e.methodID(c, m)
				for _, dec := range m.Decorators {
					verb, ok := HTTPVerbs[dec.Name]
					if !ok {
						continue
					}
					full := RoutePath(base, decoratorPath(dec))
					routeID := e.IDs.Route(f.RelPath, verb, full)
					part.AddNode(graph.Node{
						ID:       routeID,
						Kind:     graph.KindRoute,
						Name:     verb + " " + full,
						FilePath: f.RelPath,
						ParentID: methodID,
						Meta: map[string]any{
							"httpMethod": verb,
							"path":       full,
							"controller": c.Name,
						},
					})
					part.Link(methodID, routeID, graph.RelHandlesRoute)
				}
			}
		}
	}
	return part
}

func controllerBase(c *project.Class) (string, bool) {
	for _, d := range c.Decorators {
		if d.Name == ControllerDecorator {
			return decoratorPath(d), true
		}
	}
	return "", false
}
