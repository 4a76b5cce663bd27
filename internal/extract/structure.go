package extract

import (
	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/project"
)

// Structure emits a node for every declared entity and the containment
// relations between them.
func (e *Extractor) Structure() graph.Part {
	var part graph.Part
	for _, f := range e.Project.Files {
		e.structureFile(&part, f)
	}
	return part
}

func (e *Extractor) structureFile(part *graph.Part, f *project.File) {
	fileID := e.fileID(f)
	meta := map[string]any{
		"contentHash": f.ContentHash,
		"language":    string(f.Language),
	}
	if f.Subtype != "" {
		meta["subtype"] = f.Subtype
	}
	part.AddNode(graph.Node{
		ID:       fileID,
		Kind:     graph.KindFile,
		Name:     f.Name,
		FilePath: f.RelPath,
		Subtype:  f.Subtype,
		Meta:     meta,
	})

	for _, c := range f.Classes {
		e.structureClass(part, f, fileID, c)
	}

	for _, fn := range f.Functions {
		id := e.IDs.Function(f.RelPath, fn.Name)
		part.AddNode(graph.Node{
			ID:       id,
			Kind:     graph.KindFunction,
			Name:     fn.Name,
			FilePath: f.RelPath,
			ParentID: fileID,
			Meta: map[string]any{
				"isAsync":    fn.Async,
				"isExported": fn.Exported,
				"returnType": valueOr(fn.ReturnType, "void"),
				"parameters": paramSignature(fn.Params),
				"sourceCode": fn.Source,
			},
		})
		part.Link(fileID, id, graph.RelDeclares)
	}

	for _, it := range f.Interfaces {
		id := e.IDs.Interface(f.RelPath, it.Name)
		props := make([]map[string]any, 0, len(it.Properties))
		for _, p := range it.Properties {
			props = append(props, map[string]any{"name": p.Name, "type": p.Type})
		}
		part.AddNode(graph.Node{
			ID:       id,
			Kind:     graph.KindInterface,
			Name:     it.Name,
			FilePath: f.RelPath,
			ParentID: fileID,
			Meta:     map[string]any{"isExported": it.Exported, "properties": props},
		})
		part.Link(fileID, id, graph.RelDeclares)
		for _, ext := range it.Extends {
			if d, ok := e.Project.ResolveName(f, ext); ok && d.Kind == graph.KindInterface {
				part.Link(id, e.declID(d), graph.RelExtends)
			}
		}
	}

	for _, en := range f.Enums {
		id := e.IDs.Enum(f.RelPath, en.Name)
		part.AddNode(graph.Node{
			ID:       id,
			Kind:     graph.KindEnum,
			Name:     en.Name,
			FilePath: f.RelPath,
			ParentID: fileID,
			Meta:     map[string]any{"isExported": en.Exported},
		})
		part.Link(fileID, id, graph.RelDeclares)
		for _, m := range en.Members {
			mid := e.IDs.EnumMember(f.RelPath, en.Name, m.Name)
			mmeta := map[string]any{"sourceCode": m.Source}
			if m.Value != nil {
				mmeta["value"] = m.Value
			}
			part.AddNode(graph.Node{
				ID:       mid,
				Kind:     graph.KindEnumMember,
				Name:     m.Name,
				FilePath: f.RelPath,
				ParentID: id,
				Meta:     mmeta,
			})
			part.Link(id, mid, graph.RelHasMember)
		}
	}

	for _, ta := range f.TypeAliases {
		id := e.IDs.TypeAlias(f.RelPath, ta.Name)
		part.AddNode(graph.Node{
			ID:       id,
			Kind:     graph.KindTypeAlias,
			Name:     ta.Name,
			FilePath: f.RelPath,
			ParentID: fileID,
			Meta: map[string]any{
				"isExported": ta.Exported,
				"definition": ta.Definition,
				"sourceCode": ta.Source,
			},
		})
		part.Link(fileID, id, graph.RelDeclares)
	}

	for _, v := range f.Variables {
		id := e.IDs.Variable(f.RelPath, v.Name)
		vmeta := map[string]any{
			"isExported":      v.Exported,
			"declarationType": v.DeclarationType,
			"sourceCode":      v.Source,
		}
		if v.Type.Text != "" {
			vmeta["type"] = v.Type.Text
		}
		part.AddNode(graph.Node{
			ID:       id,
			Kind:     graph.KindVariable,
			Name:     v.Name,
			FilePath: f.RelPath,
			ParentID: fileID,
			Meta:     vmeta,
		})
		part.Link(fileID, id, graph.RelDeclares)
	}
}

func (e *Extractor) structureClass(part *graph.Part, f *project.File, fileID string, c *project.Class) {
	classID := e.classID(c)
	part.AddNode(graph.Node{
		ID:       classID,
		Kind:     graph.KindClass,
		Name:     c.Name,
		FilePath: f.RelPath,
		ParentID: fileID,
		Meta: map[string]any{
			"isExported": c.Exported,
			"isAbstract": c.Abstract,
			"decorators": project.Names(c.Decorators),
		},
	})
	part.Link(fileID, classID, graph.RelDeclares)

	for _, m := range c.Methods {
		methodID := e.methodID(c, m)
		part.AddNode(graph.Node{
			ID:       methodID,
			Kind:     graph.KindMethod,
			Name:     m.Name,
			FilePath: f.RelPath,
			ParentID: classID,
			Meta: map[string]any{
				"isAsync":    m.Async,
				"isStatic":   m.Static,
				"isAbstract": m.Abstract,
				"visibility": m.Visibility,
				"returnType": valueOr(m.ReturnType, "void"),
				"parameters": paramSignature(m.Params),
				"decorators": project.Names(m.Decorators),
				"sourceCode": m.Source,
			},
		})
		part.Link(classID, methodID, graph.RelHasMethod)

		for _, prm := range m.Params {
			paramID := e.IDs.Parameter(f.RelPath, methodID, prm.Name)
			part.AddNode(graph.Node{
				ID:       paramID,
				Kind:     graph.KindParameter,
				Name:     prm.Name,
				FilePath: f.RelPath,
				ParentID: methodID,
				Meta: map[string]any{
					"type":       valueOr(prm.Type.Text, "any"),
					"isOptional": prm.Optional,
					"sourceCode": prm.Source,
				},
			})
			part.Link(methodID, paramID, graph.RelHasParameter)
			e.linkUsesType(part, f, paramID, prm.Type)
		}
	}

	for _, prop := range c.Properties {
		propID := e.IDs.Property(f.RelPath, c.Name, prop.Name)
		part.AddNode(graph.Node{
			ID:       propID,
			Kind:     graph.KindProperty,
			Name:     prop.Name,
			FilePath: f.RelPath,
			ParentID: classID,
			Meta: map[string]any{
				"type":       valueOr(prop.Type.Text, "any"),
				"isStatic":   prop.Static,
				"isReadonly": prop.Readonly,
				"visibility": prop.Visibility,
				"decorators": project.Names(prop.Decorators),
				"sourceCode": prop.Source,
			},
		})
		part.Link(classID, propID, graph.RelHasProperty)
		e.linkUsesType(part, f, propID, prop.Type)
	}
}

// linkUsesType links from to the project declaration named by the head of t.
func (e *Extractor) linkUsesType(part *graph.Part, f *project.File, from string, t project.TypeRef) {
	if t.Head() == "" {
		return
	}
	if d, ok := e.Project.ResolveName(f, t.Head()); ok && isTypeDecl(d) {
		part.Link(from, e.declID(d), graph.RelUsesType)
	}
}

func paramSignature(params []project.Param) []map[string]any {
	out := make([]map[string]any, 0, len(params))
	for _, p := range params {
		out = append(out, map[string]any{"name": p.Name, "type": valueOr(p.Type.Text, "any")})
	}
	return out
}
