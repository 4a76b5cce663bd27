package project

import (
	"math"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codebase-graph/internal/graph"
	"github.com/DeusData/codebase-graph/internal/lang"
	"github.com/DeusData/codebase-graph/internal/parser"
)

type kindSets struct {
	class, function, iface, enum, alias, variable map[string]bool
	imports, exports, decorator                   map[string]bool
	call, newExpr, member, typeRef, ident         map[string]bool
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}

func newKindSets(spec *lang.LanguageSpec) kindSets {
	return kindSets{
		class:     toSet(spec.ClassNodeTypes),
		function:  toSet(spec.FunctionNodeTypes),
		iface:     toSet(spec.InterfaceNodeTypes),
		enum:      toSet(spec.EnumNodeTypes),
		alias:     toSet(spec.TypeAliasNodeTypes),
		variable:  toSet(spec.VariableNodeTypes),
		imports:   toSet(spec.ImportNodeTypes),
		exports:   toSet(spec.ExportNodeTypes),
		decorator: toSet(spec.DecoratorNodeTypes),
		call:      toSet(spec.CallNodeTypes),
		newExpr:   toSet(spec.NewNodeTypes),
		member:    toSet(spec.MemberNodeTypes),
		typeRef:   toSet(spec.TypeRefNodeTypes),
		ident:     toSet(spec.IdentifierNodeTypes),
	}
}

// summarizer turns one syntax tree into the plain declarations of a File.
type summarizer struct {
	src  []byte
	file *File
	k    kindSets
}

func summarize(f *File, root *tree_sitter.Node, src []byte, spec *lang.LanguageSpec) {
	f.Refs = map[string]int{}
	f.decls = map[string]Decl{}
	f.exports = map[string]string{}
	s := &summarizer{src: src, file: f, k: newKindSets(spec)}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		if c := root.NamedChild(i); c != nil {
			s.topLevel(c, nil, false, false)
		}
	}
	s.countRefs(root)
}

func (s *summarizer) text(n *tree_sitter.Node) string {
	return parser.NodeText(n, s.src)
}

func (s *summarizer) declare(kind graph.Kind, name string) {
	if _, ok := s.file.decls[name]; !ok {
		s.file.decls[name] = Decl{Kind: kind, Name: name, File: s.file.RelPath}
	}
}

func (s *summarizer) markDefault(name string) {
	if name != "" {
		s.file.exports["default"] = name
	}
}

func (s *summarizer) topLevel(n *tree_sitter.Node, decs []Decorator, exported, isDefault bool) {
	kind := n.Kind()
	switch {
	case s.k.exports[kind]:
		s.export(n)
	case kind == "ambient_declaration":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if c := n.NamedChild(i); c != nil {
				s.topLevel(c, nil, exported, false)
			}
		}
	case s.k.class[kind]:
		if c := s.class(n, decs, exported); c != nil && isDefault {
			s.markDefault(c.Name)
		}
	case s.k.function[kind]:
		if fn := s.function(n, exported); fn != nil && isDefault {
			s.markDefault(fn.Name)
		}
	case s.k.iface[kind]:
		if it := s.iface(n, exported); it != nil && isDefault {
			s.markDefault(it.Name)
		}
	case s.k.enum[kind]:
		s.enum(n, exported)
	case s.k.alias[kind]:
		s.alias(n, exported)
	case s.k.variable[kind]:
		s.variables(n, exported)
	case s.k.imports[kind]:
		s.importStmt(n)
	}
}

func (s *summarizer) export(n *tree_sitter.Node) {
	decs := s.decorators(n)
	isDefault := parser.HasChildKind(n, "default")
	if decl := n.ChildByFieldName("declaration"); decl != nil {
		s.topLevel(decl, decs, true, isDefault)
		return
	}
	if source := n.ChildByFieldName("source"); source != nil {
		s.reExport(n, source)
		return
	}
	if clause := parser.ChildOfKind(n, "export_clause"); clause != nil {
		for _, spec := range s.specifiers(clause, "export_specifier") {
			s.file.exports[spec.Local] = spec.Name
		}
		return
	}
	if isDefault {
		if v := n.ChildByFieldName("value"); v != nil && v.Kind() == "identifier" {
			s.markDefault(s.text(v))
		}
	}
}

func (s *summarizer) specifiers(clause *tree_sitter.Node, kind string) []ImportName {
	var out []ImportName
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		c := clause.NamedChild(i)
		if c == nil || c.Kind() != kind {
			continue
		}
		name := parser.Unquote(parser.FieldText(c, "name", s.src))
		if name == "" {
			// import { default as X } keeps "default" as an anonymous token
			if parser.HasChildKind(c, "default") {
				name = "default"
			} else {
				continue
			}
		}
		local := parser.Unquote(parser.FieldText(c, "alias", s.src))
		if local == "" {
			local = name
		}
		out = append(out, ImportName{Name: name, Local: local, TypeOnly: parser.HasChildKind(c, "type")})
	}
	return out
}

func (s *summarizer) reExport(n, source *tree_sitter.Node) {
	spec, _ := parser.StringValue(source, s.src)
	re := &ReExport{Specifier: spec}
	if ns := parser.ChildOfKind(n, "namespace_export"); ns != nil {
		if c := ns.NamedChild(0); c != nil {
			re.Namespace = parser.Unquote(s.text(c))
		}
	} else if clause := parser.ChildOfKind(n, "export_clause"); clause != nil {
		re.Names = s.specifiers(clause, "export_specifier")
	} else if parser.HasChildKind(n, "*") {
		re.Star = true
	}
	s.file.ReExports = append(s.file.ReExports, re)
}

func (s *summarizer) importStmt(n *tree_sitter.Node) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return
	}
	spec, ok := parser.StringValue(source, s.src)
	if !ok {
		return
	}
	imp := &Import{Specifier: spec, TypeOnly: parser.HasChildKind(n, "type")}
	if clause := parser.ChildOfKind(n, "import_clause"); clause != nil {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			c := clause.NamedChild(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "identifier":
				imp.Default = s.text(c)
			case "namespace_import":
				if id := parser.ChildOfKind(c, "identifier"); id != nil {
					imp.Namespace = s.text(id)
				}
			case "named_imports":
				imp.Named = s.specifiers(c, "import_specifier")
			}
		}
	}
	s.file.Imports = append(s.file.Imports, imp)
}

func (s *summarizer) decorators(n *tree_sitter.Node) []Decorator {
	var out []Decorator
	for _, c := range parser.Children(n) {
		if !s.k.decorator[c.Kind()] {
			continue
		}
		if d, ok := s.decorator(c); ok {
			out = append(out, d)
		}
	}
	return out
}

func (s *summarizer) decorator(n *tree_sitter.Node) (Decorator, bool) {
	pd, ok := parser.ParseDecorator(n, s.src)
	if !ok {
		return Decorator{}, false
	}
	d := Decorator{Name: pd.Name}
	for _, a := range pd.Args {
		if v, ok := parser.StringValue(a, s.src); ok {
			d.Args = append(d.Args, v)
			continue
		}
		if a.Kind() != "object" {
			continue
		}
		for i := uint(0); i < a.NamedChildCount(); i++ {
			pair := a.NamedChild(i)
			if pair == nil || pair.Kind() != "pair" {
				continue
			}
			key := parser.Unquote(parser.FieldText(pair, "key", s.src))
			if v, ok := parser.StringValue(pair.ChildByFieldName("value"), s.src); ok {
				if d.Fields == nil {
					d.Fields = map[string]string{}
				}
				d.Fields[key] = v
			}
		}
	}
	return d, true
}

// typeRef summarizes a type_annotation (or a bare type) node.
func (s *summarizer) typeRef(n *tree_sitter.Node) TypeRef {
	if n == nil {
		return TypeRef{}
	}
	if n.Kind() == "type_annotation" {
		inner := n.NamedChild(0)
		if inner == nil {
			return TypeRef{}
		}
		n = inner
	}
	ref := TypeRef{Text: s.text(n)}
	seen := map[string]bool{}
	parser.Walk(n, func(c *tree_sitter.Node) bool {
		kind := c.Kind()
		if kind != "nested_type_identifier" && !s.k.typeRef[kind] {
			return true
		}
		name := s.text(c)
		if !seen[name] {
			seen[name] = true
			ref.Names = append(ref.Names, name)
		}
		return false
	})
	return ref
}

// headName returns the named type of a heritage entry (Base for Base<T>).
func (s *summarizer) headName(n *tree_sitter.Node) string {
	if n.Kind() == "generic_type" {
		return parser.FieldText(n, "name", s.src)
	}
	return s.text(n)
}

func (s *summarizer) class(n *tree_sitter.Node, decs []Decorator, exported bool) *Class {
	name := parser.FieldText(n, "name", s.src)
	if name == "" {
		return nil
	}
	c := &Class{
		Name:       name,
		File:       s.file.RelPath,
		Exported:   exported,
		Abstract:   n.Kind() == "abstract_class_declaration",
		Decorators: append(decs, s.decorators(n)...),
	}
	if h := parser.ChildOfKind(n, "class_heritage"); h != nil {
		for _, cl := range parser.Children(h) {
			switch cl.Kind() {
			case "extends_clause":
				if v := cl.ChildByFieldName("value"); v != nil {
					c.Extends = s.text(v)
				}
			case "implements_clause":
				for i := uint(0); i < cl.NamedChildCount(); i++ {
					if t := cl.NamedChild(i); t != nil {
						c.Implements = append(c.Implements, s.headName(t))
					}
				}
			}
		}
	}

	var pending []Decorator
	for _, m := range parser.Children(n.ChildByFieldName("body")) {
		switch m.Kind() {
		case "decorator":
			if d, ok := s.decorator(m); ok {
				pending = append(pending, d)
			}
			continue
		case "method_definition", "abstract_method_signature":
			s.method(c, m, pending)
		case "public_field_definition":
			s.property(c, m, pending)
		}
		pending = nil
	}

	s.file.Classes = append(s.file.Classes, c)
	s.declare(graph.KindClass, name)
	return c
}

func (s *summarizer) visibility(n, name *tree_sitter.Node) string {
	if acc := parser.ChildOfKind(n, "accessibility_modifier"); acc != nil {
		return s.text(acc)
	}
	if name != nil && name.Kind() == "private_property_identifier" {
		return "private"
	}
	return "public"
}

func (s *summarizer) method(c *Class, n *tree_sitter.Node, decs []Decorator) {
	nameNode := n.ChildByFieldName("name")
	name := s.text(nameNode)
	if name == "" || parser.HasChildKind(n, "get") || parser.HasChildKind(n, "set") {
		return
	}
	abstract := n.Kind() == "abstract_method_signature"
	hasBody := n.ChildByFieldName("body") != nil
	if name == "constructor" {
		if c.Constructor == nil && hasBody {
			cb := s.callable(n, name)
			c.Constructor = &cb
		}
		return
	}
	if !abstract && !hasBody {
		return
	}
	c.Methods = append(c.Methods, &Method{
		Callable:   s.callable(n, name),
		Static:     parser.HasChildKind(n, "static"),
		Abstract:   abstract,
		Visibility: s.visibility(n, nameNode),
		Decorators: decs,
	})
}

func (s *summarizer) property(c *Class, n *tree_sitter.Node, decs []Decorator) {
	nameNode := n.ChildByFieldName("name")
	name := s.text(nameNode)
	if name == "" {
		return
	}
	c.Properties = append(c.Properties, &Property{
		Name:       name,
		Type:       s.typeRef(n.ChildByFieldName("type")),
		Static:     parser.HasChildKind(n, "static"),
		Readonly:   parser.HasChildKind(n, "readonly"),
		Visibility: s.visibility(n, nameNode),
		Decorators: append(decs, s.decorators(n)...),
		Source:     s.text(n),
	})
}

func (s *summarizer) callable(n *tree_sitter.Node, name string) Callable {
	cb := Callable{
		Name:   name,
		Async:  parser.HasChildKind(n, "async"),
		Source: s.text(n),
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		cb.Params = s.params(params)
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		cb.ReturnType = strings.TrimSpace(strings.TrimPrefix(s.text(rt), ":"))
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cb.Body = s.body(body)
	}
	// Signature types count as references of the callable too.
	var sig []string
	for _, field := range []string{"parameters", "return_type"} {
		parser.Walk(n.ChildByFieldName(field), func(c *tree_sitter.Node) bool {
			if c.Kind() == "nested_type_identifier" || s.k.typeRef[c.Kind()] {
				sig = append(sig, s.text(c))
				return false
			}
			return true
		})
	}
	cb.Body.TypeRefs = append(sig, cb.Body.TypeRefs...)
	return cb
}

func (s *summarizer) params(list *tree_sitter.Node) []Param {
	var out []Param
	for i := uint(0); i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		if p == nil || (p.Kind() != "required_parameter" && p.Kind() != "optional_parameter") {
			continue
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil || pattern.Kind() == "this" {
			continue
		}
		name := s.text(pattern)
		if pattern.Kind() == "rest_pattern" {
			if id := pattern.NamedChild(0); id != nil {
				name = s.text(id)
			}
		}
		prm := Param{
			Name:       name,
			Type:       s.typeRef(p.ChildByFieldName("type")),
			Optional:   p.Kind() == "optional_parameter",
			Readonly:   parser.HasChildKind(p, "readonly"),
			Decorators: s.decorators(p),
			Source:     s.text(p),
		}
		if acc := parser.ChildOfKind(p, "accessibility_modifier"); acc != nil {
			prm.Accessibility = s.text(acc)
		}
		out = append(out, prm)
	}
	return out
}

func (s *summarizer) function(n *tree_sitter.Node, exported bool) *Function {
	name := parser.FieldText(n, "name", s.src)
	if name == "" {
		return nil
	}
	fn := &Function{Callable: s.callable(n, name), File: s.file.RelPath, Exported: exported}
	s.file.Functions = append(s.file.Functions, fn)
	s.declare(graph.KindFunction, name)
	return fn
}

func (s *summarizer) iface(n *tree_sitter.Node, exported bool) *Interface {
	name := parser.FieldText(n, "name", s.src)
	if name == "" {
		return nil
	}
	it := &Interface{Name: name, File: s.file.RelPath, Exported: exported}
	if ext := parser.ChildOfKind(n, "extends_type_clause"); ext != nil {
		for i := uint(0); i < ext.NamedChildCount(); i++ {
			if t := ext.NamedChild(i); t != nil {
				it.Extends = append(it.Extends, s.headName(t))
			}
		}
	}
	body := n.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
		m := body.NamedChild(i)
		if m == nil || m.Kind() != "property_signature" {
			continue
		}
		typ := s.typeRef(m.ChildByFieldName("type")).Text
		if typ == "" {
			typ = "any"
		}
		it.Properties = append(it.Properties, Field{Name: parser.FieldText(m, "name", s.src), Type: typ})
	}
	s.file.Interfaces = append(s.file.Interfaces, it)
	s.declare(graph.KindInterface, name)
	return it
}

func (s *summarizer) enum(n *tree_sitter.Node, exported bool) {
	name := parser.FieldText(n, "name", s.src)
	if name == "" {
		return
	}
	e := &Enum{Name: name, File: s.file.RelPath, Exported: exported}
	body := n.ChildByFieldName("body")
	next, haveNext := 0.0, true
	for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
		m := body.NamedChild(i)
		if m == nil || m.Kind() == "comment" {
			continue
		}
		member := EnumMember{Source: s.text(m)}
		if m.Kind() == "enum_assignment" {
			member.Name = parser.Unquote(parser.FieldText(m, "name", s.src))
			v := m.ChildByFieldName("value")
			if str, ok := parser.StringValue(v, s.src); ok {
				member.Value = str
				haveNext = false
			} else if f, ok := parseNumber(s.text(v)); ok {
				member.Value = numberValue(f)
				next, haveNext = f+1, true
			} else {
				haveNext = false
			}
		} else {
			member.Name = parser.Unquote(s.text(m))
			if haveNext {
				member.Value = numberValue(next)
				next++
			}
		}
		e.Members = append(e.Members, member)
	}
	s.file.Enums = append(s.file.Enums, e)
	s.declare(graph.KindEnum, name)
}

func parseNumber(text string) (float64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(text, 64)
	return f, err == nil
}

func numberValue(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

func (s *summarizer) alias(n *tree_sitter.Node, exported bool) {
	name := parser.FieldText(n, "name", s.src)
	if name == "" {
		return
	}
	s.file.TypeAliases = append(s.file.TypeAliases, &TypeAlias{
		Name:       name,
		File:       s.file.RelPath,
		Exported:   exported,
		Definition: parser.FieldText(n, "value", s.src),
		Source:     s.text(n),
	})
	s.declare(graph.KindTypeAlias, name)
}

func (s *summarizer) variables(n *tree_sitter.Node, exported bool) {
	declType := "var"
	if first := n.Child(0); first != nil && (first.Kind() == "const" || first.Kind() == "let") {
		declType = first.Kind()
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		d := n.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		name := s.text(nameNode)
		s.file.Variables = append(s.file.Variables, &Variable{
			Name:            name,
			File:            s.file.RelPath,
			Exported:        exported,
			Type:            s.declaredType(d),
			DeclarationType: declType,
			Source:          s.text(d),
		})
		s.declare(graph.KindVariable, name)
	}
}

// declaredType returns the annotation of a variable declarator, falling
// back to the constructor of a `new X()` initializer.
func (s *summarizer) declaredType(d *tree_sitter.Node) TypeRef {
	if t := d.ChildByFieldName("type"); t != nil {
		return s.typeRef(t)
	}
	v := d.ChildByFieldName("value")
	if v == nil || !s.k.newExpr[v.Kind()] {
		return TypeRef{}
	}
	ctor := v.ChildByFieldName("constructor")
	if ctor == nil || (ctor.Kind() != "identifier" && ctor.Kind() != "member_expression") {
		return TypeRef{}
	}
	name := s.text(ctor)
	return TypeRef{Text: name, Names: []string{name}}
}

func (s *summarizer) body(n *tree_sitter.Node) Body {
	b := Body{Locals: map[string]TypeRef{}, Bound: map[string]bool{}}
	parser.Walk(n, func(c *tree_sitter.Node) bool {
		kind := c.Kind()
		switch {
		case s.k.call[kind]:
			s.call(c, &b)
		case s.k.newExpr[kind]:
			if ctor := c.ChildByFieldName("constructor"); ctor != nil &&
				(ctor.Kind() == "identifier" || ctor.Kind() == "member_expression") {
				b.News = append(b.News, s.text(ctor))
			}
		case s.k.member[kind]:
			s.access(c, &b)
		case kind == "nested_type_identifier":
			b.TypeRefs = append(b.TypeRefs, s.text(c))
			return false
		case s.k.typeRef[kind]:
			b.TypeRefs = append(b.TypeRefs, s.text(c))
		case kind == "identifier":
			b.Identifiers = append(b.Identifiers, s.text(c))
		case kind == "variable_declarator":
			s.local(c, &b)
		case kind == "required_parameter" || kind == "optional_parameter":
			if p := c.ChildByFieldName("pattern"); p != nil && p.Kind() == "identifier" {
				b.Bound[s.text(p)] = true
			}
		}
		return true
	})
	return b
}

func (s *summarizer) call(c *tree_sitter.Node, b *Body) {
	fn := c.ChildByFieldName("function")
	if fn == nil {
		return
	}
	switch {
	case fn.Kind() == "identifier":
		b.Calls = append(b.Calls, Call{Shape: CallBare, Method: s.text(fn)})
	case s.k.member[fn.Kind()]:
		obj := fn.ChildByFieldName("object")
		method := parser.FieldText(fn, "property", s.src)
		if obj == nil || method == "" {
			return
		}
		switch {
		case obj.Kind() == "this":
			b.Calls = append(b.Calls, Call{Shape: CallThis, Method: method})
		case obj.Kind() == "identifier":
			b.Calls = append(b.Calls, Call{Shape: CallMember, Receiver: s.text(obj), Method: method})
		case s.k.member[obj.Kind()]:
			if inner := obj.ChildByFieldName("object"); inner != nil && inner.Kind() == "this" {
				b.Calls = append(b.Calls, Call{
					Shape:    CallThisMember,
					Receiver: parser.FieldText(obj, "property", s.src),
					Method:   method,
				})
			}
		}
	}
}

func (s *summarizer) access(m *tree_sitter.Node, b *Body) {
	obj := m.ChildByFieldName("object")
	prop := parser.FieldText(m, "property", s.src)
	if obj == nil || prop == "" {
		return
	}
	switch {
	case obj.Kind() == "this":
		b.Accesses = append(b.Accesses, Access{This: true, Object: prop})
	case obj.Kind() == "identifier":
		b.Accesses = append(b.Accesses, Access{Object: s.text(obj), Property: prop})
	case s.k.member[obj.Kind()]:
		if inner := obj.ChildByFieldName("object"); inner != nil && inner.Kind() == "this" {
			b.Accesses = append(b.Accesses, Access{
				This:     true,
				Object:   parser.FieldText(obj, "property", s.src),
				Property: prop,
			})
		}
	}
}

func (s *summarizer) local(d *tree_sitter.Node, b *Body) {
	nameNode := d.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	if nameNode.Kind() != "identifier" {
		parser.Walk(nameNode, func(c *tree_sitter.Node) bool {
			switch c.Kind() {
			case "identifier", "shorthand_property_identifier_pattern":
				b.Bound[s.text(c)] = true
			}
			return true
		})
		return
	}
	name := s.text(nameNode)
	b.Bound[name] = true
	if t := s.declaredType(d); t.Head() != "" {
		b.Locals[name] = t
	}
}

func (s *summarizer) countRefs(root *tree_sitter.Node) {
	parser.Walk(root, func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		if s.k.imports[kind] {
			return false
		}
		if s.k.ident[kind] {
			s.file.Refs[s.text(n)]++
		}
		return true
	})
}
