package lang

// typescriptSpec returns the node kinds shared by the TypeScript and TSX
// grammars; the two differ only in JSX support.
func typescriptSpec(l Language, exts ...string) *LanguageSpec {
	return &LanguageSpec{
		Language:       l,
		FileExtensions: exts,
		ClassNodeTypes: []string{
			"class_declaration",
			"abstract_class_declaration",
		},
		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
		},
		InterfaceNodeTypes: []string{"interface_declaration"},
		EnumNodeTypes:      []string{"enum_declaration"},
		TypeAliasNodeTypes: []string{"type_alias_declaration"},
		VariableNodeTypes:  []string{"lexical_declaration", "variable_declaration"},
		ImportNodeTypes:    []string{"import_statement"},
		ExportNodeTypes:    []string{"export_statement"},
		DecoratorNodeTypes: []string{"decorator"},

		CallNodeTypes:    []string{"call_expression"},
		NewNodeTypes:     []string{"new_expression"},
		MemberNodeTypes:  []string{"member_expression"},
		TypeRefNodeTypes: []string{"type_identifier"},
		IdentifierNodeTypes: []string{
			"identifier",
			"type_identifier",
			"shorthand_property_identifier",
		},
	}
}

func init() {
	Register(typescriptSpec(TypeScript, ".ts", ".mts", ".cts"))
}
