package lang

// Language represents a supported source language.
type Language string

const (
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
)

// AllLanguages returns all supported languages.
func AllLanguages() []Language {
	return []Language{TypeScript, TSX}
}

// LanguageSpec defines the tree-sitter node kinds the project loader
// dispatches on for a language.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	ClassNodeTypes     []string
	FunctionNodeTypes  []string
	InterfaceNodeTypes []string
	EnumNodeTypes      []string
	TypeAliasNodeTypes []string
	VariableNodeTypes  []string
	ImportNodeTypes    []string
	ExportNodeTypes    []string
	DecoratorNodeTypes []string

	// CallNodeTypes and NewNodeTypes are call sites inside callable bodies.
	CallNodeTypes []string
	NewNodeTypes  []string
	// MemberNodeTypes are property access expressions (a.b).
	MemberNodeTypes []string
	// TypeRefNodeTypes are references to named types in annotations.
	TypeRefNodeTypes []string
	// IdentifierNodeTypes are counted when deciding whether an import is used.
	IdentifierNodeTypes []string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".ts").
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language.
func ForLanguage(lang Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == lang {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language for a file extension.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}

// Extensions returns every registered file extension.
func Extensions() []string {
	out := make([]string, 0, len(registry))
	for ext := range registry {
		out = append(out, ext)
	}
	return out
}
