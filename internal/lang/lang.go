package lang

// Language identifies a supported source dialect.
type Language string

const (
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
)

// AllLanguages returns every dialect the generator parses.
func AllLanguages() []Language {
	return []Language{TypeScript, TSX}
}

// LanguageSpec defines the tree-sitter node kinds the scanner queries
// for a dialect.
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	// ClassNodeTypes lists class declaration kinds, abstract included.
	ClassNodeTypes []string
	// EnumNodeTypes lists enum declaration kinds.
	EnumNodeTypes []string
	// AliasNodeTypes lists type alias declaration kinds.
	AliasNodeTypes []string
	// MethodNodeTypes lists class member kinds that declare methods.
	MethodNodeTypes []string
	// FieldNodeTypes lists class member kinds that declare fields.
	FieldNodeTypes []string
	// CallNodeTypes lists invocation expression kinds.
	CallNodeTypes []string
}

// IsMethodNode reports whether kind declares a class method.
func (s *LanguageSpec) IsMethodNode(kind string) bool {
	return containsKind(s.MethodNodeTypes, kind)
}

// IsFieldNode reports whether kind declares a class field.
func (s *LanguageSpec) IsFieldNode(kind string) bool {
	return containsKind(s.FieldNodeTypes, kind)
}

// IsCallNode reports whether kind is an invocation expression.
func (s *LanguageSpec) IsCallNode(kind string) bool {
	return containsKind(s.CallNodeTypes, kind)
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
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
