// Package lang maps file extensions to the tree-sitter node-type
// vocabulary the extractor uses to classify declarations for a language.
package lang

// Language identifies one of the engine's supported grammars.
type Language string

const (
	Go         Language = "go"
	Python     Language = "python"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Java       Language = "java"
	Rust       Language = "rust"
	CPP        Language = "cpp"
	C          Language = "c"
	CSharp     Language = "c-sharp"
)

// AllLanguages returns every language the engine can extract.
func AllLanguages() []Language {
	return []Language{Go, Python, JavaScript, TypeScript, TSX, Java, Rust, CPP, C, CSharp}
}

// LanguageSpec lists the tree-sitter node kinds that map to each NodeKind
// and EdgeKind the extractor emits for one language. Node kinds that the
// grammar doesn't distinguish are simply left empty (e.g. Python has no
// dedicated struct/union kind).
type LanguageSpec struct {
	Language       Language
	FileExtensions []string

	// NameField is the tree-sitter field name holding a declaration's
	// identifier. Defaults to "name" when empty.
	NameField string

	ModuleNodeTypes []string // the file's top-level container kind(s)

	FunctionNodeTypes []string
	MethodNodeTypes   []string // when the grammar distinguishes methods from plain functions

	StructNodeTypes     []string
	ClassNodeTypes      []string
	InterfaceNodeTypes  []string
	EnumNodeTypes       []string
	UnionNodeTypes      []string
	TypedefNodeTypes    []string
	MacroNodeTypes      []string
	AnnotationNodeTypes []string

	FieldNodeTypes        []string
	EnumConstantNodeTypes []string
	VariableNodeTypes     []string // local/global variable & constant declarations

	CallNodeTypes    []string
	ImportNodeTypes  []string
	IncludeNodeTypes []string // C/C++ #include — emits INCLUDE rather than IMPORT

	// InheritanceFieldNames lists the field name(s) on a class/struct/
	// interface node that hold its superclass/interface list, used to
	// emit INHERITANCE edges.
	InheritanceFieldNames []string

	// ImplNodeTypes lists node kinds that add methods to an already-named
	// type rather than declaring a new one — Rust's `impl Type { .. }`
	// and `impl Trait for Type { .. }`. Such a node's methods are keyed
	// under the type named by its "type" field; InheritanceFieldNames
	// (here "trait") still drives the INHERITANCE edge the same way it
	// does for a struct/class/interface node.
	ImplNodeTypes []string
}

// registry maps file extensions to language specs.
var registry = map[string]*LanguageSpec{}

// Register adds a LanguageSpec to the global registry, keyed by extension.
func Register(spec *LanguageSpec) {
	for _, ext := range spec.FileExtensions {
		registry[ext] = spec
	}
}

// ForExtension returns the LanguageSpec for a file extension (e.g. ".go"),
// or nil if the extension is unrecognized.
func ForExtension(ext string) *LanguageSpec {
	return registry[ext]
}

// ForLanguage returns the LanguageSpec for a language tag, or nil.
func ForLanguage(l Language) *LanguageSpec {
	for _, spec := range registry {
		if spec.Language == l {
			return spec
		}
	}
	return nil
}

// LanguageForExtension returns the Language registered for ext, if any.
func LanguageForExtension(ext string) (Language, bool) {
	spec := registry[ext]
	if spec == nil {
		return "", false
	}
	return spec.Language, true
}

// SupportedExtensions returns every extension with a registered spec.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	return exts
}
