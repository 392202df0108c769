package lang

func init() {
	Register(&LanguageSpec{
		Language:              Python,
		FileExtensions:        []string{".py"},
		ModuleNodeTypes:       []string{"module"},
		FunctionNodeTypes:     []string{"function_definition"},
		ClassNodeTypes:        []string{"class_definition"},
		VariableNodeTypes:     []string{"assignment", "augmented_assignment"},
		CallNodeTypes:         []string{"call"},
		ImportNodeTypes:       []string{"import_statement", "import_from_statement"},
		InheritanceFieldNames: []string{"superclasses"},
	})
}
