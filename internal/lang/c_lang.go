package lang

func init() {
	Register(&LanguageSpec{
		Language:          C,
		FileExtensions:    []string{".c", ".h"},
		ModuleNodeTypes:   []string{"translation_unit"},
		FunctionNodeTypes: []string{"function_definition"},
		StructNodeTypes:   []string{"struct_specifier"},
		UnionNodeTypes:    []string{"union_specifier"},
		EnumNodeTypes:     []string{"enum_specifier"},
		TypedefNodeTypes:  []string{"type_definition"},
		MacroNodeTypes:    []string{"preproc_def", "preproc_function_def"},
		FieldNodeTypes:    []string{"field_declaration"},
		VariableNodeTypes: []string{"declaration"},
		CallNodeTypes:     []string{"call_expression"},
		IncludeNodeTypes:  []string{"preproc_include"},
	})
}
