package lang

func init() {
	Register(&LanguageSpec{
		Language:        CPP,
		FileExtensions:  []string{".cpp", ".cc", ".cxx", ".hpp", ".hxx", ".hh", ".ixx", ".cppm", ".ccm"},
		ModuleNodeTypes: []string{"translation_unit", "namespace_definition"},
		FunctionNodeTypes: []string{
			"function_definition",
			"lambda_expression",
		},
		StructNodeTypes:       []string{"struct_specifier"},
		ClassNodeTypes:        []string{"class_specifier"},
		UnionNodeTypes:        []string{"union_specifier"},
		EnumNodeTypes:         []string{"enum_specifier"},
		TypedefNodeTypes:      []string{"alias_declaration", "type_definition"},
		MacroNodeTypes:        []string{"preproc_def", "preproc_function_def"},
		FieldNodeTypes:        []string{"field_declaration"},
		VariableNodeTypes:     []string{"declaration"},
		CallNodeTypes:         []string{"call_expression", "new_expression"},
		ImportNodeTypes:       []string{"using_declaration"},
		IncludeNodeTypes:      []string{"preproc_include"},
		InheritanceFieldNames: []string{"base_class_clause"},
	})
}
