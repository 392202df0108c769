package lang

func init() {
	Register(&LanguageSpec{
		Language:        JavaScript,
		FileExtensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
		ModuleNodeTypes: []string{"program"},
		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"function_expression",
			"arrow_function",
		},
		MethodNodeTypes:       []string{"method_definition"},
		ClassNodeTypes:        []string{"class_declaration", "class"},
		FieldNodeTypes:        []string{"field_definition", "public_field_definition"},
		VariableNodeTypes:     []string{"lexical_declaration", "variable_declaration"},
		CallNodeTypes:         []string{"call_expression"},
		ImportNodeTypes:       []string{"import_statement"},
		InheritanceFieldNames: []string{"class_heritage"},
	})
}
