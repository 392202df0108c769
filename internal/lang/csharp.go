package lang

func init() {
	Register(&LanguageSpec{
		Language:        CSharp,
		FileExtensions:  []string{".cs"},
		ModuleNodeTypes: []string{"compilation_unit", "namespace_declaration", "file_scoped_namespace_declaration"},
		FunctionNodeTypes: []string{
			"local_function_statement",
			"anonymous_method_expression",
			"lambda_expression",
		},
		MethodNodeTypes:       []string{"method_declaration", "constructor_declaration", "destructor_declaration"},
		ClassNodeTypes:        []string{"class_declaration", "struct_declaration", "record_declaration"},
		InterfaceNodeTypes:    []string{"interface_declaration"},
		EnumNodeTypes:         []string{"enum_declaration"},
		FieldNodeTypes:        []string{"field_declaration", "property_declaration"},
		VariableNodeTypes:     []string{"local_declaration_statement"},
		CallNodeTypes:         []string{"invocation_expression", "object_creation_expression"},
		ImportNodeTypes:       []string{"using_directive"},
		InheritanceFieldNames: []string{"bases", "base_list"},
	})
}
