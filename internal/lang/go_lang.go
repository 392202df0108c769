package lang

func init() {
	Register(&LanguageSpec{
		Language:           Go,
		FileExtensions:     []string{".go"},
		ModuleNodeTypes:    []string{"source_file"},
		FunctionNodeTypes:  []string{"function_declaration"},
		MethodNodeTypes:    []string{"method_declaration"},
		StructNodeTypes:    []string{"struct_type"},
		InterfaceNodeTypes: []string{"interface_type"},
		TypedefNodeTypes:   []string{"type_alias"},
		FieldNodeTypes:     []string{"field_declaration"},
		VariableNodeTypes:  []string{"var_declaration", "const_declaration"},
		CallNodeTypes:      []string{"call_expression"},
		ImportNodeTypes:    []string{"import_declaration"},
	})
}
