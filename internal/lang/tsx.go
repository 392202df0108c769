package lang

func init() {
	Register(&LanguageSpec{
		Language:        TSX,
		FileExtensions:  []string{".tsx"},
		ModuleNodeTypes: []string{"program"},
		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"function_expression",
			"arrow_function",
			"function_signature",
		},
		MethodNodeTypes:    []string{"method_definition", "method_signature"},
		ClassNodeTypes:     []string{"class_declaration", "abstract_class_declaration", "class"},
		InterfaceNodeTypes: []string{"interface_declaration"},
		EnumNodeTypes:      []string{"enum_declaration"},
		TypedefNodeTypes:   []string{"type_alias_declaration"},
		FieldNodeTypes:     []string{"public_field_definition", "property_signature"},
		VariableNodeTypes:  []string{"lexical_declaration", "variable_declaration"},
		CallNodeTypes:      []string{"call_expression"},
		ImportNodeTypes:    []string{"import_statement"},
		// A class's heritage clause is a plain child (class_heritage) while
		// an interface's extends list is its own clause kind; list both so
		// either shape yields INHERITANCE edges.
		InheritanceFieldNames: []string{"class_heritage", "extends_type_clause"},
	})
}
