package lang

func init() {
	Register(&LanguageSpec{
		Language:              Java,
		FileExtensions:        []string{".java"},
		ModuleNodeTypes:       []string{"program"},
		MethodNodeTypes:       []string{"method_declaration", "constructor_declaration"},
		ClassNodeTypes:        []string{"class_declaration", "record_declaration"},
		InterfaceNodeTypes:    []string{"interface_declaration"},
		EnumNodeTypes:         []string{"enum_declaration"},
		EnumConstantNodeTypes: []string{"enum_constant"},
		AnnotationNodeTypes:   []string{"annotation_type_declaration", "marker_annotation", "annotation"},
		FieldNodeTypes:        []string{"field_declaration"},
		VariableNodeTypes:     []string{"local_variable_declaration"},
		CallNodeTypes:         []string{"method_invocation", "object_creation_expression"},
		ImportNodeTypes:       []string{"import_declaration"},
		InheritanceFieldNames: []string{"superclass", "interfaces"},
	})
}
