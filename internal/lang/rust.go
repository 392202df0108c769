package lang

func init() {
	Register(&LanguageSpec{
		Language:           Rust,
		FileExtensions:     []string{".rs"},
		ModuleNodeTypes:    []string{"source_file", "mod_item"},
		FunctionNodeTypes:  []string{"function_item", "function_signature_item"},
		StructNodeTypes:    []string{"struct_item"},
		InterfaceNodeTypes: []string{"trait_item"},
		EnumNodeTypes:      []string{"enum_item"},
		UnionNodeTypes:     []string{"union_item"},
		TypedefNodeTypes:   []string{"type_item"},
		MacroNodeTypes:     []string{"macro_definition"},
		FieldNodeTypes:     []string{"field_declaration"},
		VariableNodeTypes:  []string{"const_item", "static_item", "let_declaration"},
		CallNodeTypes:      []string{"call_expression", "macro_invocation"},
		ImportNodeTypes:    []string{"use_declaration", "extern_crate_declaration"},
		// impl_item covers both `impl Type { .. }` and
		// `impl Trait for Type { .. }`; its "trait" field (absent on the
		// inherent-impl form) names the trait being implemented.
		ImplNodeTypes:         []string{"impl_item"},
		InheritanceFieldNames: []string{"trait"},
	})
}
