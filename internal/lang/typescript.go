package lang

func init() {
	Register(&LanguageSpec{
		Language:       TypeScript,
		FileExtensions: []string{".ts", ".mts", ".cts"},
		ClassNodeTypes: []string{
			"class_declaration",
			"abstract_class_declaration",
		},
		EnumNodeTypes: []string{
			"enum_declaration",
		},
		AliasNodeTypes: []string{
			"type_alias_declaration",
		},
		MethodNodeTypes: []string{
			"method_definition",
		},
		FieldNodeTypes: []string{
			"public_field_definition",
		},
		CallNodeTypes: []string{
			"call_expression",
		},
	})
}
