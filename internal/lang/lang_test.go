package lang

import "testing"

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		lang Language
	}{
		{".ts", TypeScript},
		{".mts", TypeScript},
		{".cts", TypeScript},
		{".tsx", TSX},
	}
	for _, tt := range tests {
		spec := ForExtension(tt.ext)
		if spec == nil {
			t.Errorf("ForExtension(%q) = nil, want %s", tt.ext, tt.lang)
			continue
		}
		if spec.Language != tt.lang {
			t.Errorf("ForExtension(%q).Language = %s, want %s", tt.ext, spec.Language, tt.lang)
		}
	}
}

func TestForLanguage(t *testing.T) {
	for _, lang := range AllLanguages() {
		spec := ForLanguage(lang)
		if spec == nil {
			t.Errorf("ForLanguage(%s) = nil", lang)
		}
	}
}

func TestUnknownExtension(t *testing.T) {
	if spec := ForExtension(".xyz"); spec != nil {
		t.Errorf("ForExtension(.xyz) should be nil, got %v", spec)
	}
}

func TestMemberKindTables(t *testing.T) {
	for _, l := range AllLanguages() {
		spec := ForLanguage(l)
		if spec == nil {
			t.Fatalf("%s spec not registered", l)
		}
		if !spec.IsMethodNode("method_definition") {
			t.Errorf("%s: method_definition not a method kind", l)
		}
		if !spec.IsFieldNode("public_field_definition") {
			t.Errorf("%s: public_field_definition not a field kind", l)
		}
		if !spec.IsCallNode("call_expression") {
			t.Errorf("%s: call_expression not a call kind", l)
		}
		if spec.IsMethodNode("public_field_definition") || spec.IsCallNode("method_definition") {
			t.Errorf("%s: kind tables overlap", l)
		}
	}
}

func TestTypeScriptSpec(t *testing.T) {
	spec := ForLanguage(TypeScript)
	if spec == nil {
		t.Fatal("TypeScript spec not registered")
	}
	found := map[string]bool{}
	for _, nt := range spec.ClassNodeTypes {
		found[nt] = true
	}
	if !found["class_declaration"] || !found["abstract_class_declaration"] {
		t.Errorf("TypeScript ClassNodeTypes missing expected kinds: %v", spec.ClassNodeTypes)
	}
	if len(spec.EnumNodeTypes) == 0 || spec.EnumNodeTypes[0] != "enum_declaration" {
		t.Errorf("TypeScript EnumNodeTypes: got %v, want [enum_declaration]", spec.EnumNodeTypes)
	}
}
