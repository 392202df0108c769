package lang

import "testing"

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		lang Language
	}{
		{".py", Python},
		{".go", Go},
		{".js", JavaScript},
		{".ts", TypeScript},
		{".tsx", TSX},
		{".rs", Rust},
		{".java", Java},
		{".cpp", CPP},
		{".hpp", CPP},
		{".c", C},
		{".h", C},
		{".cs", CSharp},
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
	for _, l := range AllLanguages() {
		spec := ForLanguage(l)
		if spec == nil {
			t.Errorf("ForLanguage(%s) = nil", l)
		}
	}
}

func TestUnknownExtension(t *testing.T) {
	if spec := ForExtension(".xyz"); spec != nil {
		t.Errorf("ForExtension(.xyz) should be nil, got %v", spec)
	}
}

func TestGoSpec(t *testing.T) {
	spec := ForLanguage(Go)
	if spec == nil {
		t.Fatal("Go spec not registered")
	}
	found := map[string]bool{}
	for _, nt := range spec.FunctionNodeTypes {
		found[nt] = true
	}
	if !found["function_declaration"] {
		t.Errorf("Go FunctionNodeTypes missing function_declaration: %v", spec.FunctionNodeTypes)
	}
	foundMethod := map[string]bool{}
	for _, nt := range spec.MethodNodeTypes {
		foundMethod[nt] = true
	}
	if !foundMethod["method_declaration"] {
		t.Errorf("Go MethodNodeTypes missing method_declaration: %v", spec.MethodNodeTypes)
	}
}

func TestPythonSpec(t *testing.T) {
	spec := ForLanguage(Python)
	if spec == nil {
		t.Fatal("Python spec not registered")
	}
	if len(spec.ClassNodeTypes) == 0 {
		t.Errorf("Python spec should declare a class node type")
	}
}

func TestCPPIncludeVsImport(t *testing.T) {
	spec := ForLanguage(CPP)
	if spec == nil {
		t.Fatal("CPP spec not registered")
	}
	if len(spec.IncludeNodeTypes) == 0 {
		t.Errorf("CPP spec should declare preproc_include as an include node type")
	}
}

func TestSupportedExtensionsNonEmpty(t *testing.T) {
	if len(SupportedExtensions()) == 0 {
		t.Errorf("SupportedExtensions() returned no extensions")
	}
}
