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

func TestUnsupportedExtensions(t *testing.T) {
	for _, ext := range []string{".js", ".py", ".go", ".json", ""} {
		if _, ok := LanguageForExtension(ext); ok {
			t.Errorf("LanguageForExtension(%q) should be unsupported", ext)
		}
	}
}

func TestForLanguage(t *testing.T) {
	for _, lang := range AllLanguages() {
		spec := ForLanguage(lang)
		if spec == nil {
			t.Errorf("ForLanguage(%s) = nil", lang)
			continue
		}
		if len(spec.ClassNodeTypes) == 0 || len(spec.CallNodeTypes) == 0 {
			t.Errorf("ForLanguage(%s) has empty node kind lists", lang)
		}
	}
}

func TestExtensions(t *testing.T) {
	if got := len(Extensions()); got != 4 {
		t.Errorf("Extensions() returned %d entries, want 4", got)
	}
}
