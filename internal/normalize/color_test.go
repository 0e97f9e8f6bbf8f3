package normalize

import (
	"testing"
)

func TestColorFamilyDictionaries(t *testing.T) {
	tests := []struct {
		raw   string
		model string
		want  string
	}{
		{"space gray", "iPhone 11 Pro", "Cinza Espacial"},
		{"space grey", "iPhone 11 Pro Max", "Cinza Espacial"},
		{"midnight", "iPhone 13", "Meia-noite"},
		{"starlight", "iPhone 14", "Estelar"},
		{"graphite", "iPhone 13 Pro", "Grafite"},
		{"sierra blue", "iPhone 13 Pro Max", "Azul Sierra"},
		{"pacific blue", "iPhone 12 Pro", "Azul Pacífico"},
		{"natural titanium", "iPhone 15 Pro", "Titânio Natural"},
		{"desert titanium", "iPhone 16 Pro Max", "Titânio Deserto"},
		{"deep purple", "iPhone 14 Pro", "Roxo-profundo"},
		{"black", "iPhone 12", "Preto"},
		{"azul", "iPhone 15", "Azul"},
		{"TITANIO PRETO", "Galaxy S24 Ultra", "Titânio Preto"},
	}

	for _, tt := range tests {
		if got := Color(tt.raw, tt.model); got != tt.want {
			t.Errorf("Color(%q, %q) = %q, want %q", tt.raw, tt.model, got, tt.want)
		}
	}
}

func TestColorDictionariesDoNotLeakAcrossFamilies(t *testing.T) {
	// "space gray" belongs to the 11 Pro family, not the base iPhone 11.
	if got := Color("space gray", "iPhone 11"); got == "Cinza Espacial" {
		t.Fatalf("Color leaked the 11 Pro dictionary into iPhone 11: got %q", got)
	}
	// The pro-max family must win over the shorter prefixes.
	if got := Color("deep blue", "iPhone 17 Pro Max"); got != "Azul Profundo" {
		t.Errorf("Color(deep blue, iPhone 17 Pro Max) = %q, want Azul Profundo", got)
	}
	if got := Color("lavender", "iPhone 17"); got != "Lavanda" {
		t.Errorf("Color(lavender, iPhone 17) = %q, want Lavanda", got)
	}
}

func TestColorWordFallbackAndCapitalization(t *testing.T) {
	// A compound token still resolves through a single known word.
	if got := Color("azul novo lacrado", "iPhone 15"); got != "Azul" {
		t.Errorf("word fallback: got %q, want Azul", got)
	}
	// Unknown colors come back capitalized, never empty.
	if got := Color("space gray", "iPhone 11"); got != "Space Gray" {
		t.Errorf("fallback capitalization: got %q, want Space Gray", got)
	}
	if got := Color("verde menta", "Moto G84"); got == "" {
		t.Error("Color must be total: returned empty for non-empty input")
	}
}

func TestColorEmptyInput(t *testing.T) {
	if got := Color("", "iPhone 13"); got != "" {
		t.Errorf("Color(\"\") = %q, want empty", got)
	}
	if got := Color("   ", "iPhone 13"); got != "" {
		t.Errorf("Color(whitespace) = %q, want empty", got)
	}
}
