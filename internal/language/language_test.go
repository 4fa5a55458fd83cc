package language

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Language
	}{
		{"english", English},
		{"English", English},
		{"en", English},
		{"ENG", English},
		{" hindi ", Hindi},
		{"hi", Hindi},
		{"hin", Hindi},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseRejectsUnsupported(t *testing.T) {
	for _, input := range []string{"", "french", "xx"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		lang    Language
		iso2    string
		iso3    string
		display string
		tag     language.Tag
	}{
		{English, "en", "eng", "English", language.English},
		{Hindi, "hi", "hin", "Hindi", language.Hindi},
		{Language("klingon"), "", "und", "Unknown", language.Und},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			if got := tt.lang.ISO2(); got != tt.iso2 {
				t.Errorf("ISO2() = %q, want %q", got, tt.iso2)
			}
			if got := tt.lang.ISO3(); got != tt.iso3 {
				t.Errorf("ISO3() = %q, want %q", got, tt.iso3)
			}
			if got := tt.lang.DisplayName(); got != tt.display {
				t.Errorf("DisplayName() = %q, want %q", got, tt.display)
			}
			if got := tt.lang.Tag(); got != tt.tag {
				t.Errorf("Tag() = %v, want %v", got, tt.tag)
			}
		})
	}
}

func TestToISO2(t *testing.T) {
	tests := map[string]string{
		"english": "en",
		"HIN":     "hi",
		"fr":      "",
		"":        "",
	}
	for input, want := range tests {
		if got := ToISO2(input); got != want {
			t.Errorf("ToISO2(%q) = %q, want %q", input, got, want)
		}
	}
}
