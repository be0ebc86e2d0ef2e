package local

import "testing"

func TestTextSet(t *testing.T) {
	set := NewSet("默认 %s", In(Eng, "default %s"))

	tests := []struct {
		name     string
		language Language
		want     string
	}{
		{name: "translated", language: Eng, want: "default x"},
		{name: "falls back to default", language: Language("fr"), want: "默认 x"},
		{name: "default language", language: Zh, want: "默认 x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := set.Format(tt.language, "x"); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	if got := ParseLanguage("en"); got != Eng {
		t.Errorf("ParseLanguage(en) = %q, want %q", got, Eng)
	}
	if got := ParseLanguage(""); got != Zh {
		t.Errorf("ParseLanguage(\"\") = %q, want %q", got, Zh)
	}
}

func TestParseLanguageAliases(t *testing.T) {
	tests := map[string]Language{
		"English": Eng,
		" en-US ": Eng,
		"zh-CN":   Zh,
		"fr":      Zh,
	}
	for in, want := range tests {
		if got := ParseLanguage(in); got != want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
