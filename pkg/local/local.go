package local

import (
	"fmt"
	"strings"
)

// Language is the two letter code of a supported UI language.
type Language string

const (
	Zh  = Language("zh")
	Eng = Language("en")
)

var languageAliases = map[string]Language{
	"zh":      Zh,
	"zh-cn":   Zh,
	"chinese": Zh,
	"en":      Eng,
	"eng":     Eng,
	"en-us":   Eng,
	"english": Eng,
}

// ParseLanguage resolves a configured language name; unknown names fall
// back to Zh, the language the fallback texts are written in.
func ParseLanguage(s string) Language {
	if language, ok := languageAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return language
	}
	return Zh
}

type Translation struct {
	Language Language
	Text     string
}

func In(language Language, text string) Translation {
	return Translation{Language: language, Text: text}
}

// TextSet is one user facing text in every language it was written for.
type TextSet struct {
	fallback   string
	byLanguage map[Language]string
}

func NewSet(fallback string, translations ...Translation) TextSet {
	byLanguage := make(map[Language]string, len(translations))
	for _, translation := range translations {
		byLanguage[translation.Language] = translation.Text
	}
	return TextSet{
		fallback:   fallback,
		byLanguage: byLanguage,
	}
}

func (s TextSet) Text(language Language) string {
	if text, ok := s.byLanguage[language]; ok {
		return text
	}
	return s.fallback
}

func (s TextSet) Format(language Language, a ...any) string {
	return fmt.Sprintf(s.Text(language), a...)
}
