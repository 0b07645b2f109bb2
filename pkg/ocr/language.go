package ocr

import (
	"fmt"
	"strings"
)

// Language is a Tesseract language code.
type Language string

const (
	English Language = "eng"
	German  Language = "deu"
	French  Language = "fra"
	Spanish Language = "spa"
	Italian Language = "ita"
)

// DefaultLanguage is used when none is configured.
const DefaultLanguage = English

// LanguageInfo describes a supported language.
type LanguageInfo struct {
	Code Language
	Name string
	ISO  string // ISO 639-1 code, used as a hint by cloud engines
}

// Languages lists the supported languages in display order.
var Languages = []LanguageInfo{
	{English, "English", "en"},
	{German, "German", "de"},
	{French, "French", "fr"},
	{Spanish, "Spanish", "es"},
	{Italian, "Italian", "it"},
}

// ParseLanguage accepts a Tesseract code, an ISO 639-1 code or an English
// language name, case-insensitively. An empty string yields DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultLanguage, nil
	}
	for _, l := range Languages {
		if s == string(l.Code) || s == l.ISO || s == strings.ToLower(l.Name) {
			return l.Code, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// Info returns the description of l, or false when l is not supported.
func (l Language) Info() (LanguageInfo, bool) {
	for _, info := range Languages {
		if info.Code == l {
			return info, true
		}
	}
	return LanguageInfo{}, false
}

// ISO returns the ISO 639-1 code of l, or "" when l is not supported.
func (l Language) ISO() string {
	info, _ := l.Info()
	return info.ISO
}
