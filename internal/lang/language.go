// Package lang validates the optional output language of optimized posts.
package lang

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by Parse for a code outside the names table.
var ErrUnsupported = errors.New("unsupported output language")

// names maps ISO 639-1 base codes to the English name used in prompts.
var names = map[string]string{
	"ar": "Arabic",
	"bn": "Bengali",
	"cs": "Czech",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"es": "Spanish",
	"fi": "Finnish",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hu": "Hungarian",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"no": "Norwegian",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"sv": "Swedish",
	"th": "Thai",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// regional overrides the base name for common locales.
var regional = map[string]string{
	"en-us": "American English",
	"en-gb": "British English",
	"es-mx": "Mexican Spanish",
	"fr-ca": "Canadian French",
	"pt-br": "Brazilian Portuguese",
	"pt-pt": "European Portuguese",
	"zh-cn": "Simplified Chinese",
	"zh-tw": "Traditional Chinese",
}

// Language is a validated output language.
// The zero value means "not specified": posts are written in whatever
// language the model picks, usually the language of the input.
type Language struct {
	code string // normalized: lowercase, hyphen separated
}

// Parse validates a language code.
// Accepts ISO 639-1 codes ("fr") and locales ("pt-BR", "pt_br").
// Empty input returns the zero Language without error.
func Parse(s string) (Language, error) {
	if s == "" {
		return Language{}, nil
	}
	code := normalize(s)
	if _, ok := names[base(code)]; !ok {
		return Language{}, fmt.Errorf("%q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR'): %w", s, ErrUnsupported)
	}
	return Language{code: code}, nil
}

// MustParse parses a language code, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParse(s string) Language {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the normalized code, or "" for the zero value.
func (l Language) String() string {
	return l.code
}

// IsZero reports whether no language was specified.
func (l Language) IsZero() bool {
	return l.code == ""
}

// IsEnglish reports whether the language is English or an English locale.
// Prompts are written in English, so no instruction is needed for it.
func (l Language) IsEnglish() bool {
	return base(l.code) == "en"
}

// BaseCode returns the ISO 639-1 part of the code ("pt-br" -> "pt").
func (l Language) BaseCode() string {
	return base(l.code)
}

// DisplayName returns the English name of the language, preferring a
// regional name when one is known. Returns "" for the zero value.
func (l Language) DisplayName() string {
	if l.IsZero() {
		return ""
	}
	if name, ok := regional[l.code]; ok {
		return name
	}
	return names[base(l.code)]
}

// Instruction returns the sentence prepended to prompts, or "" when the
// language is unset or English.
func (l Language) Instruction() string {
	if l.IsZero() || l.IsEnglish() {
		return ""
	}
	return fmt.Sprintf("Respond in %s.", l.DisplayName())
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

func base(code string) string {
	if idx := strings.Index(code, "-"); idx != -1 {
		return code[:idx]
	}
	return code
}
