// Package lang holds the closed set of supported document languages, the
// language identifier and the localized user-facing texts.
package lang

import (
	"fmt"
	"strings"
)

// Language is a supported document language tag.
type Language string

const (
	Kazakh  Language = "kk"
	Russian Language = "ru"
	English Language = "en"
)

// Default is used whenever the language is unknown.
const Default = Russian

// All returns every supported language in a stable order.
func All() []Language {
	return []Language{Kazakh, Russian, English}
}

// Parse converts a tag into a Language. Unknown tags are reported as an error.
func Parse(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Kazakh:
		return Kazakh, nil
	case Russian:
		return Russian, nil
	case English:
		return English, nil
	default:
		return Default, fmt.Errorf("unsupported language: %q", s)
	}
}

// OrDefault returns l when it is supported and Default otherwise.
func (l Language) OrDefault() Language {
	if parsed, err := Parse(string(l)); err == nil {
		return parsed
	}
	return Default
}

func (l Language) String() string {
	return string(l)
}
