// Package i18n resolves localized catalog text and formats amounts for display.
package i18n

import (
	"sort"
	"strings"

	"github.com/princinho/climaquote/models"
	"golang.org/x/text/language"
)

// BaseLanguage is the last explicit fallback before any available value.
const BaseLanguage = models.BaseLanguage

// Resolve returns the display string of value in lang. value may be nil, a
// plain string (legacy records), a LocalizedText or a generic string map.
// It never fails: the worst case is an empty string.
func Resolve(value any, lang string) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case models.LocalizedText:
		return resolveMap(v, lang)
	case map[string]string:
		return resolveMap(v, lang)
	case map[string]any:
		m := make(map[string]string, len(v))
		for k, raw := range v {
			if s, ok := raw.(string); ok {
				m[k] = s
			}
		}
		return resolveMap(m, lang)
	}
	return ""
}

func resolveMap(m map[string]string, lang string) string {
	if len(m) == 0 {
		return ""
	}
	lang = strings.TrimSpace(lang)
	if lang != "" {
		if s := m[lang]; s != "" {
			return s
		}
		if canon := Normalize(lang); canon != lang {
			if s := m[canon]; s != "" {
				return s
			}
		}
		if s := m[Base(lang)]; s != "" {
			return s
		}
	}
	if s := m[BaseLanguage]; s != "" {
		return s
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] != "" {
			return m[k]
		}
	}
	return ""
}

// Normalize canonicalizes a BCP 47 tag ("EN-gb" -> "en-GB"). Unparseable
// input is returned trimmed.
func Normalize(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	return t.String()
}

// Base strips the region and script from a tag ("en-US" -> "en").
func Base(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if t, err := language.Parse(tag); err == nil {
		b, _ := t.Base()
		return b.String()
	}
	if i := strings.Index(tag, "-"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// DetectLanguage picks the first language of an Accept-Language header,
// defaulting to BaseLanguage.
func DetectLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return BaseLanguage
	}
	return tags[0].String()
}
