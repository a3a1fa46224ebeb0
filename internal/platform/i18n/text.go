// Package i18n provides locale-keyed text maps for world content.
//
// Location names and descriptions are authored per locale. Locale keys are
// canonicalized through golang.org/x/text/language so "en_us", "en-US", and
// "en-us" all address the same entry.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// BaseLocale is the canonical fallback locale for world content.
const BaseLocale = "en-US"

// Text holds localized variants of one piece of content, keyed by BCP 47 tag.
type Text map[string]string

// NormalizeLocale canonicalizes a locale key to its BCP 47 form.
func NormalizeLocale(locale string) (string, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", fmt.Errorf("locale is required")
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return tag.String(), nil
}

// NewText builds a Text from raw locale keys, canonicalizing each key.
// Entries with blank values are dropped.
func NewText(values map[string]string) (Text, error) {
	if len(values) == 0 {
		return Text{}, nil
	}
	text := make(Text, len(values))
	for locale, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		canonical, err := NormalizeLocale(locale)
		if err != nil {
			return nil, err
		}
		text[canonical] = value
	}
	return text, nil
}

// Resolve returns the best variant for the requested locale.
//
// Resolution prefers an exact tag match, then a best match through the
// language matcher, then the base locale, then any variant in deterministic
// tag order. The second return reports whether anything was found.
func (t Text) Resolve(locale string) (string, bool) {
	if len(t) == 0 {
		return "", false
	}

	canonical, err := NormalizeLocale(locale)
	if err == nil {
		if value, ok := t[canonical]; ok {
			return value, true
		}

		tags := make([]language.Tag, 0, len(t))
		keys := make([]string, 0, len(t))
		for key := range t {
			tag, parseErr := language.Parse(key)
			if parseErr != nil {
				continue
			}
			tags = append(tags, tag)
			keys = append(keys, key)
		}
		if len(tags) > 0 {
			matcher := language.NewMatcher(tags)
			if _, index, confidence := matcher.Match(language.Make(canonical)); confidence > language.No {
				return t[keys[index]], true
			}
		}
	}

	if value, ok := t[BaseLocale]; ok {
		return value, true
	}

	best := ""
	for key := range t {
		if best == "" || key < best {
			best = key
		}
	}
	return t[best], true
}

// Merge overlays other onto t, with other winning on conflicting locales.
// Neither input is mutated.
func (t Text) Merge(other Text) Text {
	if len(other) == 0 && len(t) == 0 {
		return Text{}
	}
	merged := make(Text, len(t)+len(other))
	for key, value := range t {
		merged[key] = value
	}
	for key, value := range other {
		merged[key] = value
	}
	return merged
}

// Clone returns an independent copy of t.
func (t Text) Clone() Text {
	if t == nil {
		return nil
	}
	cloned := make(Text, len(t))
	for key, value := range t {
		cloned[key] = value
	}
	return cloned
}
