// Package i18n holds user-facing error message catalogs.
package i18n

import (
	"strings"
)

// Code mirrors the error codes defined in internal/errors/codes.go.
// The string type is duplicated here to avoid an import cycle.
type Code string

// Catalog maps error codes to user-facing messages for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the catalog locale.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code, substituting {{.Key}} placeholders
// from metadata. Unknown codes fall back to a generic message.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	message, ok := c.messages[code]
	if !ok {
		return "An unexpected error occurred"
	}
	for key, value := range metadata {
		message = strings.ReplaceAll(message, "{{."+key+"}}", value)
	}
	return message
}

// GetCatalog returns the catalog for the requested locale, defaulting to
// en-US when the locale is unknown.
func GetCatalog(locale string) *Catalog {
	if catalog, ok := catalogs[locale]; ok {
		return catalog
	}
	return enUSCatalog
}

var catalogs = map[string]*Catalog{
	"en-US": enUSCatalog,
}
