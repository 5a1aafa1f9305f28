// utils/text.go
package utils

import "strings"

// CleanText trims surrounding whitespace, including the non-breaking spaces the
// portal uses to pad empty cells.
func CleanText(s string) string {
	return strings.TrimSpace(s)
}

// IsBlank reports whether cell text is empty once trimmed. A lone &nbsp; counts as blank.
func IsBlank(s string) bool {
	return CleanText(s) == ""
}

// htmlSpace is the ASCII whitespace HTML uses to separate class names.
const htmlSpace = " \t\n\f\r"

// HasClassToken reports whether a class attribute contains name. Only HTML
// whitespace separates tokens, so "bold\u00a0x" is a single class.
func HasClassToken(classAttr, name string) bool {
	tokens := strings.FieldsFunc(classAttr, func(r rune) bool {
		return strings.ContainsRune(htmlSpace, r)
	})
	for _, c := range tokens {
		if c == name {
			return true
		}
	}
	return false
}

// StyleValue returns the value of a CSS property from an inline style attribute,
// lower-cased with spaces removed, or "" when absent.
func StyleValue(style, property string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), property) {
			return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
		}
	}
	return ""
}
