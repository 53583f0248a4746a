package schema

import "strings"

const fieldIDPrefix = "fld_"

// FieldID derives the deterministic control id for a field name. Every rune
// outside [A-Za-z0-9_] becomes an underscore, so uniqueness relies on the
// schema's own name uniqueness.
func FieldID(name string) string {
	var b strings.Builder
	b.Grow(len(fieldIDPrefix) + len(name))
	b.WriteString(fieldIDPrefix)
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ErrorID is the id of the error region paired with a field's control.
func ErrorID(name string) string {
	return FieldID(name) + "_err"
}

// PageID is the element id of a page container.
func PageID(id string) string {
	return "page_" + id
}
