package schema

import "strings"

// FieldKind is the closed set of control shapes a field can take.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindPassword FieldKind = "password"
	KindTextarea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindSwitch   FieldKind = "switch"
)

var knownKinds = map[FieldKind]struct{}{
	KindText:     {},
	KindPassword: {},
	KindTextarea: {},
	KindNumber:   {},
	KindSelect:   {},
	KindCheckbox: {},
	KindSwitch:   {},
}

// Known reports whether k is one of the declared kinds. The empty kind is
// known (it means text).
func (k FieldKind) Known() bool {
	if k == "" {
		return true
	}
	_, ok := knownKinds[FieldKind(strings.ToLower(string(k)))]
	return ok
}

// Normalize maps the empty or an unknown kind to KindText.
func (k FieldKind) Normalize() FieldKind {
	lowered := FieldKind(strings.ToLower(strings.TrimSpace(string(k))))
	if _, ok := knownKinds[lowered]; ok {
		return lowered
	}
	return KindText
}

// IsBoolean reports toggle-style kinds whose value is a bool.
func (k FieldKind) IsBoolean() bool {
	switch k.Normalize() {
	case KindCheckbox, KindSwitch:
		return true
	default:
		return false
	}
}

// IsTextual reports free-text kinds whose keystroke validation is debounced.
func (k FieldKind) IsTextual() bool {
	switch k.Normalize() {
	case KindText, KindPassword, KindTextarea:
		return true
	default:
		return false
	}
}

// ValidatorName is the closed set of built-in domain rules.
type ValidatorName string

const (
	ValidatorMAC    ValidatorName = "mac"
	ValidatorPort   ValidatorName = "port"
	ValidatorIP     ValidatorName = "ip"
	ValidatorIPPort ValidatorName = "ip_port"
	ValidatorURL    ValidatorName = "url"
)

// ValidatorNames lists the built-in rules in declaration order.
func ValidatorNames() []ValidatorName {
	return []ValidatorName{ValidatorMAC, ValidatorPort, ValidatorIP, ValidatorIPPort, ValidatorURL}
}

// Known reports whether n names a built-in rule.
func (n ValidatorName) Known() bool {
	for _, candidate := range ValidatorNames() {
		if n == candidate {
			return true
		}
	}
	return false
}
