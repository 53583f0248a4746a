package render

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Reserved form keys posted by the HTML host next to the field controls.
const (
	KeySession   = "_session"
	KeyPage      = "_page"
	KeyShow      = "_show"
	KeyAction    = "_action"
	KeyButton    = "_button"
	KeyConfirmed = "_confirmed"
)

// Actions carried in KeyAction.
const (
	ActionValidate = "validate"
	ActionSave     = "save"
	ActionLoad     = "load"
)

var reservedKeys = map[string]struct{}{
	KeySession:   {},
	KeyPage:      {},
	KeyShow:      {},
	KeyAction:    {},
	KeyButton:    {},
	KeyConfirmed: {},
}

// HiddenField represents a hidden form input emitted alongside the visible
// controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// SessionField carries the session id so a post lands on the same session.
func SessionField(id string) HiddenField {
	return Hidden(KeySession, id)
}

// PageField carries the page that was visible when the form was posted.
func PageField(id string) HiddenField {
	return Hidden(KeyPage, id)
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields sorts hidden fields by name for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}

// Submission is a decoded post of the settings page.
type Submission struct {
	Session   string
	Page      string
	Show      string
	Action    string
	Button    string
	Confirmed string
	// Values holds the last posted value per field name. Toggles post a
	// hidden "false" ahead of the checkbox, so an unchecked box still
	// reports a value.
	Values map[string]string
}

// ParseSubmission splits posted values into reserved keys and field values.
func ParseSubmission(values url.Values) Submission {
	sub := Submission{
		Session:   values.Get(KeySession),
		Page:      values.Get(KeyPage),
		Show:      values.Get(KeyShow),
		Action:    strings.ToLower(strings.TrimSpace(values.Get(KeyAction))),
		Button:    values.Get(KeyButton),
		Confirmed: values.Get(KeyConfirmed),
		Values:    make(map[string]string, len(values)),
	}
	for name, posted := range values {
		if _, reserved := reservedKeys[name]; reserved || len(posted) == 0 {
			continue
		}
		sub.Values[name] = posted[len(posted)-1]
	}
	return sub
}
