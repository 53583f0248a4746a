package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultTitle is used when the schema does not declare a title.
const DefaultTitle = "ESP32 Settings"

// Schema is the root of a settings description.
type Schema struct {
	Title          string       `json:"title,omitempty"`
	Pages          []Page       `json:"pages" validate:"dive"`
	Theme          *Theme       `json:"theme,omitempty"`
	DefaultButtons []ButtonSpec `json:"defaultButtons,omitempty" validate:"dive"`
}

// Theme carries presentation hints that travel with the schema.
type Theme struct {
	Accent string `json:"accent,omitempty"`
}

// Page groups sections under one tab.
type Page struct {
	ID       string       `json:"id" validate:"required"`
	Title    string       `json:"title,omitempty"`
	Sections []Section    `json:"sections,omitempty" validate:"dive"`
	Buttons  []ButtonSpec `json:"buttons,omitempty" validate:"dive"`
}

// DisplayTitle falls back to the page id.
func (p Page) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// Section is a titled group of fields.
type Section struct {
	Legend string            `json:"legend,omitempty"`
	Fields []FieldDefinition `json:"fields,omitempty" validate:"dive"`
}

// FieldDefinition is the unit of binding and validation. Name is a dotted
// path into the configuration document and must be unique schema-wide.
type FieldDefinition struct {
	Name        string        `json:"name" validate:"required"`
	Label       string        `json:"label,omitempty"`
	Type        FieldKind     `json:"type,omitempty"`
	Required    bool          `json:"required,omitempty"`
	Validator   ValidatorName `json:"validator,omitempty"`
	Pattern     string        `json:"pattern,omitempty"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	MinLength   *int          `json:"minlength,omitempty" validate:"omitempty,gte=0"`
	MaxLength   *int          `json:"maxlength,omitempty" validate:"omitempty,gte=0"`
	Options     []Option      `json:"options,omitempty"`
	Default     any           `json:"default,omitempty"`
	HasDefault  bool          `json:"-"`
	Help        string        `json:"help,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// Kind returns the normalised field kind (text when unset or unknown).
func (f FieldDefinition) Kind() FieldKind {
	return f.Type.Normalize()
}

// DisplayLabel falls back to the field name.
func (f FieldDefinition) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// UnmarshalJSON records whether a default was declared, including an explicit
// null, so "no default" and "default: null" stay distinguishable.
func (f *FieldDefinition) UnmarshalJSON(data []byte) error {
	type plain FieldDefinition
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, decoded.HasDefault = keys["default"]

	*f = FieldDefinition(decoded)
	return nil
}

// Option is one entry of a select field. It decodes from either a plain
// string or an object with value and label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// DisplayLabel falls back to the option value.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// UnmarshalJSON accepts "value" or {"value": ..., "label": ...}.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*o = Option{Value: value, Label: value}
		return nil
	}

	var raw struct {
		Value any    `json:"value"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("schema: option must be a string or an object: %w", err)
	}
	value := ""
	if raw.Value != nil {
		value = fmt.Sprint(raw.Value)
	}
	*o = Option{Value: value, Label: raw.Label}
	return nil
}

// ButtonKind selects the built-in behaviour of a button.
type ButtonKind string

const (
	ButtonSave   ButtonKind = "save"
	ButtonLoad   ButtonKind = "load"
	ButtonCustom ButtonKind = "custom"
)

// ButtonSpec describes an action attached to a page or to the form.
type ButtonSpec struct {
	Label       string     `json:"label,omitempty"`
	Kind        ButtonKind `json:"kind,omitempty"`
	Endpoint    string     `json:"endpoint,omitempty"`
	Method      string     `json:"method,omitempty"`
	Payload     any        `json:"payload,omitempty"`
	IncludeForm bool       `json:"includeForm,omitempty"`
	Confirm     string     `json:"confirm,omitempty"`
}

// Behaviour reports the effective kind; anything other than save or load is
// a custom endpoint call.
func (b ButtonSpec) Behaviour() ButtonKind {
	switch b.Kind {
	case ButtonSave, ButtonLoad:
		return b.Kind
	default:
		return ButtonCustom
	}
}

// AsAction returns b as a custom endpoint call. Page-level buttons always
// call their endpoint whatever kind they declare.
func (b ButtonSpec) AsAction() ButtonSpec {
	b.Kind = ButtonCustom
	return b
}

// DisplayLabel returns the label or the default label for the behaviour.
func (b ButtonSpec) DisplayLabel() string {
	if b.Label != "" {
		return b.Label
	}
	switch b.Behaviour() {
	case ButtonSave:
		return "Save"
	case ButtonLoad:
		return "Reload"
	default:
		return "Action"
	}
}

// DefaultButtonSet is used when a schema declares no default buttons.
func DefaultButtonSet() []ButtonSpec {
	return []ButtonSpec{{Label: "Save All", Kind: ButtonSave}}
}

// Buttons returns the form-level buttons, applying the default set.
func (s *Schema) Buttons() []ButtonSpec {
	if s == nil || s.DefaultButtons == nil {
		return DefaultButtonSet()
	}
	return s.DefaultButtons
}

// DisplayTitle returns the schema title or DefaultTitle.
func (s *Schema) DisplayTitle() string {
	if s == nil || s.Title == "" {
		return DefaultTitle
	}
	return s.Title
}

// Fields returns every field definition in traversal order: pages, then
// sections, then fields, as declared.
func (s *Schema) Fields() []FieldDefinition {
	if s == nil {
		return nil
	}
	var out []FieldDefinition
	for _, page := range s.Pages {
		for _, section := range page.Sections {
			out = append(out, section.Fields...)
		}
	}
	return out
}

// Page looks up a page by id.
func (s *Schema) Page(id string) (Page, bool) {
	if s == nil {
		return Page{}, false
	}
	for _, page := range s.Pages {
		if page.ID == id {
			return page, true
		}
	}
	return Page{}, false
}
