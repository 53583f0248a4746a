package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-settingsform/pkg/schema"
	"github.com/goliatone/go-settingsform/pkg/validation"
)

// Marker is the visual validity state of a control.
type Marker string

const (
	MarkerNone    Marker = ""
	MarkerValid   Marker = "valid"
	MarkerInvalid Marker = "invalid"
)

// control is the live state of one bound field.
type control struct {
	def     schema.FieldDefinition
	kind    schema.FieldKind
	page    string
	id      string
	errorID string

	value   string
	checked bool

	marker  Marker
	message string
	hint    string

	debounce *Debouncer
}

func newControl(def schema.FieldDefinition, page string) *control {
	c := &control{
		def:     def,
		kind:    def.Kind(),
		page:    page,
		id:      schema.FieldID(def.Name),
		errorID: schema.ErrorID(def.Name),
	}
	if c.kind == schema.KindSelect && len(def.Options) > 0 {
		c.value = def.Options[0].Value
	}
	if def.HasDefault {
		c.set(def.Default)
	}
	return c
}

// set writes a document value into the control: toggles take its truthiness,
// everything else its string form.
func (c *control) set(value any) {
	if c.kind.IsBoolean() {
		c.checked = truthy(value)
		return
	}
	c.value = stringify(value)
}

// live returns the value validation runs against.
func (c *control) live() any {
	if c.kind.IsBoolean() {
		return c.checked
	}
	return c.value
}

// collected returns the value written into the document.
func (c *control) collected() any {
	switch {
	case c.kind.IsBoolean():
		return c.checked
	case c.kind == schema.KindNumber:
		if n, ok := validation.ParseNumber(c.value); ok {
			return n
		}
		return nil
	default:
		return c.value
	}
}

// validate evaluates the live value and refreshes the error region, the
// marker and the validity hint.
func (c *control) validate() validation.Result {
	res := validation.Evaluate(c.def, c.live())
	if res.OK {
		c.marker = MarkerValid
		c.message = ""
		c.hint = ""
	} else {
		c.marker = MarkerInvalid
		c.message = res.Message
		c.hint = res.Message
	}
	return res
}

func (c *control) view(focused bool) ControlView {
	return ControlView{
		Name:         c.def.Name,
		ID:           c.id,
		ErrorID:      c.errorID,
		Page:         c.page,
		Kind:         c.kind,
		Label:        c.def.DisplayLabel(),
		Help:         c.def.Help,
		Placeholder:  c.def.Placeholder,
		Required:     c.def.Required,
		Options:      c.def.Options,
		Min:          c.def.Min,
		Max:          c.def.Max,
		MinLength:    c.def.MinLength,
		MaxLength:    c.def.MaxLength,
		Value:        c.value,
		Checked:      c.checked,
		Marker:       c.marker,
		Error:        c.message,
		ErrorVisible: c.message != "",
		Hint:         c.hint,
		Focused:      focused,
	}
}

// ParseBool reads a submitted toggle value. Browsers send "on" for a checked
// box; unchecked boxes are not sent at all.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "on", "yes", "y":
		return true
	default:
		return false
	}
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case float64:
		return typed != 0 && !math.IsNaN(typed)
	case int:
		return typed != 0
	case int64:
		return typed != 0
	default:
		return true
	}
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case map[string]any, []any:
		if raw, err := json.Marshal(typed); err == nil {
			return string(raw)
		}
		return fmt.Sprint(typed)
	default:
		return fmt.Sprint(typed)
	}
}
