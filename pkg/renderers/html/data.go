package html

import (
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-settingsform/pkg/appearance"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

type pageData struct {
	Title         string       `json:"title"`
	Action        string       `json:"action"`
	ThemeAction   string       `json:"theme_action"`
	Preference    string       `json:"preference"`
	Variant       string       `json:"variant"`
	Stylesheet    string       `json:"stylesheet"`
	StylesheetURL string       `json:"stylesheet_url"`
	ThemeVars     string       `json:"theme_vars"`
	DarkVars      string       `json:"dark_vars"`
	Hidden        []hiddenData `json:"hidden"`
	Pages         []tabData    `json:"pages"`
	Buttons       []buttonData `json:"buttons"`
	Notice        *noticeData  `json:"notice"`
	Pending       *pendingData `json:"pending"`
	SaveEnabled   bool         `json:"save_enabled"`
}

type hiddenData struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type tabData struct {
	ID       string        `json:"id"`
	DOMID    string        `json:"dom_id"`
	Title    string        `json:"title"`
	Active   bool          `json:"active"`
	Sections []sectionData `json:"sections"`
	Buttons  []buttonData  `json:"buttons"`
}

type sectionData struct {
	Legend string      `json:"legend"`
	Fields []fieldData `json:"fields"`
}

type fieldData struct {
	Name         string       `json:"name"`
	ID           string       `json:"id"`
	ErrorID      string       `json:"error_id"`
	Kind         string       `json:"kind"`
	InputType    string       `json:"input_type"`
	Toggle       bool         `json:"toggle"`
	Label        string       `json:"label"`
	HelpHTML     string       `json:"help_html"`
	Placeholder  string       `json:"placeholder"`
	Required     bool         `json:"required"`
	Min          string       `json:"min"`
	Max          string       `json:"max"`
	MinLength    string       `json:"min_length"`
	MaxLength    string       `json:"max_length"`
	Value        string       `json:"value"`
	Checked      bool         `json:"checked"`
	Options      []optionData `json:"options"`
	State        string       `json:"state"`
	Error        string       `json:"error"`
	ErrorVisible bool         `json:"error_visible"`
	Hint         string       `json:"hint"`
	Autofocus    bool         `json:"autofocus"`
}

type optionData struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type buttonData struct {
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Value    string `json:"value"`
	Confirm  string `json:"confirm"`
	Disabled bool   `json:"disabled"`
}

type noticeData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type pendingData struct {
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

func (r *Renderer) buildPage(view form.View, opts render.RenderOptions) (pageData, error) {
	action := opts.Action
	if action == "" {
		action = "/"
	}
	data := pageData{
		Title:       view.Title,
		Action:      action,
		ThemeAction: opts.ThemeAction,
		Preference:  opts.Preference.String(),
		SaveEnabled: view.SaveEnabled,
	}

	if err := applyTheme(&data, view, opts); err != nil {
		return pageData{}, err
	}

	for _, h := range opts.Hidden {
		data.Hidden = append(data.Hidden, hiddenData{Name: h.Name, Value: h.Value})
	}
	for _, page := range view.Pages {
		tab := tabData{
			ID:     page.ID,
			DOMID:  page.DOMID,
			Title:  page.Title,
			Active: page.Active,
		}
		for _, section := range page.Sections {
			sd := sectionData{Legend: section.Legend}
			for _, field := range section.Fields {
				sd.Fields = append(sd.Fields, r.field(field))
			}
			tab.Sections = append(tab.Sections, sd)
		}
		tab.Buttons = buttons(page.Buttons)
		data.Pages = append(data.Pages, tab)
	}
	data.Buttons = buttons(view.Buttons)

	if view.Notice != nil {
		data.Notice = &noticeData{Level: string(view.Notice.Level), Message: view.Notice.Message}
	}
	if opts.Pending != nil {
		data.Pending = &pendingData{Key: opts.Pending.Key, Prompt: opts.Pending.Prompt}
	}
	return data, nil
}

func applyTheme(data *pageData, view form.View, opts render.RenderOptions) error {
	selector := appearance.NewSelector(view.Accent)

	cfg := opts.Theme
	if cfg == nil {
		resolved, err := appearance.Config(selector, opts.Preference)
		if err != nil {
			return err
		}
		cfg = resolved
	}
	data.Variant = cfg.Variant

	if opts.Preference == appearance.Unset {
		palette := opts.Palette
		if palette == nil {
			resolved, err := appearance.PaletteFor(selector)
			if err != nil {
				return err
			}
			palette = &resolved
		}
		data.ThemeVars = appearance.Declarations(palette.Light)
		data.DarkVars = appearance.Declarations(palette.Dark)
	} else {
		data.ThemeVars = appearance.Declarations(cfg.CSSVars)
	}

	if opts.Standalone {
		data.Stylesheet = Stylesheet()
	} else {
		data.StylesheetURL = assetURL(cfg, "stylesheet")
	}
	return nil
}

func assetURL(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL(key)
}

func (r *Renderer) field(c form.ControlView) fieldData {
	fd := fieldData{
		Name:         c.Name,
		ID:           c.ID,
		ErrorID:      c.ErrorID,
		Kind:         string(c.Kind),
		InputType:    inputType(c.Kind),
		Toggle:       c.Kind.IsBoolean(),
		Label:        c.Label,
		Placeholder:  c.Placeholder,
		Required:     c.Required,
		Min:          formatFloat(c.Min),
		Max:          formatFloat(c.Max),
		MinLength:    formatInt(c.MinLength),
		MaxLength:    formatInt(c.MaxLength),
		Value:        c.Value,
		Checked:      c.Checked,
		State:        string(c.Marker),
		Error:        c.Error,
		ErrorVisible: c.ErrorVisible,
		Hint:         c.Hint,
		Autofocus:    c.Focused,
	}
	if help := strings.TrimSpace(c.Help); help != "" {
		fd.HelpHTML = strings.TrimSpace(r.policy.Sanitize(help))
	}
	for _, option := range c.Options {
		fd.Options = append(fd.Options, optionData{
			Value:    option.Value,
			Label:    option.DisplayLabel(),
			Selected: option.Value == c.Value,
		})
	}
	return fd
}

func buttons(in []form.ButtonView) []buttonData {
	out := make([]buttonData, 0, len(in))
	for _, b := range in {
		bd := buttonData{
			Label:    b.Label,
			Kind:     string(b.Kind),
			Confirm:  b.Confirm,
			Disabled: b.Disabled,
		}
		switch b.Kind {
		case schema.ButtonSave:
			bd.Name, bd.Value = render.KeyAction, render.ActionSave
		case schema.ButtonLoad:
			bd.Name, bd.Value = render.KeyAction, render.ActionLoad
		default:
			bd.Name, bd.Value = render.KeyButton, b.Key
		}
		out = append(out, bd)
	}
	return out
}

func inputType(kind schema.FieldKind) string {
	switch kind {
	case schema.KindPassword:
		return "password"
	case schema.KindNumber:
		return "number"
	default:
		return "text"
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
