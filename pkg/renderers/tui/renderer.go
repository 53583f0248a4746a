// Package tui edits a settings session from a terminal. Prompts go through a
// PromptDriver (survey by default); page summaries come from the plain-text
// Renderer, which hosts can also serve to non-browser clients.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

const (
	emptyValue   = "(empty)"
	maskedSecret = "********"
)

// Renderer implements render.Renderer as a plain-text summary of the
// visible page.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer returns the text renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "text"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes the title, the page tabs, the active page's fields with
// their errors, and the available actions.
func (r *Renderer) Render(ctx context.Context, view form.View, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(view.Title + "\n")
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(view.Title)) + "\n")

	tabs := make([]string, 0, len(view.Pages))
	var active *form.PageView
	for i := range view.Pages {
		page := &view.Pages[i]
		if page.Active {
			active = page
			tabs = append(tabs, "["+page.Title+"]")
			continue
		}
		tabs = append(tabs, page.Title)
	}
	if len(tabs) > 0 {
		b.WriteString("Pages: " + strings.Join(tabs, " | ") + "\n")
	}

	if active != nil {
		for _, section := range active.Sections {
			b.WriteString("\n")
			if section.Legend != "" {
				b.WriteString(section.Legend + "\n")
			}
			for _, field := range section.Fields {
				writeField(&b, field)
			}
		}
	}

	b.WriteString("\n")
	if active != nil && len(active.Buttons) > 0 {
		b.WriteString("Page actions: " + buttonLabels(active.Buttons) + "\n")
	}
	if len(view.Buttons) > 0 {
		b.WriteString("Actions: " + buttonLabels(view.Buttons) + "\n")
	}
	if opts.Pending != nil {
		b.WriteString("Confirm: " + opts.Pending.Prompt + "\n")
	}
	if view.Notice != nil {
		fmt.Fprintf(&b, "[%s] %s\n", view.Notice.Level, view.Notice.Message)
	}
	return []byte(b.String()), nil
}

func writeField(b *strings.Builder, field form.ControlView) {
	label := field.Label
	if field.Required {
		label += "*"
	}
	fmt.Fprintf(b, "  %s: %s\n", label, displayValue(field))
	if field.ErrorVisible {
		fmt.Fprintf(b, "    ! %s\n", field.Error)
	}
}

func displayValue(field form.ControlView) string {
	switch {
	case field.Kind.IsBoolean():
		if field.Checked {
			return "on"
		}
		return "off"
	case field.Value == "":
		return emptyValue
	case field.Kind == schema.KindPassword:
		return maskedSecret
	case field.Kind == schema.KindSelect:
		for _, option := range field.Options {
			if option.Value == field.Value {
				return option.DisplayLabel()
			}
		}
		return field.Value
	case field.Kind == schema.KindTextarea:
		return strings.ReplaceAll(field.Value, "\n", " / ")
	default:
		return field.Value
	}
}

func buttonLabels(buttons []form.ButtonView) string {
	labels := make([]string, 0, len(buttons))
	for _, button := range buttons {
		label := button.Label
		if button.Disabled {
			label += " (disabled)"
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, " | ")
}
