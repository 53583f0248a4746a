package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/schema"
	"github.com/goliatone/go-settingsform/pkg/validation"
)

const (
	menuBack = "Back"
	menuQuit = "Quit"
)

// Editor walks a session page by page: fields are edited through prompts
// validated by the same engine the session uses, buttons run through the
// session controller.
type Editor struct {
	session *form.Session
	driver  PromptDriver
	text    *Renderer
	theme   Theme
	defs    map[string]schema.FieldDefinition
	strip   *bluemonday.Policy
}

// NewEditor binds an editor to session. The session should carry a
// Confirmer (see NewConfirmer) when its buttons ask for confirmation.
func NewEditor(session *form.Session, options ...Option) (*Editor, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	e := &Editor{
		session: session,
		text:    NewRenderer(),
		theme:   DefaultTheme,
		defs:    make(map[string]schema.FieldDefinition),
		strip:   bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver()
	}
	for _, def := range session.Schema().Fields() {
		e.defs[def.Name] = def
	}
	return e, nil
}

// NewConfirmer adapts a prompt driver to the session's confirmation seam.
func NewConfirmer(driver PromptDriver) form.Confirmer {
	return form.ConfirmerFunc(func(ctx context.Context, prompt string) (bool, error) {
		return driver.Confirm(ctx, ConfirmConfig{Message: prompt})
	})
}

type menuEntry struct {
	label  string
	page   string
	field  string
	button *form.ButtonRef
	exit   bool
}

// Run shows the main menu until the user quits or aborts.
func (e *Editor) Run(ctx context.Context) error {
	for {
		view := e.session.View()
		entries := make([]menuEntry, 0, len(view.Pages)+len(view.Buttons)+1)
		for _, page := range view.Pages {
			entries = append(entries, menuEntry{label: "Open " + page.Title, page: page.ID})
		}
		for _, button := range view.Buttons {
			ref := button.Ref
			entries = append(entries, menuEntry{label: button.Label, button: &ref})
		}
		entries = append(entries, menuEntry{label: menuQuit, exit: true})

		entry, err := e.choose(ctx, view.Title, entries)
		if err != nil {
			return err
		}
		switch {
		case entry.exit:
			return nil
		case entry.page != "":
			if err := e.editPage(ctx, entry.page); err != nil {
				return err
			}
		case entry.button != nil:
			if err := e.press(ctx, *entry.button); err != nil {
				return err
			}
		}
	}
}

func (e *Editor) editPage(ctx context.Context, id string) error {
	if err := e.session.ShowPage(id); err != nil {
		return err
	}
	for {
		view := e.session.View()
		summary, err := e.text.Render(ctx, view, render.RenderOptions{})
		if err != nil {
			return err
		}
		if err := e.driver.Info(ctx, strings.TrimRight(string(summary), "\n")); err != nil {
			return err
		}

		var page form.PageView
		for _, candidate := range view.Pages {
			if candidate.Active {
				page = candidate
			}
		}
		var entries []menuEntry
		for _, section := range page.Sections {
			for _, field := range section.Fields {
				entries = append(entries, menuEntry{label: "Edit " + field.Label, field: field.Name})
			}
		}
		for _, button := range page.Buttons {
			ref := button.Ref
			entries = append(entries, menuEntry{label: button.Label, button: &ref})
		}
		entries = append(entries, menuEntry{label: menuBack, exit: true})

		entry, err := e.choose(ctx, page.Title, entries)
		if err != nil {
			return err
		}
		switch {
		case entry.exit:
			return nil
		case entry.field != "":
			if err := e.editField(ctx, entry.field); err != nil {
				return err
			}
		case entry.button != nil:
			if err := e.press(ctx, *entry.button); err != nil {
				return err
			}
		}
	}
}

func (e *Editor) choose(ctx context.Context, message string, entries []menuEntry) (menuEntry, error) {
	labels := make([]string, len(entries))
	for i, entry := range entries {
		labels[i] = entry.label
	}
	idx, err := e.driver.Select(ctx, SelectConfig{Message: message, Options: labels})
	if err != nil {
		return menuEntry{}, err
	}
	if idx < 0 || idx >= len(entries) {
		return menuEntry{}, fmt.Errorf("tui: selection %d out of range", idx)
	}
	return entries[idx], nil
}

func (e *Editor) editField(ctx context.Context, name string) error {
	field, err := e.session.Field(name)
	if err != nil {
		return err
	}
	def := e.defs[name]
	help := e.plainHelp(field.Help)
	check := func(candidate string) error {
		if res := validation.Evaluate(def, candidate); !res.OK {
			return errors.New(res.Message)
		}
		return nil
	}

	switch {
	case field.Kind.IsBoolean():
		checked, err := e.driver.Confirm(ctx, ConfirmConfig{Message: field.Label, Default: field.Checked, Help: help})
		if err != nil {
			return err
		}
		if err := e.session.Toggle(name, checked); err != nil {
			return err
		}
	case field.Kind == schema.KindSelect:
		labels := make([]string, len(field.Options))
		current := 0
		for i, option := range field.Options {
			labels[i] = option.DisplayLabel()
			if option.Value == field.Value {
				current = i
			}
		}
		if len(labels) == 0 {
			return e.driver.Info(ctx, e.theme.ErrorPrefix+field.Label+" has no options")
		}
		idx, err := e.driver.Select(ctx, SelectConfig{Message: field.Label, Options: labels, DefaultIndex: current, Help: help})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Options) {
			return fmt.Errorf("tui: option %d out of range", idx)
		}
		if err := e.session.Select(name, field.Options[idx].Value); err != nil {
			return err
		}
	case field.Kind == schema.KindPassword:
		value, err := e.driver.Password(ctx, InputConfig{Message: field.Label, Help: help, Validator: check})
		if err != nil {
			return err
		}
		if err := e.session.Change(name, value); err != nil {
			return err
		}
	case field.Kind == schema.KindTextarea:
		value, err := e.driver.TextArea(ctx, TextAreaConfig{Message: field.Label, Default: field.Value, Help: help, Validator: check})
		if err != nil {
			return err
		}
		if err := e.session.Change(name, value); err != nil {
			return err
		}
	default:
		value, err := e.driver.Input(ctx, InputConfig{
			Message:     field.Label,
			Default:     field.Value,
			Help:        help,
			Placeholder: field.Placeholder,
			Validator:   check,
		})
		if err != nil {
			return err
		}
		if err := e.session.Change(name, value); err != nil {
			return err
		}
	}

	updated, err := e.session.Field(name)
	if err != nil {
		return err
	}
	if updated.ErrorVisible {
		return e.driver.Info(ctx, e.theme.ErrorPrefix+updated.Label+": "+updated.Error)
	}
	return nil
}

// press runs a button and reports the outcome. Session-level failures are
// shown to the user; only prompt and context errors stop the editor.
func (e *Editor) press(ctx context.Context, ref form.ButtonRef) error {
	err := e.session.Press(ctx, ref)
	switch {
	case errors.Is(err, ErrAborted), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, form.ErrInvalid):
		label := e.session.Focused()
		if field, ferr := e.session.Field(label); ferr == nil {
			label = field.Label
		}
		return e.driver.Info(ctx, e.theme.ErrorPrefix+"Fix "+label+" before saving")
	case errors.Is(err, form.ErrDeclined):
		return e.driver.Info(ctx, e.theme.InfoPrefix+"Cancelled")
	}

	if notice := e.session.TakeNotice(); notice != nil {
		prefix := e.theme.SuccessPrefix
		if notice.Level == form.NoticeFailure {
			prefix = e.theme.ErrorPrefix
		}
		return e.driver.Info(ctx, prefix+notice.Message)
	}
	if err != nil {
		return e.driver.Info(ctx, e.theme.ErrorPrefix+err.Error())
	}
	return nil
}

func (e *Editor) plainHelp(help string) string {
	if strings.TrimSpace(help) == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(e.strip.Sanitize(help)))
}
