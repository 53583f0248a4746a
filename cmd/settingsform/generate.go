package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-settingsform"
	"github.com/goliatone/go-settingsform/pkg/appearance"
	"github.com/goliatone/go-settingsform/pkg/configstore"
	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/render"
)

// runGenerate renders the settings page once, with the stylesheet inlined,
// optionally prefilled from a configuration file.
func runGenerate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("generate", stderr)
	schemaPath := fs.String("schema", "schema.json", "schema file or URL")
	output := fs.String("out", "", "output file (stdout if empty)")
	accent := fs.String("accent", "", "accent colour overriding the schema theme")
	configFile := fs.String("config", "", "configuration file used to prefill values")
	pref := fs.String("theme", "auto", "colour scheme: light, dark or auto")
	action := fs.String("action", "/", "URL the page posts back to")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	sch, err := loadSchema(ctx, *schemaPath)
	if err != nil {
		return err
	}

	var values document.Document
	if *configFile != "" {
		store, err := configstore.NewFileStore(*configFile)
		if err != nil {
			return err
		}
		if values, err = store.Get(ctx); err != nil {
			return fmt.Errorf("prefill from %s: %w", *configFile, err)
		}
	}

	opts := render.RenderOptions{
		Action:     *action,
		Preference: appearance.ParsePreference(*pref),
		Standalone: true,
	}
	if a := strings.TrimSpace(*accent); a != "" {
		selector := appearance.NewSelector(a)
		if opts.Theme, err = appearance.Config(selector, opts.Preference); err != nil {
			return err
		}
		palette, err := appearance.PaletteFor(selector)
		if err != nil {
			return err
		}
		opts.Palette = &palette
	}

	out, err := settingsform.GenerateHTML(ctx, sch, values, opts)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err := stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	fmt.Fprintf(stderr, "Form written to %s\n", *output)
	return nil
}
