package appearance

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

const (
	// ThemeName is the manifest name registered for settings pages.
	ThemeName = "settingsform"
	// DefaultAccent is used when neither the schema nor the caller picks one.
	DefaultAccent = "#20a4a9"
	// AutoVariant is the variant reported for an Unset preference.
	AutoVariant = "auto"
)

var baseTokens = map[string]string{
	"radius":    "10px",
	"gap":       "14px",
	"font":      "system-ui, -apple-system, Segoe UI, Roboto, sans-serif",
	"bg":        "#f6f7f9",
	"fg":        "#1d2330",
	"card":      "#ffffff",
	"border":    "#d9dde3",
	"muted":     "#677084",
	"danger":    "#d64545",
	"ok":        "#2f9e44",
	"toast-bg":  "#1d2330",
	"toast-fg":  "#ffffff",
	"shadow":    "0 1px 3px rgba(0,0,0,.08)",
	"input-bg":  "#ffffff",
	"tab-hover": "#eceff3",
}

var darkTokens = map[string]string{
	"bg":        "#12151b",
	"fg":        "#e6e9ef",
	"card":      "#1b2029",
	"border":    "#2c3340",
	"muted":     "#9aa3b5",
	"toast-bg":  "#e6e9ef",
	"toast-fg":  "#12151b",
	"shadow":    "0 1px 3px rgba(0,0,0,.4)",
	"input-bg":  "#151922",
	"tab-hover": "#232936",
}

// Manifest describes the settings theme with a light and a dark variant.
// accent overrides the accent token of every variant.
func Manifest(accent string) *theme.Manifest {
	accent = strings.TrimSpace(accent)
	if accent == "" {
		accent = DefaultAccent
	}
	tokens := copyTokens(baseTokens)
	tokens["accent"] = accent

	dark := copyTokens(darkTokens)
	dark["accent"] = accent

	return &theme.Manifest{
		Name:    ThemeName,
		Version: "1.0.0",
		Tokens:  tokens,
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "settings.css",
			},
		},
		Variants: map[string]theme.Variant{
			string(Light): {Tokens: map[string]string{}},
			string(Dark):  {Tokens: dark},
		},
	}
}

// NewProvider registers the manifest in a go-theme registry.
func NewProvider(accent string) (theme.ThemeProvider, error) {
	registry := theme.NewRegistry()
	if err := registry.Register(Manifest(accent)); err != nil {
		return nil, fmt.Errorf("appearance: register theme: %w", err)
	}
	return registry, nil
}

// ErrUnknownTheme is returned by Selector for a name it does not serve.
var ErrUnknownTheme = errors.New("appearance: unknown theme")

// Selector resolves the settings theme for a variant name.
type Selector struct {
	manifest *theme.Manifest
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector serves the manifest built for accent.
func NewSelector(accent string) *Selector {
	return &Selector{manifest: Manifest(accent)}
}

// Select returns the manifest with the requested variant. An empty name
// selects the settings theme; unknown variants fall back to auto.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if _, ok := s.manifest.Variants[variant]; !ok {
		variant = AutoVariant
	}
	return &theme.Selection{
		Theme:    s.manifest.Name,
		Variant:  variant,
		Manifest: s.manifest,
	}, nil
}

// Config builds the renderer configuration for the preference: manifest
// tokens merged with the variant's, CSS custom properties named "--<token>",
// and an asset resolver honouring variant overrides.
func Config(selector theme.ThemeSelector, pref Preference) (*theme.RendererConfig, error) {
	variant := string(pref)
	if pref == Unset {
		variant = AutoVariant
	}
	selection, err := selector.Select(ThemeName, variant)
	if err != nil {
		return nil, err
	}
	return configFromSelection(selection), nil
}

func configFromSelection(selection *theme.Selection) *theme.RendererConfig {
	manifest := selection.Manifest
	tokens := copyTokens(manifest.Tokens)
	files := copyTokens(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix
	partials := copyTokens(manifest.Templates)

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Assets.Files {
			files[key] = value
		}
		for key, value := range variant.Templates {
			partials[key] = value
		}
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  CSSVars(tokens),
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			return path.Join(prefix, file)
		},
	}
}

// CSSVars maps tokens to custom property names.
func CSSVars(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		out["--"+key] = value
	}
	return out
}

// Declarations renders vars as sorted "name: value;" lines.
func Declarations(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	return b.String()
}

// Palette is the light and dark custom property sets of one manifest, used
// to emit the prefers-color-scheme fallback when no preference is stored.
type Palette struct {
	Light map[string]string
	Dark  map[string]string
}

// PaletteFor resolves both variants.
func PaletteFor(selector theme.ThemeSelector) (Palette, error) {
	light, err := Config(selector, Light)
	if err != nil {
		return Palette{}, err
	}
	dark, err := Config(selector, Dark)
	if err != nil {
		return Palette{}, err
	}
	return Palette{Light: light.CSSVars, Dark: dark.CSSVars}, nil
}

func copyTokens(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
