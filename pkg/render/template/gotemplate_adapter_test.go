package template_test

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-settingsform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-settingsform/pkg/testsupport"
)

var templatesFS = fstest.MapFS{
	"hello.tpl":          {Data: []byte("Hello {{ name }}!\n")},
	"use-global.tpl":     {Data: []byte("env={{ settings.env }}\n")},
	"use-filter.tpl":     {Data: []byte("{{ name|settingsform_shout }}\n")},
	"page.tpl":           {Data: []byte("{% for field in Fields %}{% include \"partials/field.tpl\" %}{% endfor %}")},
	"partials/field.tpl": {Data: []byte("[{{ field.Name }}={{ field.Value }}]")},
	"escape.tpl":         {Data: []byte("{{ help }}|{{ help|safe }}")},
}

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})

	want := "Hello Ada!\n"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})
	if result != "env=staging\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("settingsform_shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})
	if result != "ADA!\n" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_StructDataAndIncludes(t *testing.T) {
	type field struct {
		Name  string
		Value string
	}
	data := struct {
		Fields []field
	}{
		Fields: []field{{Name: "wifi.ssid", Value: "home"}, {Name: "mqtt.port", Value: "1883"}},
	}

	engine := newEngine(t)
	result, err := engine.RenderTemplate("page.tpl", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "[wifi.ssid=home][mqtt.port=1883]" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_Autoescape(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.RenderTemplate("escape", map[string]any{"help": "<b>x</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "&lt;b&gt;x&lt;/b&gt;|<b>x</b>" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": "x", "b": "y"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "x-y" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func TestGoTemplateEngine_BaseDirOptions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "label.html"), []byte("{{ brand }}: {{ label|settingsform_dashed }}"), 0o644); err != nil {
		t.Fatalf("seed template: %v", err)
	}

	engine, err := gotemplate.New(
		gotemplate.WithBaseDir(dir),
		gotemplate.WithExtension("html"),
		gotemplate.WithGlobalData(map[string]any{"brand": "ESP32"}),
		gotemplate.WithFilter("settingsform_dashed", func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strings.ReplaceAll(in.String(), " ", "-")), nil
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	result, err := engine.RenderTemplate("label", map[string]any{"label": "Wi Fi SSID"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ESP32: Wi-Fi-SSID" {
		t.Fatalf("unexpected output %q", result)
	}

	if _, err := gotemplate.New(gotemplate.WithBaseDir(filepath.Join(dir, "absent"))); err == nil {
		t.Fatalf("expected an error for a missing template dir")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
