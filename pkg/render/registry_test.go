package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, form.View, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("Text"))
	registry.MustRegister(namedRenderer("html"))

	if err := registry.Register(namedRenderer(" TEXT ")); !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := registry.Register(namedRenderer("  ")); err == nil {
		t.Fatalf("expected an error for an empty name")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected an error for a nil renderer")
	}

	got, err := registry.Get("HTML")
	if err != nil || got.Name() != "html" {
		t.Fatalf("lookup: %v %v", got, err)
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected unknown renderer, got %v", err)
	}
	if !registry.Has("text") || registry.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}
	if diff := cmp.Diff([]string{"html", "text"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}
