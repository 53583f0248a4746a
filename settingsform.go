package settingsform

import (
	"context"

	"github.com/goliatone/go-settingsform/pkg/document"
	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/render"
	"github.com/goliatone/go-settingsform/pkg/renderers/html"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

// Schema aliases schema.Schema for callers that only need the top-level
// package.
type Schema = schema.Schema

// Document aliases the nested configuration document.
type Document = document.Document

// Session aliases the headless form session.
type Session = form.Session

// RenderOptions describes per-request overrides passed to renderers.
type RenderOptions = render.RenderOptions

// LoadSchema reads and validates a schema from a file path or an http(s)
// URL.
func LoadSchema(ctx context.Context, location string, options ...schema.LoaderOption) (*Schema, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, err
	}
	if src.Kind() == schema.SourceKindURL && len(options) == 0 {
		options = []schema.LoaderOption{schema.WithHTTP(0)}
	}
	doc, err := NewLoader(options...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return schema.FromDocument(doc)
}

// NewSession opens a form session on sch. It mirrors form.New so the quick
// start needs a single import.
func NewSession(sch *Schema, options ...form.Option) (*Session, error) {
	return form.New(sch, options...)
}

// GenerateHTML renders a self-contained settings page for sch, prefilled
// from values when it is non-nil. Paths missing from values keep their
// schema defaults.
func GenerateHTML(ctx context.Context, sch *Schema, values Document, opts RenderOptions) ([]byte, error) {
	session, err := form.New(sch)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if values != nil {
		if err := session.Apply(values); err != nil {
			return nil, err
		}
	}

	renderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, session.View(), opts)
}
