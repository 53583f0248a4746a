// Package settingsform turns a declarative settings schema into an editable
// configuration form. A schema lists pages of fields with their kinds and
// constraints; a form.Session binds one control per field, validates input,
// and loads or saves the nested configuration document through a
// configuration service. Renderers in pkg/renderers present a session as an
// HTML page or in the terminal, and pkg/server hosts it over HTTP.
//
// The top-level package re-exports the few entry points most callers need:
//
//	sch, err := settingsform.LoadSchema(ctx, "schema.json")
//	page, err := settingsform.GenerateHTML(ctx, sch, values, settingsform.RenderOptions{Standalone: true})
package settingsform
