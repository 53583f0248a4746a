// Package form binds a settings schema to a headless editing session.
//
// A Session owns one control per field definition together with its error
// region, validity marker and custom validity hint. Hosts (the HTML server
// and the terminal editor) forward interaction events to the explicit
// per-control handlers (Input, Change, Blur, Toggle, Select) and render the
// resulting View. The controller half of the session gates save actions on
// whole-form validity, maps controls to and from the configuration document,
// and talks to the configuration service.
//
// Every handler runs to completion under the session lock before the next
// one starts. Keystroke validation of text-like fields is debounced per
// field; an immediate validation of the same field cancels a pending one.
package form
