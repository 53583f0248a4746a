// Package testsupport holds fixtures shared by renderer, host and CLI tests.
package testsupport

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-settingsform/pkg/form"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

// DeviceSchema is a two-page schema exercising every field kind, a named
// validator, page buttons with and without confirmation, and the default
// save/load pair.
const DeviceSchema = `{
  "title": "Device",
  "theme": {"accent": "#ff8800"},
  "pages": [
    {
      "id": "net",
      "title": "Network",
      "sections": [
        {"legend": "Wi-Fi", "fields": [
          {"name": "wifi.ssid", "label": "SSID", "required": true, "placeholder": "my-network",
           "help": "Network <b>name</b><script>alert(1)</script>"},
          {"name": "wifi.psk", "label": "Passphrase", "type": "password", "minlength": 8},
          {"name": "wifi.enabled", "label": "Enabled", "type": "switch", "default": true}
        ]}
      ],
      "buttons": [
        {"label": "Reboot", "endpoint": "/reboot", "method": "POST", "confirm": "Reboot now?"}
      ]
    },
    {
      "id": "mqtt",
      "title": "MQTT",
      "sections": [
        {"legend": "Broker", "fields": [
          {"name": "mqtt.port", "label": "Port", "type": "number", "min": 1, "max": 65535, "default": 1883},
          {"name": "mqtt.broker", "label": "Broker", "validator": "ip_port"},
          {"name": "mqtt.mode", "label": "Mode", "type": "select", "options": ["tcp", {"value": "tls", "label": "TLS"}]},
          {"name": "mqtt.notes", "label": "Notes", "type": "textarea", "maxlength": 64}
        ]}
      ]
    }
  ],
  "defaultButtons": [
    {"label": "Save All", "kind": "save"},
    {"label": "Reload", "kind": "load"}
  ]
}`

// MustSchema parses raw or fails the test.
func MustSchema(t testing.TB, raw string) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(raw), "testsupport")
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

// MustSession opens a session on the device schema and closes it when the
// test ends.
func MustSession(t testing.TB, options ...form.Option) *form.Session {
	t.Helper()
	session, err := form.New(MustSchema(t, DeviceSchema), options...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}

// WriteSchemaFile writes raw to dir/name and returns the path.
func WriteSchemaFile(t testing.TB, dir, name, raw string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	return path
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
